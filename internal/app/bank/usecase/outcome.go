package usecase

import "github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"

// Outcome 是帳本操作的結果狀態。
// 找不到帳戶、PIN 錯誤都是預期中的結果，以狀態回傳而不是 error。
type Outcome uint8

const (
	// 操作完成
	OutcomeCompleted Outcome = iota
	// 帳戶不存在，未做任何變更
	OutcomeNotFound
	// PIN 驗證失敗，未做任何變更
	OutcomeRejected
	// 操作回傳 error (金額不合法、餘額不足等)
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Err 將狀態轉成對應的 domain error，方便只想處理 error 的呼叫端。
// OutcomeCompleted 與 OutcomeFailed 回傳 nil (後者的 error 已由操作本身回傳)。
func (o Outcome) Err() error {
	switch o {
	case OutcomeNotFound:
		return domain.ErrAccountNotFound
	case OutcomeRejected:
		return domain.ErrAuthenticationFailed
	default:
		return nil
	}
}
