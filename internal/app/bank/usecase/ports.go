package usecase

import (
	"context"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
)

// Store 是帳本持久化的介面 (文字檔、MySQL 皆實作此介面)
type Store interface {
	// Load 讀取所有帳戶，順序即為保存時的順序。資料不存在時回傳空集合且不報錯。
	Load(ctx context.Context) ([]*domain.Account, error)
	// Save 以整批覆寫的方式保存所有帳戶
	Save(ctx context.Context, accounts []domain.Account) error
}

// PinPrompter 由呼叫端 (CLI、測試) 提供，負責取得使用者輸入的 PIN
type PinPrompter interface {
	// PromptPin 要求使用者輸入指定帳戶的 PIN
	PromptPin(ctx context.Context, accountNumber int64) (string, error)
	// PinRejected 通知使用者 PIN 錯誤
	PinRejected(accountNumber int64)
}
