package usecase

import "github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"

// Handle 指向帳本中某個帳戶的暫時參考 (以索引表示)。
// 只在取得它的那次操作內有效；帳本結構變動 (新增、刪除、排序) 後不可再使用。
type Handle struct {
	ledger *Ledger
	index  int
}

// Account 回傳可直接修改的帳戶
func (h Handle) Account() *domain.Account {
	return h.ledger.accounts[h.index]
}

// Snapshot 回傳帳戶的值拷貝
func (h Handle) Snapshot() domain.Account {
	return *h.ledger.accounts[h.index]
}
