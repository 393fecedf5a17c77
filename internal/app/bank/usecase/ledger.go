package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
)

// Ledger 帳本：管理所有帳戶 (依建立順序保存)，
// 負責帳號唯一性、轉帳規則、變更前的 PIN 驗證，以及整批保存/載入。
//
// Ledger 不支援並行存取：同一時間只能有一個 goroutine 呼叫它的方法，
// 也不支援多個行程共用同一份資料檔。
//
// 結構:
//
//	accounts: 帳戶列表，順序即建立順序 (SortByBalance 後改為餘額順序)
//	verifier: PIN 摘要演算法
//	prompter: 取得 PIN 的輸入來源
//	store: 持久化實作
//	log: logrus logger
type Ledger struct {
	accounts []*domain.Account
	verifier domain.PinVerifier
	prompter PinPrompter
	store    Store
	log      logrus.FieldLogger
}

// NewLedger 建立一個空的帳本，資料需另外呼叫 Load 載入
func NewLedger(store Store, verifier domain.PinVerifier, prompter PinPrompter, logger logrus.FieldLogger) *Ledger {
	return &Ledger{
		accounts: make([]*domain.Account, 0),
		verifier: verifier,
		prompter: prompter,
		store:    store,
		log:      logger,
	}
}

// Len 回傳帳戶數量
func (l *Ledger) Len() int {
	return len(l.accounts)
}

// Accounts 依目前順序回傳所有帳戶的拷貝
func (l *Ledger) Accounts() []domain.Account {
	out := make([]domain.Account, len(l.accounts))
	for i, acc := range l.accounts {
		out[i] = *acc
	}
	return out
}

// AddAccount 建立並加入新帳戶 (輸入檢查交給 domain.NewAccount)
//
// 參數:
//
//	name: 帳戶名稱
//	number: 帳號
//	balance: 初始餘額
//	pin: 四位數 PIN
//
// 回傳:
//
//	error: ErrDuplicateAccount 或 ErrValidation
func (l *Ledger) AddAccount(name string, number int64, balance decimal.Decimal, pin string) error {
	if _, ok := l.FindAccount(number); ok {
		l.log.WithField("account", number).Warn("Ledger.AddAccount.Duplicate")
		return fmt.Errorf("add account %d: %w", number, domain.ErrDuplicateAccount)
	}
	acc, err := domain.NewAccount(name, number, balance, pin, l.verifier)
	if err != nil {
		return err
	}
	l.accounts = append(l.accounts, acc)
	l.log.WithField("account", number).Info("Ledger.AddAccount.Complete")
	return nil
}

// FindAccount 依帳號線性搜尋帳戶
//
// 回傳:
//
//	Handle: 指向帳戶的暫時參考，只在 ok 為 true 時有效
//	bool: 是否找到
func (l *Ledger) FindAccount(number int64) (Handle, bool) {
	idx := slices.IndexFunc(l.accounts, func(acc *domain.Account) bool {
		return acc.Number == number
	})
	if idx < 0 {
		return Handle{}, false
	}
	return Handle{ledger: l, index: idx}, true
}

// Authenticate 向 prompter 取得 PIN 並驗證。
// PIN 錯誤不是 error：會通知使用者並回傳 false。
// 只有讀取輸入本身失敗時才回傳 error。
func (l *Ledger) Authenticate(ctx context.Context, h Handle) (bool, error) {
	acc := h.Account()
	pin, err := l.prompter.PromptPin(ctx, acc.Number)
	if err != nil {
		return false, fmt.Errorf("read PIN for account %d: %w", acc.Number, err)
	}
	if !acc.VerifyPin(l.verifier, pin) {
		l.log.WithField("account", acc.Number).Warn("Ledger.Authenticate.Rejected")
		l.prompter.PinRejected(acc.Number)
		return false, nil
	}
	return true, nil
}

// Deposit 存款 (需先通過 PIN 驗證)
func (l *Ledger) Deposit(ctx context.Context, number int64, amount decimal.Decimal) (Outcome, error) {
	return l.authorized(ctx, "Deposit", number, func(h Handle) error {
		return h.Account().Deposit(amount)
	})
}

// Withdraw 提款 (需先通過 PIN 驗證)，餘額不足回傳 ErrInsufficientFunds
func (l *Ledger) Withdraw(ctx context.Context, number int64, amount decimal.Decimal) (Outcome, error) {
	return l.authorized(ctx, "Withdraw", number, func(h Handle) error {
		return h.Account().Withdraw(amount)
	})
}

// UpdateName 更改帳戶名稱 (需先通過 PIN 驗證)
func (l *Ledger) UpdateName(ctx context.Context, number int64, newName string) (Outcome, error) {
	return l.authorized(ctx, "UpdateName", number, func(h Handle) error {
		return h.Account().Rename(newName)
	})
}

// CloseAccount 刪除帳戶 (需先通過 PIN 驗證)，其餘帳戶順序不變
func (l *Ledger) CloseAccount(ctx context.Context, number int64) (Outcome, error) {
	return l.authorized(ctx, "CloseAccount", number, func(h Handle) error {
		l.accounts = slices.Delete(l.accounts, h.index, h.index+1)
		return nil
	})
}

// Transfer 轉帳：只驗證轉出帳戶的 PIN，先扣款再入帳。
//
// 同帳戶轉帳一律回傳 ErrSameAccountTransfer (不論帳戶是否存在、餘額是否足夠)。
// 入帳失敗時會把已扣的金額退回轉出帳戶。
//
// 參數:
//
//	ctx: 上下文
//	from: 轉出帳號
//	to: 轉入帳號
//	amount: 金額
//
// 回傳:
//
//	Outcome: 操作結果
//	error: ErrSameAccountTransfer, ErrInvalidAmount, ErrInsufficientFunds
func (l *Ledger) Transfer(ctx context.Context, from, to int64, amount decimal.Decimal) (Outcome, error) {
	entry := l.log.WithFields(logrus.Fields{"from": from, "to": to})
	if from == to {
		entry.Warn("Ledger.Transfer.SameAccount")
		return OutcomeFailed, domain.ErrSameAccountTransfer
	}

	src, okSrc := l.FindAccount(from)
	dst, okDst := l.FindAccount(to)
	if !okSrc || !okDst {
		entry.Info("Ledger.Transfer.NotFound")
		return OutcomeNotFound, nil
	}

	ok, err := l.Authenticate(ctx, src)
	if err != nil {
		return OutcomeFailed, err
	}
	if !ok {
		return OutcomeRejected, nil
	}

	if err := src.Account().Withdraw(amount); err != nil {
		entry.WithError(err).Warn("Ledger.Transfer.Error")
		return OutcomeFailed, fmt.Errorf("debit account %d: %w", from, err)
	}
	if err := dst.Account().Deposit(amount); err != nil {
		// 退回已扣款項，避免資金消失
		if rbErr := src.Account().Deposit(amount); rbErr != nil {
			entry.WithError(rbErr).Error("Ledger.Transfer.RollbackFailed")
			return OutcomeFailed, errors.Join(fmt.Errorf("credit account %d: %w", to, err), rbErr)
		}
		entry.WithError(err).Warn("Ledger.Transfer.RolledBack")
		return OutcomeFailed, fmt.Errorf("credit account %d: %w", to, err)
	}

	entry.Info("Ledger.Transfer.Complete")
	return OutcomeCompleted, nil
}

// AccountsAboveBalance 回傳餘額 >= threshold 的帳戶拷貝 (唯讀，不需驗證)
func (l *Ledger) AccountsAboveBalance(threshold decimal.Decimal) []domain.Account {
	out := make([]domain.Account, 0)
	for _, acc := range l.accounts {
		if acc.Balance.GreaterThanOrEqual(threshold) {
			out = append(out, *acc)
		}
	}
	return out
}

// SortByBalance 依餘額由小到大做穩定排序 (同餘額保持原本相對順序)
func (l *Ledger) SortByBalance() {
	slices.SortStableFunc(l.accounts, func(a, b *domain.Account) int {
		return a.Balance.Cmp(b.Balance)
	})
	l.log.Info("Ledger.SortByBalance.Complete")
}

// Save 將所有帳戶整批寫入 store
func (l *Ledger) Save(ctx context.Context) error {
	if err := l.store.Save(ctx, l.Accounts()); err != nil {
		l.log.WithError(err).Error("Ledger.Save.Error")
		return storageError("save ledger", err)
	}
	l.log.WithField("accounts", len(l.accounts)).Info("Ledger.Save.Complete")
	return nil
}

// Load 由 store 讀取帳戶並取代目前的帳戶列表。
// 讀取失敗時帳本維持原狀。
func (l *Ledger) Load(ctx context.Context) error {
	accounts, err := l.store.Load(ctx)
	if err != nil {
		l.log.WithError(err).Error("Ledger.Load.Error")
		return storageError("load ledger", err)
	}
	if accounts == nil {
		accounts = make([]*domain.Account, 0)
	}
	l.accounts = accounts
	l.log.WithField("accounts", len(accounts)).Info("Ledger.Load.Complete")
	return nil
}

// authorized 是需要 PIN 的單一帳戶操作的共用流程：找帳戶 → 驗證 → 執行 fn
func (l *Ledger) authorized(ctx context.Context, op string, number int64, fn func(Handle) error) (Outcome, error) {
	entry := l.log.WithField("account", number)
	h, ok := l.FindAccount(number)
	if !ok {
		entry.Infof("Ledger.%s.NotFound", op)
		return OutcomeNotFound, nil
	}

	ok, err := l.Authenticate(ctx, h)
	if err != nil {
		return OutcomeFailed, err
	}
	if !ok {
		return OutcomeRejected, nil
	}

	if err := fn(h); err != nil {
		entry.WithError(err).Warnf("Ledger.%s.Error", op)
		return OutcomeFailed, err
	}
	entry.Infof("Ledger.%s.Complete", op)
	return OutcomeCompleted, nil
}

// storageError 確保持久化錯誤都能以 errors.Is(err, domain.ErrStorage) 判斷
func storageError(op string, err error) error {
	if errors.Is(err, domain.ErrStorage) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}
