package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation 輸入格式錯誤 (空名稱、非四位數 PIN、非正數帳號等)
	ErrValidation = errors.New("validation failed")

	// ErrInvalidAmount 金額必須為正數
	ErrInvalidAmount = fmt.Errorf("%w: amount must be positive", ErrValidation)

	// ErrDuplicateAccount 帳號已存在
	ErrDuplicateAccount = errors.New("account number already exists")

	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientFunds 餘額不足
	ErrInsufficientFunds = errors.New("insufficient balance")

	// ErrSameAccountTransfer 轉出與轉入為同一帳戶
	ErrSameAccountTransfer = errors.New("cannot transfer to same account")

	// ErrAuthenticationFailed PIN 驗證失敗
	ErrAuthenticationFailed = errors.New("authentication failed: invalid PIN")

	// ErrStorage 讀寫持久化資料失敗 (檔案無法開啟、寫入失敗等)
	ErrStorage = errors.New("storage failure")

	// ErrMalformedRecord 資料檔內容無法解析 (僅在 strict 模式下回傳)
	ErrMalformedRecord = fmt.Errorf("%w: malformed record", ErrStorage)
)
