package domain

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Account 銀行帳戶
//
// Number 建立後不可變更；PinDigest 只在建立時設定一次。
type Account struct {
	Name      string
	Number    int64
	Balance   decimal.Decimal
	PinDigest PinDigest
}

// NewAccount 建立新帳戶，並以 verifier 計算 PIN 摘要 (原始 PIN 不保留)
//
// 參數:
//
//	name: 帳戶名稱，不可為空
//	number: 帳號，需為正數
//	balance: 初始餘額，不可為負
//	pin: 四位數字 PIN
//	verifier: PIN 摘要演算法
//
// 回傳:
//
//	*Account: 新帳戶
//	error: ErrValidation
func NewAccount(name string, number int64, balance decimal.Decimal, pin string, verifier PinVerifier) (*Account, error) {
	if !ValidPin(pin) {
		return nil, fmt.Errorf("%w: PIN must be %d digits", ErrValidation, PinLength)
	}
	return RestoreAccount(name, number, balance, verifier.Digest(pin))
}

// RestoreAccount 由已保存的摘要重建帳戶 (載入資料檔時使用)
func RestoreAccount(name string, number int64, balance decimal.Decimal, digest PinDigest) (*Account, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	if number <= 0 {
		return nil, fmt.Errorf("%w: account number must be positive, got %d", ErrValidation, number)
	}
	if balance.IsNegative() {
		return nil, fmt.Errorf("%w: initial balance cannot be negative, got %s", ErrValidation, balance)
	}
	return &Account{
		Name:      name,
		Number:    number,
		Balance:   balance,
		PinDigest: digest,
	}, nil
}

// VerifyPin 重新計算 candidate 的摘要並與保存的摘要比對
func (a *Account) VerifyPin(verifier PinVerifier, candidate string) bool {
	return verifier.Verify(a.PinDigest, candidate)
}

// Deposit 存款
func (a *Account) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

// Withdraw 提款，餘額不足時直接拒絕 (不會扣成負數)
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// Rename 更改帳戶名稱
func (a *Account) Rename(newName string) error {
	if err := validName(newName); err != nil {
		return err
	}
	a.Name = newName
	return nil
}

// validName 名稱不可為空，也不可含控制字元 (換行會讓資料檔的一筆紀錄斷成兩行)
func validName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if strings.ContainsFunc(name, unicode.IsControl) {
		return fmt.Errorf("%w: name cannot contain control characters", ErrValidation)
	}
	return nil
}
