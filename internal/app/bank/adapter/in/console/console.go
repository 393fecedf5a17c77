package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/bank/usecase"
)

var (
	minAmount    = decimal.New(1, -2) // 0.01
	minThreshold = decimal.Zero
)

// Console 是帳本的互動式選單。
// 它同時實作 usecase.PinPrompter，帳本需要 PIN 時會回頭向使用者詢問。
//
// 結構:
//
//	in: 輸入來源
//	out: 所有訊息與表格的輸出
//	log: logrus logger
type Console struct {
	in  Input
	out io.Writer
	log logrus.FieldLogger
}

type menuItem struct {
	label  string
	action func(ctx context.Context, l *usecase.Ledger) error
}

// New 建立 Console
func New(in Input, out io.Writer, log logrus.FieldLogger) *Console {
	return &Console{
		in:  in,
		out: out,
		log: log,
	}
}

// Run 執行選單迴圈直到使用者選擇離開或輸入結束 (EOF)。
// 離開前一定會保存帳本；保存失敗時錯誤會顯示在畫面上並回傳。
//
// 參數:
//
//	ctx: 上下文，取消時保存後結束
//	ledger: 已載入資料的帳本
//
// 回傳:
//
//	error: 輸入失敗或保存失敗
func (c *Console) Run(ctx context.Context, ledger *usecase.Ledger) error {
	items := c.menu()
	labels := make([]string, len(items)+1)
	for i, item := range items {
		labels[i] = item.label
	}
	exitLabel := "0. Exit"
	labels[len(items)] = exitLabel

	c.print(pterm.DefaultSection.Sprint("Bank Management System"))
	for {
		if err := ctx.Err(); err != nil {
			return c.shutdown(ctx, ledger, err)
		}

		choice, err := c.in.Select("Select an action", labels)
		if err != nil {
			return c.shutdown(ctx, ledger, err)
		}
		if choice == exitLabel {
			return c.shutdown(ctx, ledger, nil)
		}

		idx := slices.Index(labels, choice)
		if idx < 0 {
			c.errorf("Invalid choice %q.", choice)
			continue
		}
		if err := items[idx].action(ctx, ledger); err != nil {
			if !isUserError(err) {
				return c.shutdown(ctx, ledger, err)
			}
			c.log.WithError(err).Debug("Console.Action.Error")
			c.errorf("Error: %v", err)
		}
	}
}

// PromptPin 實作 usecase.PinPrompter
func (c *Console) PromptPin(ctx context.Context, accountNumber int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.in.Secret(fmt.Sprintf("Enter PIN for account %d", accountNumber))
}

// PinRejected 實作 usecase.PinPrompter
func (c *Console) PinRejected(int64) {
	c.errorf("Authentication failed. Invalid PIN.")
}

func (c *Console) menu() []menuItem {
	return []menuItem{
		{"1. Create Account", c.createAccount},
		{"2. Show All Accounts", c.showAll},
		{"3. Search Account", c.search},
		{"4. Deposit Money", c.deposit},
		{"5. Withdraw Money", c.withdraw},
		{"6. Transfer Money", c.transfer},
		{"7. Close Account", c.closeAccount},
		{"8. Update Account Name", c.updateName},
		{"9. Show High Balance Accounts", c.highBalance},
		{"10. Sort Accounts by Balance", c.sortByBalance},
		{"11. Save Now", c.saveNow},
	}
}

func (c *Console) createAccount(_ context.Context, l *usecase.Ledger) error {
	name, err := c.readText("Name")
	if err != nil {
		return err
	}
	number, err := c.readNumber("Account Number")
	if err != nil {
		return err
	}
	balance, err := c.readAmount("Initial Balance", decimal.Zero)
	if err != nil {
		return err
	}
	pin, err := c.readNewPin()
	if err != nil {
		return err
	}
	if err := l.AddAccount(name, number, balance, pin); err != nil {
		return err
	}
	c.successf("Account created successfully.")
	return nil
}

func (c *Console) showAll(_ context.Context, l *usecase.Ledger) error {
	accounts := l.Accounts()
	if len(accounts) == 0 {
		c.infof("No accounts available.")
		return nil
	}
	return c.table(accounts)
}

func (c *Console) search(_ context.Context, l *usecase.Ledger) error {
	number, err := c.readNumber("Enter account number")
	if err != nil {
		return err
	}
	h, ok := l.FindAccount(number)
	if !ok {
		c.errorf("Account not found.")
		return nil
	}
	acc := h.Snapshot()
	c.infof("Found -> %s | Balance: %s", acc.Name, acc.Balance.String())
	return nil
}

func (c *Console) deposit(ctx context.Context, l *usecase.Ledger) error {
	number, err := c.readNumber("Account number")
	if err != nil {
		return err
	}
	amount, err := c.readAmount("Amount", minAmount)
	if err != nil {
		return err
	}
	outcome, err := l.Deposit(ctx, number, amount)
	return c.report(outcome, err, "Deposit successful.")
}

func (c *Console) withdraw(ctx context.Context, l *usecase.Ledger) error {
	number, err := c.readNumber("Account number")
	if err != nil {
		return err
	}
	amount, err := c.readAmount("Amount", minAmount)
	if err != nil {
		return err
	}
	outcome, err := l.Withdraw(ctx, number, amount)
	return c.report(outcome, err, "Withdrawal successful.")
}

func (c *Console) transfer(ctx context.Context, l *usecase.Ledger) error {
	from, err := c.readNumber("From account")
	if err != nil {
		return err
	}
	to, err := c.readNumber("To account")
	if err != nil {
		return err
	}
	amount, err := c.readAmount("Amount", minAmount)
	if err != nil {
		return err
	}
	outcome, err := l.Transfer(ctx, from, to, amount)
	return c.report(outcome, err, "Transfer successful.")
}

func (c *Console) closeAccount(ctx context.Context, l *usecase.Ledger) error {
	number, err := c.readNumber("Enter account to close")
	if err != nil {
		return err
	}
	outcome, err := l.CloseAccount(ctx, number)
	return c.report(outcome, err, "Account closed successfully.")
}

func (c *Console) updateName(ctx context.Context, l *usecase.Ledger) error {
	number, err := c.readNumber("Enter account number")
	if err != nil {
		return err
	}
	name, err := c.readText("New Name")
	if err != nil {
		return err
	}
	outcome, err := l.UpdateName(ctx, number, name)
	return c.report(outcome, err, "Account name updated.")
}

func (c *Console) highBalance(_ context.Context, l *usecase.Ledger) error {
	threshold, err := c.readAmount("Enter threshold", minThreshold)
	if err != nil {
		return err
	}
	accounts := l.AccountsAboveBalance(threshold)
	c.infof("Accounts above %s", threshold.String())
	if len(accounts) == 0 {
		c.infof("No accounts meet the threshold.")
		return nil
	}
	return c.table(accounts)
}

func (c *Console) sortByBalance(_ context.Context, l *usecase.Ledger) error {
	l.SortByBalance()
	c.successf("Accounts sorted by balance.")
	return nil
}

func (c *Console) saveNow(ctx context.Context, l *usecase.Ledger) error {
	if err := l.Save(ctx); err != nil {
		return err
	}
	c.successf("Data saved.")
	return nil
}

// shutdown 保存帳本並結束選單。EOF 與 Ctrl+C 視為正常離開。
func (c *Console) shutdown(ctx context.Context, l *usecase.Ledger, cause error) error {
	if errors.Is(cause, io.EOF) || errors.Is(cause, ErrInterrupted) {
		cause = nil
	}
	c.infof("Saving data...")
	saveErr := l.Save(context.WithoutCancel(ctx))
	if saveErr != nil {
		c.errorf("Failed to save data: %v", saveErr)
	}
	return errors.Join(cause, saveErr)
}

// report 將帳本操作結果轉成畫面訊息。PIN 錯誤已由 PinRejected 顯示過。
func (c *Console) report(outcome usecase.Outcome, err error, success string) error {
	if err != nil {
		return err
	}
	switch outcome {
	case usecase.OutcomeCompleted:
		c.successf("%s", success)
	case usecase.OutcomeNotFound:
		c.errorf("Account not found.")
	}
	return nil
}

func (c *Console) table(accounts []domain.Account) error {
	data := pterm.TableData{{"Name", "Account", "Balance"}}
	for _, acc := range accounts {
		data = append(data, []string{acc.Name, strconv.FormatInt(acc.Number, 10), acc.Balance.String()})
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	c.print(out + "\n")
	return nil
}

// readNumber 讀取 >= 1 的整數，格式錯誤時重新詢問
func (c *Console) readNumber(prompt string) (int64, error) {
	for {
		s, err := c.in.Text(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err == nil && n >= 1 {
			return n, nil
		}
		c.errorf("Invalid input. Please enter a valid number.")
	}
}

// readAmount 讀取 >= floor 的金額，格式錯誤時重新詢問
func (c *Console) readAmount(prompt string, floor decimal.Decimal) (decimal.Decimal, error) {
	for {
		s, err := c.in.Text(prompt)
		if err != nil {
			return decimal.Zero, err
		}
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err == nil && d.GreaterThanOrEqual(floor) {
			return d, nil
		}
		c.errorf("Invalid input. Please enter a valid number.")
	}
}

func (c *Console) readText(prompt string) (string, error) {
	for {
		s, err := c.in.Text(prompt)
		if err != nil {
			return "", err
		}
		if s = strings.TrimSpace(s); s != "" {
			return s, nil
		}
		c.errorf("Input cannot be empty. Please try again.")
	}
}

func (c *Console) readNewPin() (string, error) {
	for {
		pin, err := c.in.Secret("Set 4-digit PIN")
		if err != nil {
			return "", err
		}
		if domain.ValidPin(pin) {
			return pin, nil
		}
		c.errorf("PIN must be %d digits.", domain.PinLength)
	}
}

func (c *Console) print(s string) {
	fmt.Fprint(c.out, s)
}

func (c *Console) infof(format string, a ...any) {
	c.print(pterm.Info.Sprintfln(format, a...))
}

func (c *Console) successf(format string, a ...any) {
	c.print(pterm.Success.Sprintfln(format, a...))
}

func (c *Console) errorf(format string, a ...any) {
	c.print(pterm.Error.Sprintfln(format, a...))
}

// isUserError 判斷錯誤是否只需要顯示給使用者 (選單繼續執行)
func isUserError(err error) bool {
	for _, target := range []error{
		domain.ErrValidation,
		domain.ErrDuplicateAccount,
		domain.ErrAccountNotFound,
		domain.ErrInsufficientFunds,
		domain.ErrSameAccountTransfer,
		domain.ErrAuthenticationFailed,
		domain.ErrStorage,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var _ usecase.PinPrompter = (*Console)(nil)
