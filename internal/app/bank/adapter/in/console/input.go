package console

import (
	"errors"

	"github.com/pterm/pterm"
)

// ErrInterrupted 使用者在輸入時按下 Ctrl+C
var ErrInterrupted = errors.New("input interrupted")

// Input 抽象化互動式輸入，正式執行時使用 pterm，測試時以腳本取代
type Input interface {
	// Select 從 options 中選擇一項，回傳被選中的字串
	Select(prompt string, options []string) (string, error)
	// Text 讀取一行文字
	Text(prompt string) (string, error)
	// Secret 讀取不回顯的文字 (PIN)
	Secret(prompt string) (string, error)
}

// PtermInput 以 pterm 的互動元件實作 Input。
// pterm 在 raw mode 下自行處理 Ctrl+C，預設會直接結束程式；
// 這裡改為回傳 ErrInterrupted，讓選單走正常的保存流程。
type PtermInput struct {
	interrupted bool
}

func NewPtermInput() *PtermInput {
	return &PtermInput{}
}

func (p *PtermInput) Select(prompt string, options []string) (string, error) {
	return p.result(pterm.DefaultInteractiveSelect.
		WithDefaultText(prompt).
		WithOptions(options).
		WithMaxHeight(len(options)).
		WithOnInterruptFunc(p.interrupt).
		Show())
}

func (p *PtermInput) Text(prompt string) (string, error) {
	return p.result(pterm.DefaultInteractiveTextInput.
		WithDefaultText(prompt).
		WithOnInterruptFunc(p.interrupt).
		Show())
}

func (p *PtermInput) Secret(prompt string) (string, error) {
	return p.result(pterm.DefaultInteractiveTextInput.
		WithDefaultText(prompt).
		WithMask("*").
		WithOnInterruptFunc(p.interrupt).
		Show())
}

func (p *PtermInput) interrupt() {
	p.interrupted = true
}

// result 把 Ctrl+C 轉成 ErrInterrupted (不論 pterm 回傳什麼)
func (p *PtermInput) result(value string, err error) (string, error) {
	if p.interrupted {
		p.interrupted = false
		return "", ErrInterrupted
	}
	return value, err
}

var _ Input = (*PtermInput)(nil)
