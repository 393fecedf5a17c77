package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
)

// mockPinPrompter 以 testify mock 記錄 PIN 詢問
type mockPinPrompter struct {
	mock.Mock
}

func (m *mockPinPrompter) PromptPin(ctx context.Context, accountNumber int64) (string, error) {
	args := m.Called(ctx, accountNumber)
	return args.String(0), args.Error(1)
}

func (m *mockPinPrompter) PinRejected(accountNumber int64) {
	m.Called(accountNumber)
}

// pinBook 依帳號回傳固定 PIN，未登記的帳號回傳 "0000"
type pinBook struct {
	pins     map[int64]string
	rejected []int64
}

func (p *pinBook) PromptPin(_ context.Context, accountNumber int64) (string, error) {
	if pin, ok := p.pins[accountNumber]; ok {
		return pin, nil
	}
	return "0000", nil
}

func (p *pinBook) PinRejected(accountNumber int64) {
	p.rejected = append(p.rejected, accountNumber)
}

// memStore 是保存在記憶體中的 Store
type memStore struct {
	saved   []domain.Account
	loaded  []*domain.Account
	saveErr error
	loadErr error
}

func (s *memStore) Load(_ context.Context) ([]*domain.Account, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make([]*domain.Account, len(s.loaded))
	for i, acc := range s.loaded {
		cp := *acc
		out[i] = &cp
	}
	return out, nil
}

func (s *memStore) Save(_ context.Context, accounts []domain.Account) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = accounts
	return nil
}

var (
	_ PinPrompter = (*mockPinPrompter)(nil)
	_ PinPrompter = (*pinBook)(nil)
	_ Store       = (*memStore)(nil)
)
