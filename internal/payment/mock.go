package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockProviderは常に成功する疑似プロバイダ。
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Name() string {
	return "MOCK"
}

func (p *MockProvider) Charge(ctx context.Context, amount decimal.Decimal) (string, error) {
	return "MOCK_TXN_" + uuid.NewString(), nil
}
