package payment

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// Providerは決済手段ごとのcharge実行戦略。
// 成功時はプロバイダ側のトランザクションIDを返す。
type Provider interface {
	Name() string
	Charge(ctx context.Context, amount decimal.Decimal) (string, error)
}

// Registryはmethod文字列からProviderを引く。
// 未登録のmethodはfallback（モック）に落とす。
type Registry struct {
	providers map[string]Provider
	fallback  Provider
}

func NewRegistry(fallback Provider) *Registry {
	return &Registry{
		providers: map[string]Provider{},
		fallback:  fallback,
	}
}

func (r *Registry) Register(method string, p Provider) {
	r.providers[strings.ToUpper(method)] = p
}

func (r *Registry) Resolve(method string) Provider {
	if p, ok := r.providers[strings.ToUpper(method)]; ok {
		return p
	}
	return r.fallback
}
