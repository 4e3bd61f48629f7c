package stripegw

import (
	"context"
	"fmt"

	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// ProviderはPaymentIntentで即時chargeするStripe実装。
type Provider struct {
	currency string
}

func NewProvider(currency string) *Provider {
	return &Provider{currency: currency}
}

func (p *Provider) Name() string {
	return "STRIPE"
}

func (p *Provider) Charge(ctx context.Context, amount decimal.Decimal) (string, error) {
	params := &stripe.PaymentIntentParams{
		//Stripeは最小通貨単位で受け取る
		Amount:   stripe.Int64(usecase.ToMinorUnits(amount)),
		Currency: stripe.String(p.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe charge: %w", err)
	}

	return intent.ID, nil
}
