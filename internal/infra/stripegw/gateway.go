package stripegw

import (
	"context"
	"encoding/json"
	"fmt"

	"app/internal/config"
	"app/internal/usecase"

	"github.com/stripe/stripe-go/v82"
	session "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// GatewayはStripe Checkoutの薄いラッパー。
// セッションのステータスはStripe側が正で、ローカルはここ経由で読むだけ。
type Gateway struct {
	webhookSecret string
	currency      string
	successURL    string
	cancelURL     string
}

func NewGateway(cfg config.Config) *Gateway {
	stripe.Key = cfg.StripeAPIKey

	return &Gateway{
		webhookSecret: cfg.StripeWebhookSecret,
		currency:      cfg.Currency,
		successURL:    cfg.FEURL + "/checkout/checkout-success?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:     cfg.FEURL + "/checkout/cancel-order",
	}
}

func (g *Gateway) CreateSession(ctx context.Context, customerEmail string, lines []usecase.CheckoutLine, metadata map[string]string) (usecase.GatewaySession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(g.successURL),
		CancelURL:     stripe.String(g.cancelURL),
		CustomerEmail: stripe.String(customerEmail),
	}
	params.Context = ctx

	for _, line := range lines {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:        stripe.String(line.Name),
			Description: stripe.String(line.Description),
		}
		if line.ImageURL != "" {
			productData.Images = []*string{stripe.String(line.ImageURL)}
		}

		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(g.currency),
				UnitAmount:  stripe.Int64(line.UnitAmount),
				ProductData: productData,
			},
			Quantity: stripe.Int64(line.Quantity),
		})
	}

	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	s, err := session.New(params)
	if err != nil {
		return usecase.GatewaySession{}, fmt.Errorf("create checkout session: %w", err)
	}

	return toGatewaySession(s), nil
}

func (g *Gateway) RetrieveSession(ctx context.Context, sessionID string) (usecase.GatewaySession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := session.Get(sessionID, params)
	if err != nil {
		return usecase.GatewaySession{}, fmt.Errorf("retrieve checkout session: %w", err)
	}

	return toGatewaySession(s), nil
}

// VerifyEventは署名を検証してWebhookイベントに変換する。
// 署名シークレットはGateway生成時のものを使う。
func (g *Gateway) VerifyEvent(payload []byte, sigHeader string) (usecase.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
	if err != nil {
		return usecase.WebhookEvent{}, fmt.Errorf("verify webhook signature: %w", err)
	}

	out := usecase.WebhookEvent{Type: string(event.Type)}

	if event.Type == "checkout.session.completed" {
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return usecase.WebhookEvent{}, fmt.Errorf("decode checkout session: %w", err)
		}
		out.Session = toGatewaySession(&s)
	}

	return out, nil
}

func toGatewaySession(s *stripe.CheckoutSession) usecase.GatewaySession {
	return usecase.GatewaySession{
		ID:            s.ID,
		URL:           s.URL,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		Metadata:      s.Metadata,
	}
}
