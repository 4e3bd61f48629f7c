package server

import (
	"app/internal/config"
	"app/internal/handler"
	repo "app/internal/repository"

	"github.com/labstack/echo/v4"
)

// Handlersはルート登録に必要なhandler一式。
type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Category     *handler.CategoryHandler
	Cart         *handler.CartHandler
	Checkout     *handler.CheckoutHandler
	Order        *handler.OrderHandler
	Payment      *handler.PaymentHandler
	Stripe       *handler.StripeHandler
	Shipment     *handler.ShipmentHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, blacklist repo.TokenBlacklist, h Handlers) {
	h.Auth.RegisterRoutes(e, cfg, blacklist)
	h.Product.RegisterRoutes(e)
	h.AdminProduct.RegisterRoutes(e, cfg, blacklist)
	h.Category.RegisterRoutes(e, cfg, blacklist)
	h.Cart.RegisterRoutes(e, cfg, blacklist)
	h.Checkout.RegisterRoutes(e, cfg, blacklist)
	h.Order.RegisterRoutes(e, cfg, blacklist)
	h.Payment.RegisterRoutes(e, cfg, blacklist)
	h.Stripe.RegisterRoutes(e, cfg, blacklist)
	h.Shipment.RegisterRoutes(e, cfg, blacklist)
}
