package handler

import (
	"io"
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/stripe のHTTP。webhookは認証なし（署名検証のみ）
type StripeHandler struct {
	uc *usecase.StripeUsecase
}

func NewStripeHandler(uc *usecase.StripeUsecase) *StripeHandler {
	return &StripeHandler{uc: uc}
}

type CreateSessionRequest struct {
	CartID int64 `json:"cart_id"`
}

func (h *StripeHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, blacklist repo.TokenBlacklist) {
	//webhookとverifyはStripe/リダイレクト起点なのでJWTを要求しない
	e.POST("/api/stripe/webhook", h.webhook)
	e.GET("/api/stripe/verify-session/:sessionId", h.verifySession)

	g := e.Group("/api/stripe")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenBlacklistGuard(blacklist))
	g.POST("/create-checkout-session", h.createSession)
}

func (h *StripeHandler) createSession(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateCheckoutSession(c.Request().Context(), req.CartID, userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// 署名検証に生のボディが必要
func (h *StripeHandler) webhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	sigHeader := c.Request().Header.Get("Stripe-Signature")

	if err := h.uc.HandleWebhook(c.Request().Context(), payload, sigHeader); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "received"})
}

func (h *StripeHandler) verifySession(c echo.Context) error {
	out, err := h.uc.VerifySession(c.Request().Context(), c.Param("sessionId"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
