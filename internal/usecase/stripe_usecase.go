package usecase

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/logging"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// ゲートウェイ呼び出しの上限
const gatewayTimeout = 15 * time.Second

// ゲートウェイに渡す明細1行。金額は最小通貨単位
type CheckoutLine struct {
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int64
	ImageURL    string // httpsのみ。空なら送らない
}

// ゲートウェイ側セッションのローカル表現。
// statusの正はあくまでゲートウェイ側
type GatewaySession struct {
	ID            string
	URL           string
	Status        string // open / complete / expired
	PaymentStatus string // paid / unpaid など
	Metadata      map[string]string
}

type WebhookEvent struct {
	Type    string
	Session GatewaySession
}

// CheckoutGatewayはホスト型決済ページ（Stripe Checkout）との境界。
type CheckoutGateway interface {
	CreateSession(ctx context.Context, customerEmail string, lines []CheckoutLine, metadata map[string]string) (GatewaySession, error)
	RetrieveSession(ctx context.Context, sessionID string) (GatewaySession, error)
	VerifyEvent(payload []byte, sigHeader string) (WebhookEvent, error)
}

// ToMinorUnitsは金額を最小通貨単位（セント）へ切り捨て変換する。
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}

// StripeUsecaseはホスト型チェックアウトのセッション作成と、
// webhook／リダイレクト検証によるローカル注文の突き合わせを行う。
type StripeUsecase struct {
	tx                repo.TransactionManager
	gateway           CheckoutGateway
	checkout          *CheckoutUsecase
	carts             repo.CartRepository
	cartItems         repo.CartItemRepository
	products          repo.ProductRepository
	users             repo.UserRepository
	webhookConfigured bool
}

func NewStripeUsecase(
	tx repo.TransactionManager,
	gateway CheckoutGateway,
	checkout *CheckoutUsecase,
	carts repo.CartRepository,
	cartItems repo.CartItemRepository,
	products repo.ProductRepository,
	users repo.UserRepository,
	webhookConfigured bool,
) *StripeUsecase {
	return &StripeUsecase{
		tx:                tx,
		gateway:           gateway,
		checkout:          checkout,
		carts:             carts,
		cartItems:         cartItems,
		products:          products,
		users:             users,
		webhookConfigured: webhookConfigured,
	}
}

type SessionOutput struct {
	SessionID     string `json:"session_id"`
	SessionURL    string `json:"session_url"`
	OrderID       int64  `json:"order_id"`
	Status        string `json:"status"` // PENDING / SUCCESS / EXPIRED
	PaymentStatus string `json:"payment_status,omitempty"`
}

// CreateCheckoutSessionはカートからStripe Checkoutのセッションを作る。
//
// 明細はcheckout（カートを空にする）より前の状態から組む。実際に買うものを
// ゲートウェイに映す必要があるため、順序を入れ替えてはいけない。
//
// 注文作成後にゲートウェイ側が失敗した場合、ローカルは巻き戻さない
// （注文はPENDINGのまま残り、payで決済し直せる）。
func (u *StripeUsecase) CreateCheckoutSession(ctx context.Context, cartID int64, userID int64) (SessionOutput, error) {
	if userID <= 0 {
		return SessionOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartID <= 0 {
		return SessionOutput{}, NewHTTPError(http.StatusBadRequest, "invalid cart_id")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err == repo.ErrNotFound {
		return SessionOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return SessionOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//カートと明細をまとめて読む
	cart, err := u.carts.FindByID(ctx, cartID)
	if err == repo.ErrNotFound {
		return SessionOutput{}, NewHTTPError(http.StatusNotFound, "cart not found")
	}
	if err != nil {
		return SessionOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//カートの所有者チェック
	if cart.UserID != userID {
		return SessionOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	items, err := u.cartItems.ListByCartID(ctx, cart.ID)
	if err != nil {
		return SessionOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(items) == 0 {
		return SessionOutput{}, NewHTTPError(http.StatusBadRequest, "cart is empty")
	}

	lines := u.buildLines(ctx, items)
	if len(lines) == 0 {
		return SessionOutput{}, NewHTTPError(http.StatusBadRequest, "no valid items in cart")
	}

	//ローカル注文を作成（この中でカートが空になる）
	order, err := u.checkout.Checkout(ctx, cartID, userID)
	if err != nil {
		return SessionOutput{}, err
	}

	//セッションから注文へ戻れるようにメタデータで紐づける
	metadata := map[string]string{
		"orderId": strconv.FormatInt(order.ID, 10),
		"userId":  strconv.FormatInt(userID, 10),
		"cartId":  strconv.FormatInt(cartID, 10),
	}

	gwCtx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	sess, err := u.gateway.CreateSession(gwCtx, user.Email, lines, metadata)
	if err != nil {
		logging.FromCtx(ctx).Error("stripe session create failed",
			"order_id", order.ID,
			"cart_id", cartID,
			"error", err.Error(),
		)
		return SessionOutput{}, NewHTTPError(http.StatusBadGateway, "failed to create checkout session")
	}

	logging.FromCtx(ctx).Info("stripe session created",
		"session_id", sess.ID,
		"order_id", order.ID,
	)

	return SessionOutput{
		SessionID:  sess.ID,
		SessionURL: sess.URL,
		OrderID:    order.ID,
		Status:     "PENDING",
	}, nil
}

// 不正な明細（商品消滅・数量0以下）は落として残りで続行する
func (u *StripeUsecase) buildLines(ctx context.Context, items []model.CartItem) []CheckoutLine {
	lines := make([]CheckoutLine, 0, len(items))

	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}

		p, err := u.products.FindByID(ctx, it.ProductID)
		if err != nil {
			logging.FromCtx(ctx).Warn("skipping invalid cart item", "cart_item_id", it.ID)
			continue
		}

		line := CheckoutLine{
			Name:        p.Name,
			Description: p.Description,
			UnitAmount:  ToMinorUnits(p.Price),
			Quantity:    it.Quantity,
		}
		//画像はhttpsのときだけ。そうでなければ黙って落とす
		if strings.HasPrefix(p.ImageURL, "https://") {
			line.ImageURL = p.ImageURL
		}

		lines = append(lines, line)
	}

	return lines
}

// HandleWebhookはゲートウェイからの通知で注文を確定する。
// 同じイベントの再配送（ゲートウェイはリトライする）に対して冪等であること。
func (u *StripeUsecase) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	//シークレット未設定の環境では何もしない
	if !u.webhookConfigured {
		logging.FromCtx(ctx).Warn("webhook secret not configured - skipping webhook verification")
		return nil
	}

	event, err := u.gateway.VerifyEvent(payload, sigHeader)
	if err != nil {
		return NewHTTPError(http.StatusUnauthorized, "invalid signature")
	}

	if event.Type != "checkout.session.completed" {
		return nil
	}

	orderID, ok := parseMetaID(event.Session.Metadata, "orderId")
	if !ok {
		logging.FromCtx(ctx).Warn("webhook without orderId metadata", "session_id", event.Session.ID)
		return nil
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Orders().FindByID(ctx, orderID); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "order not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//CONFIRMEDへの上書きは何度来ても同じ結果
		if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusConfirmed); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//注文が完了したのでカートを片づける。
		//再配送時は既に消えているので「無い」は成功扱い
		if cartID, ok := parseMetaID(event.Session.Metadata, "cartId"); ok {
			if err := r.Carts().Delete(ctx, cartID); err != nil && err != repo.ErrNotFound {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		logging.FromCtx(ctx).Info("order confirmed via webhook", "order_id", orderID)
		return nil
	})
}

// VerifySessionはリダイレクト後の同期確認。webhookが届かない環境の代替経路。
// webhookと同時に走っても、PENDINGのときだけ遷移させる条件付き更新なので二重処理にならない。
func (u *StripeUsecase) VerifySession(ctx context.Context, sessionID string) (SessionOutput, error) {
	if sessionID == "" {
		return SessionOutput{}, NewHTTPError(http.StatusBadRequest, "invalid session id")
	}

	gwCtx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	sess, err := u.gateway.RetrieveSession(gwCtx, sessionID)
	if err != nil {
		return SessionOutput{}, NewHTTPError(http.StatusBadGateway, "failed to verify session")
	}

	orderID, _ := parseMetaID(sess.Metadata, "orderId")

	var status string
	switch {
	case sess.Status == "complete" && sess.PaymentStatus == "paid":
		status = "SUCCESS"
		u.confirmIfPending(ctx, orderID, sess.Metadata)
	case sess.Status == "expired":
		status = "EXPIRED"
	default:
		status = "PENDING"
	}

	return SessionOutput{
		SessionID:     sess.ID,
		SessionURL:    sess.URL,
		OrderID:       orderID,
		Status:        status,
		PaymentStatus: sess.PaymentStatus,
	}, nil
}

// 決済自体は成功しているので、ここでのローカル更新失敗は検証応答を壊さない。
// ログに残して飲み込む
func (u *StripeUsecase) confirmIfPending(ctx context.Context, orderID int64, metadata map[string]string) {
	if orderID <= 0 {
		return
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		changed, err := r.Orders().UpdateStatusIfPending(ctx, orderID, model.OrderStatusConfirmed)
		if err != nil {
			return err
		}
		if !changed {
			//webhookが先に処理済み。何もしない
			return nil
		}

		logging.FromCtx(ctx).Info("order confirmed via redirect verification", "order_id", orderID)

		if cartID, ok := parseMetaID(metadata, "cartId"); ok {
			if err := r.Carts().Delete(ctx, cartID); err != nil && err != repo.ErrNotFound {
				logging.FromCtx(ctx).Warn("failed to delete cart after verification",
					"cart_id", cartID,
					"error", err.Error(),
				)
			}
		}
		return nil
	})
	if err != nil {
		logging.FromCtx(ctx).Warn("failed to update order after verification",
			"order_id", orderID,
			"error", err.Error(),
		)
	}
}

func parseMetaID(metadata map[string]string, key string) (int64, bool) {
	v, ok := metadata[key]
	if !ok || v == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
