package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/domain/model"
	"app/internal/logging"
	"app/internal/payment"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

// プロバイダ呼び出しの上限。超えたら決済拒否と同じ扱い
const providerChargeTimeout = 10 * time.Second

// PaymentUsecaseは注文への決済を実行する。
// chargeの失敗は業務上の正常系（FAILEDのPaymentを記録して普通に返す）。
type PaymentUsecase struct {
	tx        repo.TransactionManager
	providers *payment.Registry
}

func NewPaymentUsecase(tx repo.TransactionManager, providers *payment.Registry) *PaymentUsecase {
	return &PaymentUsecase{tx: tx, providers: providers}
}

type PayInput struct {
	OrderID int64
	Method  string // "CARD"ならStripe、それ以外はモック
}

type PaymentOutput struct {
	ID        int64  `json:"id"`
	OrderID   int64  `json:"order_id"`
	Status    string `json:"status"`
	Provider  string `json:"provider"`
	Reference string `json:"reference"`
}

func (u *PaymentUsecase) Pay(ctx context.Context, in PayInput) (PaymentOutput, error) {
	if in.OrderID <= 0 {
		return PaymentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order_id")
	}

	var out PaymentOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//行ロックで同一注文の同時payを直列化する
		order, err := r.Orders().FindByIDForUpdate(ctx, in.OrderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//二重決済防止。SUCCESSが1件でもあれば409
		exists, err := r.Payments().ExistsSuccessfulForOrder(ctx, order.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if exists {
			return NewHTTPError(http.StatusConflict, "already paid")
		}

		prov := u.providers.Resolve(in.Method)

		pmt := model.Payment{
			OrderID:  order.ID,
			Amount:   order.TotalAmount,
			Status:   model.PaymentStatusInitiated,
			Provider: prov.Name(),
		}

		chargeCtx, cancel := context.WithTimeout(ctx, providerChargeTimeout)
		defer cancel()

		ref, chargeErr := prov.Charge(chargeCtx, order.TotalAmount)
		if chargeErr != nil {
			//拒否もタイムアウトも同じ扱い。注文はPENDINGのまま残し、再試行は新しいpayで
			logging.FromCtx(ctx).Warn("charge failed",
				"order_id", order.ID,
				"provider", prov.Name(),
				"error", chargeErr.Error(),
			)
			pmt.Status = model.PaymentStatusFailed
		} else {
			pmt.Status = model.PaymentStatusSuccess
			pmt.Reference = ref
		}

		pmtID, err := r.Payments().Create(ctx, pmt)
		if err != nil {
			//partial unique indexに弾かれた＝並走したpayが先にSUCCESSを入れた
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return NewHTTPError(http.StatusConflict, "already paid")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if pmt.Status == model.PaymentStatusSuccess {
			if err := r.Orders().UpdateStatus(ctx, order.ID, model.OrderStatusConfirmed); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		out = PaymentOutput{
			ID:        pmtID,
			OrderID:   order.ID,
			Status:    string(pmt.Status),
			Provider:  pmt.Provider,
			Reference: pmt.Reference,
		}
		return nil
	})

	if err != nil {
		return PaymentOutput{}, err
	}
	return out, nil
}

// 注文の決済履歴（所有者のみ）
func (u *PaymentUsecase) ListForOrder(ctx context.Context, userID int64, orderID int64) ([]PaymentOutput, error) {
	if userID <= 0 {
		return []PaymentOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return []PaymentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var outs []PaymentOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.Payments().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]PaymentOutput, 0, len(items))
		for _, p := range items {
			outs = append(outs, PaymentOutput{
				ID:        p.ID,
				OrderID:   p.OrderID,
				Status:    string(p.Status),
				Provider:  p.Provider,
				Reference: p.Reference,
			})
		}
		return nil
	})

	if err != nil {
		return []PaymentOutput{}, err
	}
	return outs, nil
}
