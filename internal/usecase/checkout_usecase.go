package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// CheckoutUsecaseはカートを注文へ確定する。
// 注文作成とカートのクリアは必ず同一トランザクション。
// 片方だけ成立した状態（注文なしでカートが空、注文ありでカートが残る）を作らない。
type CheckoutUsecase struct {
	tx           repo.TransactionManager
	enforceStock bool
}

func NewCheckoutUsecase(tx repo.TransactionManager, enforceStock bool) *CheckoutUsecase {
	return &CheckoutUsecase{tx: tx, enforceStock: enforceStock}
}

func (u *CheckoutUsecase) Checkout(ctx context.Context, cartID int64, userID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid cart_id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//カートと明細を先に確定的に読む（遅延読みしない）
		cart, err := r.Carts().FindByID(ctx, cartID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "cart not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//他人のカートは確定させない
		if cart.UserID != userID {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}

		items, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(items) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		order, orderItems, err := placeOrder(ctx, r, userID, items, u.enforceStock)
		if err != nil {
			return err
		}

		//カートを空にしてCHECKED_OUTへ
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusCheckedOut); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}
