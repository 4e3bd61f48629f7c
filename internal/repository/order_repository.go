package repository

import (
	"context"

	"app/internal/domain/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	//行ロック付き取得（同一注文への同時payを直列化する）
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	//PENDINGのときだけ遷移させる（webhookと検証が競合しても二重処理しない）
	//遷移したらtrue、既に別ステータスならfalse
	UpdateStatusIfPending(ctx context.Context, orderID int64, status model.OrderStatus) (bool, error)
}
