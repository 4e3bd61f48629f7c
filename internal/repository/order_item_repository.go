package repository

import (
	"context"

	"app/internal/domain/model"
)

// 注文明細は注文作成時の一括insertのみ。
type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
