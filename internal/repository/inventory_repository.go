package repository

import "context"

// 在庫の増減だけを約束。
type InventoryRepository interface {
	//在庫が足りれば減らしてtrue、足りなければ何もせずfalse
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)
	SetStock(ctx context.Context, productID int64, newStock int64) error
}
