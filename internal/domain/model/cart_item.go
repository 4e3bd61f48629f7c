package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細。
// unit_price_snapshotは追加時点の価格を必ず保存。
type CartItem struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID            int64           `gorm:"not null;index" json:"cart_id"`
	ProductID         int64           `gorm:"not null;index" json:"product_id"`
	Quantity          int64           `gorm:"not null" json:"quantity"`
	UnitPriceSnapshot decimal.Decimal `gorm:"type:numeric(12,2);not null;column:unit_price_snapshot" json:"unit_price_snapshot"`
	CreatedAt         time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 明細の小計
func (ci CartItem) LineTotal() decimal.Decimal {
	return ci.UnitPriceSnapshot.Mul(decimal.NewFromInt(ci.Quantity))
}
