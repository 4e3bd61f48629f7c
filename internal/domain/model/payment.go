package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusInitiated PaymentStatus = "INITIATED"
	PaymentStatusSuccess   PaymentStatus = "SUCCESS"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// 決済試行。1回のchargeにつき1行、追記のみ。
// SUCCESSは注文ごとに最大1件（partial unique indexで保証）。
type Payment struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64           `gorm:"not null;index" json:"order_id"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status    PaymentStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	Provider  string          `gorm:"type:varchar(20);not null" json:"provider"` // STRIPE / MOCK
	Reference string          `gorm:"type:varchar(255)" json:"reference"`        // transaction id
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
