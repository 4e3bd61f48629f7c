package model

import "time"

type ShipmentStatus string

const (
	ShipmentStatusCreated   ShipmentStatus = "CREATED"
	ShipmentStatusShipped   ShipmentStatus = "SHIPPED"
	ShipmentStatusDelivered ShipmentStatus = "DELIVERED"
)

// 注文と1対1。ステータスはCREATED→SHIPPED→DELIVEREDの一方向のみ。
type Shipment struct {
	ID             int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID        int64          `gorm:"not null;uniqueIndex" json:"order_id"`
	Carrier        string         `gorm:"type:varchar(100)" json:"carrier"`
	TrackingNumber string         `gorm:"type:varchar(100)" json:"tracking_number"`
	Address        string         `gorm:"type:varchar(512);not null" json:"address"`
	Status         ShipmentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt      time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
