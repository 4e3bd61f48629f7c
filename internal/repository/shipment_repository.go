package repository

import (
	"context"

	"app/internal/domain/model"
)

type ShipmentRepository interface {
	Create(ctx context.Context, s model.Shipment) (model.Shipment, error)
	FindByID(ctx context.Context, shipmentID int64) (model.Shipment, error)
	FindByOrderID(ctx context.Context, orderID int64) (model.Shipment, error)
	UpdateStatus(ctx context.Context, shipmentID int64, status model.ShipmentStatus) error
}
