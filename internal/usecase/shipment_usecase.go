package usecase

import (
	"context"
	"fmt"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// ShipmentUsecaseは出荷の作成とステータス遷移を扱う。
// 遷移はCREATED→SHIPPED→DELIVEREDの一方向のみ。
type ShipmentUsecase struct {
	shipments repo.ShipmentRepository
	orders    repo.OrderRepository
}

func NewShipmentUsecase(shipments repo.ShipmentRepository, orders repo.OrderRepository) *ShipmentUsecase {
	return &ShipmentUsecase{shipments: shipments, orders: orders}
}

type CreateShipmentInput struct {
	OrderID int64
	Carrier string
	Address string
}

type ShipmentOutput struct {
	ID             int64  `json:"id"`
	OrderID        int64  `json:"order_id"`
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
	Address        string `json:"address"`
	Status         string `json:"status"`
}

func (u *ShipmentUsecase) Create(ctx context.Context, in CreateShipmentInput) (ShipmentOutput, error) {
	if in.OrderID <= 0 {
		return ShipmentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order_id")
	}
	if in.Address == "" {
		return ShipmentOutput{}, NewHTTPError(http.StatusBadRequest, "address is required")
	}

	if _, err := u.orders.FindByID(ctx, in.OrderID); err != nil {
		if err == repo.ErrNotFound {
			return ShipmentOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
		}
		return ShipmentOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//出荷は注文と1対1
	if _, err := u.shipments.FindByOrderID(ctx, in.OrderID); err == nil {
		return ShipmentOutput{}, NewHTTPError(http.StatusConflict, "shipment already exists for order")
	} else if err != repo.ErrNotFound {
		return ShipmentOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	created, err := u.shipments.Create(ctx, model.Shipment{
		OrderID: in.OrderID,
		Carrier: in.Carrier,
		Address: in.Address,
		Status:  model.ShipmentStatusCreated,
	})
	if err != nil {
		return ShipmentOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toShipmentOutput(created), nil
}

func (u *ShipmentUsecase) GetByID(ctx context.Context, shipmentID int64) (ShipmentOutput, error) {
	if shipmentID <= 0 {
		return ShipmentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	s, err := u.shipments.FindByID(ctx, shipmentID)
	if err == repo.ErrNotFound {
		return ShipmentOutput{}, NewHTTPError(http.StatusNotFound, "shipment not found")
	}
	if err != nil {
		return ShipmentOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toShipmentOutput(s), nil
}

func (u *ShipmentUsecase) GetByOrderID(ctx context.Context, orderID int64) (ShipmentOutput, error) {
	if orderID <= 0 {
		return ShipmentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	s, err := u.shipments.FindByOrderID(ctx, orderID)
	if err == repo.ErrNotFound {
		return ShipmentOutput{}, NewHTTPError(http.StatusNotFound, "shipment not found for order")
	}
	if err != nil {
		return ShipmentOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toShipmentOutput(s), nil
}

// UpdateStatusは遷移表に無い組み合わせをすべて拒否する。
// 同一ステータスへの遷移もDELIVEREDからの遷移も不可
func (u *ShipmentUsecase) UpdateStatus(ctx context.Context, shipmentID int64, requested string) (ShipmentOutput, error) {
	if shipmentID <= 0 {
		return ShipmentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	next := model.ShipmentStatus(requested)
	switch next {
	case model.ShipmentStatusCreated, model.ShipmentStatusShipped, model.ShipmentStatusDelivered:
	default:
		return ShipmentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	s, err := u.shipments.FindByID(ctx, shipmentID)
	if err == repo.ErrNotFound {
		return ShipmentOutput{}, NewHTTPError(http.StatusNotFound, "shipment not found")
	}
	if err != nil {
		return ShipmentOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !isValidTransition(s.Status, next) {
		return ShipmentOutput{}, NewHTTPError(http.StatusConflict,
			fmt.Sprintf("invalid shipment status transition: %s -> %s", s.Status, next))
	}

	if err := u.shipments.UpdateStatus(ctx, shipmentID, next); err != nil {
		if err == repo.ErrNotFound {
			return ShipmentOutput{}, NewHTTPError(http.StatusNotFound, "shipment not found")
		}
		return ShipmentOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	s.Status = next
	return toShipmentOutput(s), nil
}

func isValidTransition(current, next model.ShipmentStatus) bool {
	switch current {
	case model.ShipmentStatusCreated:
		return next == model.ShipmentStatusShipped
	case model.ShipmentStatusShipped:
		return next == model.ShipmentStatusDelivered
	default:
		return false
	}
}

func toShipmentOutput(s model.Shipment) ShipmentOutput {
	return ShipmentOutput{
		ID:             s.ID,
		OrderID:        s.OrderID,
		Carrier:        s.Carrier,
		TrackingNumber: s.TrackingNumber,
		Address:        s.Address,
		Status:         string(s.Status),
	}
}
