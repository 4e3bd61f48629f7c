package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newShipmentUC() (*ShipmentRepoMock, *OrderRepoMock, *usecase.ShipmentUsecase) {
	sRepo := new(ShipmentRepoMock)
	oRepo := new(OrderRepoMock)
	return sRepo, oRepo, usecase.NewShipmentUsecase(sRepo, oRepo)
}

func TestShipmentUsecase_Create_Success(t *testing.T) {
	ctx := context.Background()
	sRepo, oRepo, uc := newShipmentUC()

	oRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Order{ID: 10}, nil)
	sRepo.On("FindByOrderID", mock.Anything, int64(10)).Return(model.Shipment{}, repo.ErrNotFound)
	sRepo.On("Create", mock.Anything, mock.MatchedBy(func(s model.Shipment) bool {
		return s.OrderID == 10 && s.Status == model.ShipmentStatusCreated
	})).Return(model.Shipment{ID: 1, OrderID: 10, Status: model.ShipmentStatusCreated}, nil)

	out, err := uc.Create(ctx, usecase.CreateShipmentInput{OrderID: 10, Carrier: "DHL", Address: "1 Main Rd"})
	assert.NoError(t, err)
	assert.Equal(t, "CREATED", out.Status)
	sRepo.AssertExpectations(t)
}

func TestShipmentUsecase_Create_DuplicateForOrder(t *testing.T) {
	ctx := context.Background()
	sRepo, oRepo, uc := newShipmentUC()

	oRepo.On("FindByID", mock.Anything, int64(10)).Return(model.Order{ID: 10}, nil)
	sRepo.On("FindByOrderID", mock.Anything, int64(10)).Return(model.Shipment{ID: 1, OrderID: 10}, nil)

	_, err := uc.Create(ctx, usecase.CreateShipmentInput{OrderID: 10, Address: "1 Main Rd"})
	assertErrContains(t, err, "shipment already exists")
	sRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestShipmentUsecase_Create_OrderNotFound(t *testing.T) {
	ctx := context.Background()
	_, oRepo, uc := newShipmentUC()

	oRepo.On("FindByID", mock.Anything, int64(99)).Return(model.Order{}, repo.ErrNotFound)

	_, err := uc.Create(ctx, usecase.CreateShipmentInput{OrderID: 99, Address: "1 Main Rd"})
	assertErrContains(t, err, "order not found")
}

func TestShipmentUsecase_UpdateStatus_Transitions(t *testing.T) {
	cases := []struct {
		name    string
		from    model.ShipmentStatus
		to      string
		allowed bool
	}{
		{"created to shipped", model.ShipmentStatusCreated, "SHIPPED", true},
		{"shipped to delivered", model.ShipmentStatusShipped, "DELIVERED", true},
		{"created to delivered skips shipped", model.ShipmentStatusCreated, "DELIVERED", false},
		{"shipped back to created", model.ShipmentStatusShipped, "CREATED", false},
		{"delivered is terminal", model.ShipmentStatusDelivered, "SHIPPED", false},
		{"same status", model.ShipmentStatusShipped, "SHIPPED", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			sRepo, _, uc := newShipmentUC()

			sRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Shipment{ID: 1, OrderID: 10, Status: tc.from}, nil)
			if tc.allowed {
				sRepo.On("UpdateStatus", mock.Anything, int64(1), model.ShipmentStatus(tc.to)).Return(nil)
			}

			out, err := uc.UpdateStatus(ctx, 1, tc.to)
			if tc.allowed {
				assert.NoError(t, err)
				assert.Equal(t, tc.to, out.Status)
			} else {
				assertErrContains(t, err, "invalid shipment status transition")
				//遷移元と遷移先の両方をメッセージで返す
				assertErrContains(t, err, string(tc.from))
				assertErrContains(t, err, tc.to)
				sRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestShipmentUsecase_UpdateStatus_UnknownStatus(t *testing.T) {
	ctx := context.Background()
	_, _, uc := newShipmentUC()

	_, err := uc.UpdateStatus(ctx, 1, "TELEPORTED")
	assertErrContains(t, err, "invalid status")
}

func TestShipmentUsecase_GetByOrderID_NotFound(t *testing.T) {
	ctx := context.Background()
	sRepo, _, uc := newShipmentUC()

	sRepo.On("FindByOrderID", mock.Anything, int64(10)).Return(model.Shipment{}, repo.ErrNotFound)

	_, err := uc.GetByOrderID(ctx, 10)
	assertErrContains(t, err, "shipment not found")
}
