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

func newOrderUC() (*txReposStub, *usecase.OrderUsecase) {
	repos := newTxReposStub()
	return repos, usecase.NewOrderUsecase(&txManagerStub{repos: repos})
}

func TestOrderUsecase_GetMyOrderDetail_Success(t *testing.T) {
	ctx := context.Background()
	repos, uc := newOrderUC()

	repos.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, UserID: 1, Status: model.OrderStatusPending, TotalAmount: dec("99.97"),
	}, nil)
	repos.orderItems.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{
		{OrderID: 10, ProductID: 100, ProductNameSnapshot: "Mug", UnitPriceSnapshot: dec("24.99"), Quantity: 2},
	}, nil)

	out, err := uc.GetMyOrderDetail(ctx, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, "PENDING", out.Status)
	assert.Len(t, out.Items, 1)
	//スナップショット名が出ること
	assert.Equal(t, "Mug", out.Items[0].Name)
}

// 他人の注文は404（403ではなく存在しない扱い）
func TestOrderUsecase_GetMyOrderDetail_OtherUsersOrder(t *testing.T) {
	ctx := context.Background()
	repos, uc := newOrderUC()

	repos.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{ID: 10, UserID: 2}, nil)

	_, err := uc.GetMyOrderDetail(ctx, 1, 10)
	assertErrContains(t, err, "not found")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

func TestOrderUsecase_CancelMyOrder_Pending(t *testing.T) {
	ctx := context.Background()
	repos, uc := newOrderUC()

	repos.orders.On("FindByIDForUpdate", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, UserID: 1, Status: model.OrderStatusPending,
	}, nil)
	repos.orders.On("UpdateStatus", mock.Anything, int64(10), model.OrderStatusCancelled).Return(nil)
	repos.orderItems.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{}, nil)

	out, err := uc.CancelMyOrder(ctx, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, "CANCELLED", out.Status)
}

func TestOrderUsecase_CancelMyOrder_ConfirmedIsConflict(t *testing.T) {
	ctx := context.Background()
	repos, uc := newOrderUC()

	repos.orders.On("FindByIDForUpdate", mock.Anything, int64(10)).Return(model.Order{
		ID: 10, UserID: 1, Status: model.OrderStatusConfirmed,
	}, nil)

	_, err := uc.CancelMyOrder(ctx, 1, 10)
	assertErrContains(t, err, "order is not cancellable")

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 409, he.Status)
	repos.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderUsecase_CancelMyOrder_NotFound(t *testing.T) {
	ctx := context.Background()
	repos, uc := newOrderUC()

	repos.orders.On("FindByIDForUpdate", mock.Anything, int64(99)).Return(model.Order{}, repo.ErrNotFound)

	_, err := uc.CancelMyOrder(ctx, 1, 99)
	assertErrContains(t, err, "not found")
}

func TestOrderUsecase_ListMyOrders_Empty(t *testing.T) {
	ctx := context.Background()
	repos, uc := newOrderUC()

	repos.orders.On("ListByUserID", mock.Anything, int64(1), 1, 50).Return([]model.Order{}, int64(0), nil)

	out, err := uc.ListMyOrders(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, out, 0)
}
