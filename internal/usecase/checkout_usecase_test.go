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

func TestCheckoutUsecase_Checkout_Success(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposStub()
	uc := usecase.NewCheckoutUsecase(&txManagerStub{repos: repos}, false)

	cart := model.Cart{ID: 3, UserID: 1, Status: model.CartStatusActive}
	items := []model.CartItem{
		{ID: 1, CartID: 3, ProductID: 100, Quantity: 2, UnitPriceSnapshot: dec("20.00")},
		{ID: 2, CartID: 3, ProductID: 200, Quantity: 1, UnitPriceSnapshot: dec("49.99")},
	}

	repos.carts.On("FindByID", mock.Anything, int64(3)).Return(cart, nil)
	repos.cartItems.On("ListByCartID", mock.Anything, int64(3)).Return(items, nil)

	//単価はカートのスナップショットではなく現在価格を写す
	repos.products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{ID: 100, Name: "Mug", Price: dec("24.99")}, nil)
	repos.products.On("FindByID", mock.Anything, int64(200)).Return(model.Product{ID: 200, Name: "Grinder", Price: dec("49.99")}, nil)

	repos.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.UserID == 1 &&
			o.Status == model.OrderStatusPending &&
			o.TotalAmount.Equal(dec("99.97"))
	})).Return(int64(10), nil)
	repos.orderItems.On("CreateBulk", mock.Anything, int64(10), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 2 && items[0].UnitPriceSnapshot.Equal(dec("24.99"))
	})).Return(nil)
	repos.carts.On("Clear", mock.Anything, int64(3)).Return(nil)
	repos.carts.On("UpdateStatus", mock.Anything, int64(3), model.CartStatusCheckedOut).Return(nil)

	out, err := uc.Checkout(ctx, 3, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), out.ID)
	assert.Equal(t, "PENDING", out.Status)
	assert.True(t, out.TotalAmount.Equal(dec("99.97")))
	repos.carts.AssertExpectations(t)
	repos.orders.AssertExpectations(t)
}

func TestCheckoutUsecase_Checkout_EmptyCart(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposStub()
	uc := usecase.NewCheckoutUsecase(&txManagerStub{repos: repos}, false)

	repos.carts.On("FindByID", mock.Anything, int64(3)).Return(model.Cart{ID: 3, UserID: 1}, nil)
	repos.cartItems.On("ListByCartID", mock.Anything, int64(3)).Return([]model.CartItem{}, nil)

	_, err := uc.Checkout(ctx, 3, 1)
	assertErrContains(t, err, "cart is empty")
	repos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_Checkout_CartNotFound(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposStub()
	uc := usecase.NewCheckoutUsecase(&txManagerStub{repos: repos}, false)

	repos.carts.On("FindByID", mock.Anything, int64(99)).Return(model.Cart{}, repo.ErrNotFound)

	_, err := uc.Checkout(ctx, 99, 1)
	assertErrContains(t, err, "cart not found")
}

func TestCheckoutUsecase_Checkout_OtherUsersCart(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposStub()
	uc := usecase.NewCheckoutUsecase(&txManagerStub{repos: repos}, false)

	repos.carts.On("FindByID", mock.Anything, int64(3)).Return(model.Cart{ID: 3, UserID: 2}, nil)

	_, err := uc.Checkout(ctx, 3, 1)
	assertErrContains(t, err, "forbidden")
}

// ENFORCE_STOCK=trueなら在庫不足で確定できない
func TestCheckoutUsecase_Checkout_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposStub()
	uc := usecase.NewCheckoutUsecase(&txManagerStub{repos: repos}, true)

	cart := model.Cart{ID: 3, UserID: 1, Status: model.CartStatusActive}
	items := []model.CartItem{
		{ID: 1, CartID: 3, ProductID: 100, Quantity: 5, UnitPriceSnapshot: dec("24.99")},
	}

	repos.carts.On("FindByID", mock.Anything, int64(3)).Return(cart, nil)
	repos.cartItems.On("ListByCartID", mock.Anything, int64(3)).Return(items, nil)
	repos.products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{ID: 100, Name: "Mug", Price: dec("24.99")}, nil)
	repos.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(5)).Return(false, nil)

	_, err := uc.Checkout(ctx, 3, 1)
	assertErrContains(t, err, "out of stock")
	repos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
