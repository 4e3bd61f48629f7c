package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newCartUC() (*CartRepoMock, *CartItemRepoMock, *ProductRepoMock, *usecase.CartUsecase) {
	cRepo := new(CartRepoMock)
	ciRepo := new(CartItemRepoMock)
	pRepo := new(ProductRepoMock)
	return cRepo, ciRepo, pRepo, usecase.NewCartUsecase(cRepo, ciRepo, pRepo)
}

func TestCartUsecase_AddToCart_SnapshotsCurrentPrice(t *testing.T) {
	ctx := context.Background()
	cRepo, ciRepo, pRepo, uc := newCartUC()

	cRepo.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 3, UserID: 1}, nil)
	pRepo.On("FindByID", mock.Anything, int64(100)).Return(model.Product{ID: 100, Name: "Mug", Price: dec("24.99"), IsActive: true}, nil)

	//追加時点の価格がスナップショットとして渡ること
	ciRepo.On("UpsertByCartAndProduct", mock.Anything, int64(3), int64(100), int64(2), dec("24.99")).Return(nil)
	ciRepo.On("ListByCartID", mock.Anything, int64(3)).Return([]model.CartItem{
		{ID: 1, CartID: 3, ProductID: 100, Quantity: 2, UnitPriceSnapshot: dec("24.99")},
	}, nil)

	out, err := uc.AddToCart(ctx, 1, usecase.AddCartInput{ProductID: 100, Quantity: 2})
	assert.NoError(t, err)
	assert.True(t, out.Total.Equal(dec("49.98")))
	ciRepo.AssertExpectations(t)
}

func TestCartUsecase_AddToCart_InactiveProduct(t *testing.T) {
	ctx := context.Background()
	cRepo, _, pRepo, uc := newCartUC()

	cRepo.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 3}, nil)
	pRepo.On("FindByID", mock.Anything, int64(100)).Return(model.Product{ID: 100, IsActive: false}, nil)

	_, err := uc.AddToCart(ctx, 1, usecase.AddCartInput{ProductID: 100, Quantity: 1})
	assertErrContains(t, err, "invalid product")
}

func TestCartUsecase_AddToCart_InvalidQuantity(t *testing.T) {
	_, _, _, uc := newCartUC()

	_, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 100, Quantity: 0})
	assertErrContains(t, err, "invalid quantity")
}

func TestCartUsecase_UpdateCartItem_NotOwned(t *testing.T) {
	ctx := context.Background()
	_, ciRepo, _, uc := newCartUC()

	ciRepo.On("IsOwnedByUser", mock.Anything, int64(7), int64(1)).Return(false, nil)

	_, err := uc.UpdateCartItem(ctx, 1, 7, usecase.UpdateCartItemInput{Quantity: 2})
	assertErrContains(t, err, "not found")
	ciRepo.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_DeleteCartItem_RecomputesTotal(t *testing.T) {
	ctx := context.Background()
	cRepo, ciRepo, _, uc := newCartUC()

	ciRepo.On("IsOwnedByUser", mock.Anything, int64(7), int64(1)).Return(true, nil)
	ciRepo.On("DeleteByID", mock.Anything, int64(7)).Return(nil)
	cRepo.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 3, UserID: 1}, nil)
	ciRepo.On("ListByCartID", mock.Anything, int64(3)).Return([]model.CartItem{
		{ID: 8, CartID: 3, ProductID: 200, Quantity: 1, UnitPriceSnapshot: dec("49.99")},
	}, nil)

	out, err := uc.DeleteCartItem(ctx, 1, 7)
	assert.NoError(t, err)
	assert.True(t, out.Total.Equal(dec("49.99")))
}

func TestCartUsecase_GetCart_EmptyCartHasZeroTotal(t *testing.T) {
	ctx := context.Background()
	cRepo, ciRepo, _, uc := newCartUC()

	cRepo.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 3, UserID: 1}, nil)
	ciRepo.On("ListByCartID", mock.Anything, int64(3)).Return([]model.CartItem{}, nil)

	out, err := uc.GetCart(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, out.Items, 0)
	assert.True(t, out.Total.IsZero())
}
