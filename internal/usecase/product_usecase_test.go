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

func newProductUC() (*ProductRepoMock, *InventoryRepoMock, *CategoryRepoMock, *usecase.ProductUsecase) {
	pRepo := new(ProductRepoMock)
	iRepo := new(InventoryRepoMock)
	cRepo := new(CategoryRepoMock)
	return pRepo, iRepo, cRepo, usecase.NewProductUsecase(pRepo, iRepo, cRepo)
}

func TestProductUsecase_ListPublicProducts_InvalidPage(t *testing.T) {
	_, _, _, uc := newProductUC()

	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{Page: 0, Limit: 20})
	assertErrContains(t, err, "invalid page")
}

func TestProductUsecase_ListPublicProducts_InvalidLimit(t *testing.T) {
	_, _, _, uc := newProductUC()

	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 101})
	assertErrContains(t, err, "invalid limit")
}

func TestProductUsecase_ListPublicProducts_Success(t *testing.T) {
	ctx := context.Background()
	pRepo, _, _, uc := newProductUC()

	in := usecase.ListProductsInput{Page: 1, Limit: 20, Q: "coffee", Sort: "new"}
	q := repo.ProductListQuery{Page: 1, Limit: 20, Q: "coffee", Sort: "new"}

	items := []model.Product{
		{ID: 1, Name: "A", Price: dec("24.99"), IsActive: true},
	}
	pRepo.On("ListPublic", mock.Anything, q).Return(items, int64(1), nil)

	out, err := uc.ListPublicProducts(ctx, in)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	assert.Equal(t, 1, out.Page)
	assert.Len(t, out.Items, 1)
	assert.True(t, out.Items[0].Price.Equal(dec("24.99")))
}

func TestProductUsecase_GetPublicProduct_InactiveIsNotFound(t *testing.T) {
	ctx := context.Background()
	pRepo, _, _, uc := newProductUC()

	pRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, IsActive: false}, nil)

	_, err := uc.GetPublicProduct(ctx, 1)
	assertErrContains(t, err, "not found")
}

func TestProductUsecase_CreateProduct_NegativePrice(t *testing.T) {
	_, _, _, uc := newProductUC()

	_, err := uc.CreateProduct(context.Background(), usecase.SaveProductInput{Name: "A", Price: dec("-1")})
	assertErrContains(t, err, "invalid price")
}

func TestProductUsecase_UpdateProduct_NotFound(t *testing.T) {
	ctx := context.Background()
	pRepo, _, _, uc := newProductUC()

	pRepo.On("FindByID", mock.Anything, int64(9)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.UpdateProduct(ctx, 9, usecase.SaveProductInput{Name: "A", Price: dec("1.00")})
	assertErrContains(t, err, "not found")
}

func TestProductUsecase_SetStock_Negative(t *testing.T) {
	_, _, _, uc := newProductUC()

	err := uc.SetStock(context.Background(), 1, -5)
	assertErrContains(t, err, "invalid stock")
}

func TestProductUsecase_SetStock_Success(t *testing.T) {
	ctx := context.Background()
	_, iRepo, _, uc := newProductUC()

	iRepo.On("SetStock", mock.Anything, int64(1), int64(30)).Return(nil)

	err := uc.SetStock(ctx, 1, 30)
	assert.NoError(t, err)
	iRepo.AssertExpectations(t)
}

func TestProductUsecase_CreateProduct_UnknownCategory(t *testing.T) {
	ctx := context.Background()
	_, _, cRepo, uc := newProductUC()

	cRepo.On("FindByID", mock.Anything, int64(99)).Return(model.Category{}, repo.ErrNotFound)

	_, err := uc.CreateProduct(ctx, usecase.SaveProductInput{
		Name:       "Coffee Beans",
		Price:      dec("12.00"),
		CategoryID: 99,
	})
	assertErrContains(t, err, "category not found")
}

func TestProductUsecase_CreateProduct_WithCategory(t *testing.T) {
	ctx := context.Background()
	pRepo, _, cRepo, uc := newProductUC()

	cRepo.On("FindByID", mock.Anything, int64(3)).Return(model.Category{ID: 3, Name: "Drinks"}, nil)
	pRepo.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.CategoryID == 3 && p.Name == "Coffee Beans"
	})).Return(model.Product{ID: 1, Name: "Coffee Beans", Price: dec("12.00"), CategoryID: 3}, nil)

	out, err := uc.CreateProduct(ctx, usecase.SaveProductInput{
		Name:       "Coffee Beans",
		Price:      dec("12.00"),
		CategoryID: 3,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), out.CategoryID)
	pRepo.AssertExpectations(t)
}
