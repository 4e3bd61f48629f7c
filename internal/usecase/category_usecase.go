package usecase

import (
	"context"
	"errors"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

// CategoryUsecaseはカテゴリのCRUDを担う。
// 名前は大文字小文字を区別せず一意。重複は409で返す。
type CategoryUsecase struct {
	categoryRepo repo.CategoryRepository
}

func NewCategoryUsecase(categoryRepo repo.CategoryRepository) *CategoryUsecase {
	return &CategoryUsecase{categoryRepo: categoryRepo}
}

type SaveCategoryInput struct {
	Name        string
	Description string
}

type CategoryOutput struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (u *CategoryUsecase) ListCategories(ctx context.Context) ([]CategoryOutput, error) {
	items, err := u.categoryRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]CategoryOutput, 0, len(items))
	for _, c := range items {
		outs = append(outs, toCategoryOutput(c))
	}
	return outs, nil
}

func (u *CategoryUsecase) GetCategory(ctx context.Context, categoryID int64) (CategoryOutput, error) {
	if categoryID <= 0 {
		return CategoryOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	c, err := u.categoryRepo.FindByID(ctx, categoryID)
	if err == repo.ErrNotFound {
		return CategoryOutput{}, NewHTTPError(http.StatusNotFound, "category not found")
	}
	if err != nil {
		return CategoryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toCategoryOutput(c), nil
}

// 管理者: カテゴリ作成
func (u *CategoryUsecase) CreateCategory(ctx context.Context, in SaveCategoryInput) (CategoryOutput, error) {
	if in.Name == "" {
		return CategoryOutput{}, NewHTTPError(http.StatusBadRequest, "name is required")
	}

	exists, err := u.categoryRepo.ExistsByName(ctx, in.Name, 0)
	if err != nil {
		return CategoryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if exists {
		return CategoryOutput{}, NewHTTPError(http.StatusConflict, "category name already exists")
	}

	created, err := u.categoryRepo.Create(ctx, model.Category{
		Name:        in.Name,
		Description: in.Description,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		//チェックをすり抜けた同時作成
		return CategoryOutput{}, NewHTTPError(http.StatusConflict, "category name already exists")
	}
	if err != nil {
		return CategoryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toCategoryOutput(created), nil
}

// 管理者: カテゴリ更新。自分自身の名前（大文字小文字違い含む）は重複とみなさない
func (u *CategoryUsecase) UpdateCategory(ctx context.Context, categoryID int64, in SaveCategoryInput) (CategoryOutput, error) {
	if categoryID <= 0 {
		return CategoryOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Name == "" {
		return CategoryOutput{}, NewHTTPError(http.StatusBadRequest, "name is required")
	}

	c, err := u.categoryRepo.FindByID(ctx, categoryID)
	if err == repo.ErrNotFound {
		return CategoryOutput{}, NewHTTPError(http.StatusNotFound, "category not found")
	}
	if err != nil {
		return CategoryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	exists, err := u.categoryRepo.ExistsByName(ctx, in.Name, categoryID)
	if err != nil {
		return CategoryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if exists {
		return CategoryOutput{}, NewHTTPError(http.StatusConflict, "category name already exists")
	}

	c.Name = in.Name
	c.Description = in.Description

	if err := u.categoryRepo.Update(ctx, c); err != nil {
		if err == repo.ErrNotFound {
			return CategoryOutput{}, NewHTTPError(http.StatusNotFound, "category not found")
		}
		return CategoryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toCategoryOutput(c), nil
}

// 管理者: カテゴリ削除
func (u *CategoryUsecase) DeleteCategory(ctx context.Context, categoryID int64) error {
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.categoryRepo.Delete(ctx, categoryID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "category not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func toCategoryOutput(c model.Category) CategoryOutput {
	return CategoryOutput{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
	}
}
