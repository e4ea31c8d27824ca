package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type CategoriesRepository struct {
	db *gorm.DB
}

// ErrCategoryNotFound is returned when a category is not found.
var ErrCategoryNotFound = errors.New("category not found")

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

func (r *CategoriesRepository) GetAllCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := r.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoriesRepository) GetCategoryByID(ctx context.Context, id uint) (*Category, error) {
	var category Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *CategoriesRepository) CreateCategory(ctx context.Context, category *Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// UpdateCategory writes exactly the given columns and reports the affected row count.
func (r *CategoriesRepository) UpdateCategory(ctx context.Context, id uint, columns map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).Model(&Category{}).Where("id = ?", id).Updates(columns)
	return res.RowsAffected, res.Error
}

func (r *CategoriesRepository) DeleteCategory(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&Category{}, id)
	return res.RowsAffected, res.Error
}

// CountProducts counts the products that reference the category.
func (r *CategoriesRepository) CountProducts(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Product{}).Where("category_id = ?", id).Count(&n).Error
	return n, err
}
