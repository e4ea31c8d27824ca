package models

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type ProductsRepository struct {
	db *gorm.DB
}

// ErrProductNotFound is returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

// ProductFilters narrows GetFilteredProducts. Zero values do not filter.
type ProductFilters struct {
	CategoryID *uint
	Search     string
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

func (r *ProductsRepository) GetAllProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := r.db.WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductsRepository) GetFilteredProducts(ctx context.Context, offset, limit int, filters ProductFilters) ([]Product, int64, error) {
	var products []Product
	var total int64

	query := r.db.WithContext(ctx).Model(&Product{})

	// Filter
	if filters.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filters.CategoryID)
	}
	if s := strings.TrimSpace(filters.Search); s != "" {
		query = query.Where("LOWER(products.name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	// Count total after filtering
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply pagination
	if err := query.Order("products.id").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *ProductsRepository) GetProductByID(ctx context.Context, id uint) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}

func (r *ProductsRepository) CreateProduct(ctx context.Context, product *Product) error {
	return r.db.WithContext(ctx).Omit("Category").Create(product).Error
}

// UpdateProduct writes exactly the given columns and reports the affected row count.
func (r *ProductsRepository) UpdateProduct(ctx context.Context, id uint, columns map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).Model(&Product{}).Where("id = ?", id).Updates(columns)
	return res.RowsAffected, res.Error
}

func (r *ProductsRepository) DeleteProduct(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&Product{}, id)
	return res.RowsAffected, res.Error
}

// CategoryExists reports whether a product may reference id.
func (r *ProductsRepository) CategoryExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Totals summarises the catalog for the analytics view.
type Totals struct {
	Categories     int64
	Products       int64
	InitialStock   int64
	AvailableStock int64
}

func (r *ProductsRepository) GetTotals(ctx context.Context) (Totals, error) {
	var t Totals
	db := r.db.WithContext(ctx)
	if err := db.Model(&Category{}).Count(&t.Categories).Error; err != nil {
		return Totals{}, err
	}

	var stock struct {
		Products       int64
		InitialStock   int64
		AvailableStock int64
	}
	err := db.Model(&Product{}).
		Select("COUNT(*) AS products, COALESCE(SUM(initial_stock), 0) AS initial_stock, COALESCE(SUM(available_stock), 0) AS available_stock").
		Scan(&stock).Error
	if err != nil {
		return Totals{}, err
	}
	t.Products = stock.Products
	t.InitialStock = stock.InitialStock
	t.AvailableStock = stock.AvailableStock
	return t, nil
}
