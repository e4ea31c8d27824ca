package products

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/adminpro/storefront-admin/app/mutation"
	"github.com/adminpro/storefront-admin/cache"
	"github.com/adminpro/storefront-admin/events"
	"github.com/adminpro/storefront-admin/models"
)

type ProductProvider interface {
	GetAllProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, id uint, columns map[string]any) (int64, error)
	DeleteProduct(ctx context.Context, id uint) (int64, error)
	CategoryExists(ctx context.Context, id uint) (bool, error)
}

// Service runs the product mutation pipeline.
type Service struct {
	repo     ProductProvider
	uploader mutation.Uploader
	events   events.Publisher
	cache    cache.Store
	log      *zap.Logger
}

type Option func(*Service)

func WithEvents(p events.Publisher) Option { return func(s *Service) { s.events = p } }

func WithCache(c cache.Store) Option { return func(s *Service) { s.cache = c } }

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }

func NewService(repo ProductProvider, uploader mutation.Uploader, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		uploader: uploader,
		events:   events.Nop{},
		cache:    cache.Nop{},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput carries raw form values. Numeric fields are parsed by Create.
type CreateInput struct {
	Name           string
	Description    string
	InitialStock   string
	AvailableStock string
	CategoryID     string
	Image          *mutation.Image
}

type Created struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	ImageURL       string `json:"imageUrl"`
	InitialStock   int    `json:"initialStock"`
	AvailableStock int    `json:"availableStock"`
	CategoryID     uint   `json:"categoryId"`
}

// Create validates every field, checks the category, uploads the image and
// inserts the row.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Created, error) {
	product, err := s.validateCreate(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, product.CategoryID); err != nil {
		return nil, err
	}

	asset, err := mutation.UploadImage(ctx, s.uploader, *in.Image)
	if err != nil {
		return nil, err
	}
	product.Image = asset.URL

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		s.discard(ctx, asset)
		return nil, mutation.Wrap(mutation.PersistFailed, err, "Failed to add product")
	}

	s.written(ctx, events.ProductCreated, product)
	return &Created{
		ID:             product.ID,
		Name:           product.Name,
		Description:    product.Description,
		ImageURL:       product.Image,
		InitialStock:   product.InitialStock,
		AvailableStock: product.AvailableStock,
		CategoryID:     product.CategoryID,
	}, nil
}

func (s *Service) validateCreate(in CreateInput) (*models.Product, error) {
	name := mutation.Text(in.Name)
	if !name.Set {
		return nil, mutation.Errorf(mutation.Invalid, "Product name is required")
	}
	description := mutation.Text(in.Description)
	if !description.Set {
		return nil, mutation.Errorf(mutation.Invalid, "Product description is required")
	}
	if err := checkText(name, description); err != nil {
		return nil, err
	}

	initial, err := mutation.Count("initialStock", in.InitialStock)
	if err != nil {
		return nil, err
	}
	available, err := mutation.Count("availableStock", in.AvailableStock)
	if err != nil {
		return nil, err
	}
	category, err := mutation.Ref("categoryId", in.CategoryID)
	if err != nil {
		return nil, err
	}
	if !initial.Set || !available.Set || !category.Set {
		return nil, mutation.Errorf(mutation.Invalid, "Initial stock, available stock, and category are required")
	}
	if err := checkStock(initial.Value, available.Value); err != nil {
		return nil, err
	}
	if err := mutation.CheckImage(in.Image); err != nil {
		return nil, err
	}

	return &models.Product{
		Name:           name.Value,
		Description:    description.Value,
		InitialStock:   initial.Value,
		AvailableStock: available.Value,
		CategoryID:     category.Value,
	}, nil
}

// EditInput carries raw form values. Blank fields are left unchanged.
type EditInput struct {
	ID             string
	Name           string
	Description    string
	InitialStock   string
	AvailableStock string
	CategoryID     string
	Image          *mutation.Image
}

// Edit writes only the fields that differ from the stored row and reports
// them keyed by response name next to the id. A nil result with a nil error
// means there was nothing to change.
func (s *Service) Edit(ctx context.Context, in EditInput) (map[string]any, error) {
	id, err := mutation.ParseID("id", in.ID)
	if err != nil {
		return nil, err
	}
	name, description := mutation.Text(in.Name), mutation.Text(in.Description)
	if err := checkText(name, description); err != nil {
		return nil, err
	}
	initial, err := mutation.Count("initialStock", in.InitialStock)
	if err != nil {
		return nil, err
	}
	available, err := mutation.Count("availableStock", in.AvailableStock)
	if err != nil {
		return nil, err
	}
	category, err := mutation.Ref("categoryId", in.CategoryID)
	if err != nil {
		return nil, err
	}
	if in.Image != nil {
		if err := mutation.CheckImage(in.Image); err != nil {
			return nil, err
		}
	}

	existing, err := s.repo.GetProductByID(ctx, id)
	if errors.Is(err, models.ErrProductNotFound) {
		return nil, mutation.Errorf(mutation.NotFound, "Product with ID %d not found", id)
	}
	if err != nil {
		return nil, mutation.Wrap(mutation.PersistFailed, err, "Failed to update product")
	}

	var changes mutation.WriteSet
	mutation.Diff(&changes, "name", "name", name, existing.Name)
	mutation.Diff(&changes, "description", "description", description, existing.Description)
	mutation.Diff(&changes, "initial_stock", "initialStock", initial, existing.InitialStock)
	mutation.Diff(&changes, "available_stock", "availableStock", available, existing.AvailableStock)
	mutation.Diff(&changes, "category_id", "categoryId", category, existing.CategoryID)

	if changes.Has("initial_stock") || changes.Has("available_stock") {
		if err := checkStock(initial.Or(existing.InitialStock), available.Or(existing.AvailableStock)); err != nil {
			return nil, err
		}
	}
	if changes.Has("category_id") {
		if err := s.checkCategory(ctx, category.Value); err != nil {
			return nil, err
		}
	}

	var uploaded *mutation.Asset
	if in.Image != nil {
		asset, err := mutation.UploadImage(ctx, s.uploader, *in.Image)
		if err != nil {
			return nil, err
		}
		if asset.URL != existing.Image {
			changes.Add("image", "imageUrl", asset.URL)
			uploaded = &asset
		}
	}

	if changes.Empty() {
		return nil, nil
	}

	n, err := s.repo.UpdateProduct(ctx, id, changes.Columns())
	if err == nil && n == 0 {
		err = mutation.Errorf(mutation.NotFound, "Product with ID %d not updated", id)
	}
	if err != nil {
		if uploaded != nil {
			s.discard(ctx, *uploaded)
		}
		if mutation.KindOf(err) == 0 {
			err = mutation.Wrap(mutation.PersistFailed, err, "Failed to update product")
		}
		return nil, err
	}

	out := changes.Payload()
	out["id"] = id
	s.written(ctx, events.ProductUpdated, out)
	return out, nil
}

// Delete removes a product by id.
func (s *Service) Delete(ctx context.Context, rawID string) (uint, error) {
	id, err := mutation.ParseID("id", rawID)
	if err != nil {
		return 0, err
	}

	n, err := s.repo.DeleteProduct(ctx, id)
	if err != nil {
		return 0, mutation.Wrap(mutation.PersistFailed, err, "Failed to delete product")
	}
	if n == 0 {
		return 0, mutation.Errorf(mutation.NotFound, "Product with ID %d not found", id)
	}

	s.written(ctx, events.ProductDeleted, map[string]uint{"id": id})
	return id, nil
}

// List returns every product, from the cache when it holds a copy.
func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	hit, gen, cacheErr := s.cache.Load(ctx, cache.ProductsKey, &products)
	if cacheErr != nil {
		s.log.Warn("product cache read failed", zap.Error(cacheErr))
	}
	if hit {
		return products, nil
	}

	products, err := s.repo.GetAllProducts(ctx)
	if err != nil {
		return nil, mutation.Wrap(mutation.PersistFailed, err, "failed to fetch products")
	}
	if cacheErr == nil {
		if err := s.cache.Save(ctx, cache.ProductsKey, gen, products); err != nil {
			s.log.Warn("product cache write failed", zap.Error(err))
		}
	}
	return products, nil
}

func checkText(name, description mutation.Field[string]) error {
	if err := mutation.MaxLen("Product name", name, models.NameMaxLen); err != nil {
		return err
	}
	return mutation.MaxLen("Product description", description, models.DescriptionMaxLen)
}

func checkStock(initial, available int) error {
	if available > initial {
		return mutation.Errorf(mutation.Invalid, "availableStock cannot exceed initialStock")
	}
	return nil
}

func (s *Service) checkCategory(ctx context.Context, id uint) error {
	ok, err := s.repo.CategoryExists(ctx, id)
	if err != nil {
		return mutation.Wrap(mutation.PersistFailed, err, "Failed to verify category")
	}
	if !ok {
		return mutation.Errorf(mutation.Invalid, "category %d does not exist", id)
	}
	return nil
}

// discard deletes an asset whose row never made it to the database.
func (s *Service) discard(ctx context.Context, asset mutation.Asset) {
	ctx = context.WithoutCancel(ctx)
	if err := s.uploader.Destroy(ctx, asset.PublicID); err != nil {
		s.log.Warn("orphaned product image",
			zap.String("public_id", asset.PublicID),
			zap.String("url", asset.URL),
			zap.Error(err))
		return
	}
	s.log.Info("discarded product image", zap.String("public_id", asset.PublicID))
}

// written runs the side effects of a committed write. Their failures are
// logged; the write itself already succeeded.
func (s *Service) written(ctx context.Context, topic string, event any) {
	if err := s.cache.Invalidate(ctx, cache.ProductsKey); err != nil {
		s.log.Warn("product cache invalidation failed", zap.Error(err))
	}
	if err := s.events.Publish(ctx, topic, event); err != nil {
		s.log.Warn("publish failed", zap.String("topic", topic), zap.Error(err))
	}
}
