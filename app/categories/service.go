package categories

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/adminpro/storefront-admin/app/mutation"
	"github.com/adminpro/storefront-admin/cache"
	"github.com/adminpro/storefront-admin/database"
	"github.com/adminpro/storefront-admin/events"
	"github.com/adminpro/storefront-admin/models"
)

type CategoryProvider interface {
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, id uint) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, id uint, columns map[string]any) (int64, error)
	DeleteCategory(ctx context.Context, id uint) (int64, error)
	CountProducts(ctx context.Context, id uint) (int64, error)
}

// Service runs the category mutation pipeline.
type Service struct {
	repo     CategoryProvider
	uploader mutation.Uploader
	events   events.Publisher
	cache    cache.Store
	log      *zap.Logger
}

type Option func(*Service)

func WithEvents(p events.Publisher) Option { return func(s *Service) { s.events = p } }

func WithCache(c cache.Store) Option { return func(s *Service) { s.cache = c } }

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }

func NewService(repo CategoryProvider, uploader mutation.Uploader, opts ...Option) *Service {
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

type CreateInput struct {
	Name  string
	Image *mutation.Image
}

type Created struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// Create validates the input, uploads the image and inserts the row.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Created, error) {
	name := mutation.Text(in.Name)
	if !name.Set {
		return nil, mutation.Errorf(mutation.Invalid, "Category name is required")
	}
	if err := mutation.MaxLen("Category name", name, models.NameMaxLen); err != nil {
		return nil, err
	}
	if err := mutation.CheckImage(in.Image); err != nil {
		return nil, err
	}

	asset, err := mutation.UploadImage(ctx, s.uploader, *in.Image)
	if err != nil {
		return nil, err
	}

	category := &models.Category{Name: name.Value, Image: asset.URL}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		s.discard(ctx, asset)
		return nil, mutation.Wrap(mutation.PersistFailed, err, "Failed to add category")
	}

	s.written(ctx, events.CategoryCreated, category)
	return &Created{ID: category.ID, Name: category.Name, ImageURL: category.Image}, nil
}

type EditInput struct {
	ID    string
	Name  string
	Image *mutation.Image
}

// Edited reports the columns an edit wrote. Unchanged fields are nil.
type Edited struct {
	CategoryID uint    `json:"categoryId"`
	Name       *string `json:"name"`
	ImageURL   *string `json:"imageUrl"`
}

// Edit writes only the fields that differ from the stored row. A nil result
// with a nil error means there was nothing to change.
func (s *Service) Edit(ctx context.Context, in EditInput) (*Edited, error) {
	id, err := mutation.ParseID("categoryId", in.ID)
	if err != nil {
		return nil, err
	}
	name := mutation.Text(in.Name)
	if err := mutation.MaxLen("Category name", name, models.NameMaxLen); err != nil {
		return nil, err
	}
	if in.Image != nil {
		if err := mutation.CheckImage(in.Image); err != nil {
			return nil, err
		}
	}

	existing, err := s.repo.GetCategoryByID(ctx, id)
	if errors.Is(err, models.ErrCategoryNotFound) {
		return nil, mutation.Errorf(mutation.NotFound, "Category with ID %d not found", id)
	}
	if err != nil {
		return nil, mutation.Wrap(mutation.PersistFailed, err, "Failed to update category")
	}

	var changes mutation.WriteSet
	mutation.Diff(&changes, "name", "name", name, existing.Name)

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

	n, err := s.repo.UpdateCategory(ctx, id, changes.Columns())
	if err == nil && n == 0 {
		err = mutation.Errorf(mutation.NotFound, "Category with ID %d not updated", id)
	}
	if err != nil {
		if uploaded != nil {
			s.discard(ctx, *uploaded)
		}
		if mutation.KindOf(err) == 0 {
			err = mutation.Wrap(mutation.PersistFailed, err, "Failed to update category")
		}
		return nil, err
	}

	out := &Edited{CategoryID: id}
	for _, c := range changes.Changes() {
		v := c.Value.(string)
		switch c.Column {
		case "name":
			out.Name = &v
		case "image":
			out.ImageURL = &v
		}
	}
	s.written(ctx, events.CategoryUpdated, out)
	return out, nil
}

// Delete removes a category that no product references.
func (s *Service) Delete(ctx context.Context, rawID string) (uint, error) {
	id, err := mutation.ParseID("id", rawID)
	if err != nil {
		return 0, err
	}

	refs, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return 0, mutation.Wrap(mutation.PersistFailed, err, "Failed to delete category")
	}
	if refs > 0 {
		return 0, mutation.Errorf(mutation.Conflict, "Category with ID %d is used by %d product(s)", id, refs)
	}

	n, err := s.repo.DeleteCategory(ctx, id)
	if database.IsForeignKeyViolation(err) {
		return 0, mutation.Errorf(mutation.Conflict, "Category with ID %d is used by products", id)
	}
	if err != nil {
		return 0, mutation.Wrap(mutation.PersistFailed, err, "Failed to delete category")
	}
	if n == 0 {
		return 0, mutation.Errorf(mutation.NotFound, "Category with ID %d not found", id)
	}

	s.written(ctx, events.CategoryDeleted, map[string]uint{"id": id})
	return id, nil
}

// List returns every category, from the cache when it holds a copy.
func (s *Service) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	hit, gen, cacheErr := s.cache.Load(ctx, cache.CategoriesKey, &categories)
	if cacheErr != nil {
		s.log.Warn("category cache read failed", zap.Error(cacheErr))
	}
	if hit {
		return categories, nil
	}

	categories, err := s.repo.GetAllCategories(ctx)
	if err != nil {
		return nil, mutation.Wrap(mutation.PersistFailed, err, "failed to fetch categories")
	}
	if cacheErr == nil {
		if err := s.cache.Save(ctx, cache.CategoriesKey, gen, categories); err != nil {
			s.log.Warn("category cache write failed", zap.Error(err))
		}
	}
	return categories, nil
}

// discard deletes an asset whose row never made it to the database.
func (s *Service) discard(ctx context.Context, asset mutation.Asset) {
	ctx = context.WithoutCancel(ctx)
	if err := s.uploader.Destroy(ctx, asset.PublicID); err != nil {
		s.log.Warn("orphaned category image",
			zap.String("public_id", asset.PublicID),
			zap.String("url", asset.URL),
			zap.Error(err))
		return
	}
	s.log.Info("discarded category image", zap.String("public_id", asset.PublicID))
}

// written runs the side effects of a committed write. Their failures are
// logged; the write itself already succeeded.
func (s *Service) written(ctx context.Context, topic string, event any) {
	if err := s.cache.Invalidate(ctx, cache.CategoriesKey); err != nil {
		s.log.Warn("category cache invalidation failed", zap.Error(err))
	}
	if err := s.events.Publish(ctx, topic, event); err != nil {
		s.log.Warn("publish failed", zap.String("topic", topic), zap.Error(err))
	}
}
