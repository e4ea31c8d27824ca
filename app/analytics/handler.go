package analytics

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/adminpro/storefront-admin/app/api"
	"github.com/adminpro/storefront-admin/app/mutation"
	"github.com/adminpro/storefront-admin/models"
)

type Response struct {
	Categories int64          `json:"categories"`
	Products   int64          `json:"products"`
	Stock      StockSummary   `json:"stock"`
	Total      int            `json:"total"`
	Offset     int            `json:"offset"`
	Limit      int            `json:"limit"`
	Items      []ProductStock `json:"items"`
}

type StockSummary struct {
	Initial      int64           `json:"initial"`
	Available    int64           `json:"available"`
	Sold         int64           `json:"sold"`
	Availability decimal.Decimal `json:"availability"`
}

type ProductStock struct {
	ID             uint            `json:"id"`
	Name           string          `json:"name"`
	CategoryID     uint            `json:"categoryId"`
	InitialStock   int             `json:"initialStock"`
	AvailableStock int             `json:"availableStock"`
	Sold           int             `json:"sold"`
	Availability   decimal.Decimal `json:"availability"`
}

type StockProvider interface {
	GetFilteredProducts(ctx context.Context, offset, limit int, filters models.ProductFilters) ([]models.Product, int64, error)
	GetTotals(ctx context.Context) (models.Totals, error)
}

type AnalyticsHandler struct {
	repo StockProvider
	log  *zap.Logger
}

func NewAnalyticsHandler(r StockProvider, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		repo: r,
		log:  log,
	}
}

func (h *AnalyticsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := api.ParsePage(q, 10, 100)

	// Parse filters
	filters := models.ProductFilters{
		Search: q.Get("search"),
	}
	if category, err := mutation.Ref("categoryId", q.Get("categoryId")); err == nil && category.Set {
		filters.CategoryID = &category.Value
	}

	res, total, err := h.repo.GetFilteredProducts(r.Context(), page.Offset, page.Limit, filters)
	if err != nil {
		api.Fail(w, h.log, mutation.Wrap(mutation.PersistFailed, err, "failed to fetch analytics"))
		return
	}
	totals, err := h.repo.GetTotals(r.Context())
	if err != nil {
		api.Fail(w, h.log, mutation.Wrap(mutation.PersistFailed, err, "failed to fetch analytics"))
		return
	}

	items := make([]ProductStock, len(res))
	for i, p := range res {
		items[i] = ProductStock{
			ID:             p.ID,
			Name:           p.Name,
			CategoryID:     p.CategoryID,
			InitialStock:   p.InitialStock,
			AvailableStock: p.AvailableStock,
			Sold:           p.Sold(),
			Availability:   ratio(int64(p.AvailableStock), int64(p.InitialStock)),
		}
	}

	api.JSON(w, http.StatusOK, Response{
		Categories: totals.Categories,
		Products:   totals.Products,
		Stock: StockSummary{
			Initial:      totals.InitialStock,
			Available:    totals.AvailableStock,
			Sold:         totals.InitialStock - totals.AvailableStock,
			Availability: ratio(totals.AvailableStock, totals.InitialStock),
		},
		Total:  int(total),
		Offset: page.Offset,
		Limit:  page.Limit,
		Items:  items,
	})
}

// ratio is available/initial rounded to four places. An empty stock has
// nothing available.
func ratio(available, initial int64) decimal.Decimal {
	if initial <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(available).DivRound(decimal.NewFromInt(initial), 4)
}
