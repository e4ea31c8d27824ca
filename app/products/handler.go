package products

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/adminpro/storefront-admin/app/api"
	"github.com/adminpro/storefront-admin/app/mutation"
)

type ProductResponse struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Image          string `json:"image"`
	InitialStock   int    `json:"initialStock"`
	AvailableStock int    `json:"availableStock"`
	CategoryID     uint   `json:"categoryId"`
}

type ProductHandler struct {
	svc       *Service
	log       *zap.Logger
	maxUpload int64
}

func NewProductHandler(svc *Service, log *zap.Logger, maxUpload int64) *ProductHandler {
	return &ProductHandler{svc: svc, log: log, maxUpload: maxUpload}
}

func (h *ProductHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.List(r.Context())
	if err != nil {
		api.Fail(w, h.log, err)
		return
	}

	response := make([]ProductResponse, len(products))
	for i, p := range products {
		response[i] = ProductResponse{
			ID:             p.ID,
			Name:           p.Name,
			Description:    p.Description,
			Image:          p.Image,
			InitialStock:   p.InitialStock,
			AvailableStock: p.AvailableStock,
			CategoryID:     p.CategoryID,
		}
	}

	api.JSON(w, http.StatusOK, response)
}

func (h *ProductHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := api.ParseForm(w, r, h.maxUpload); err != nil {
		api.Fail(w, h.log, err)
		return
	}
	img, err := api.ReadImage(r, "image")
	if err != nil {
		api.Fail(w, h.log, err)
		return
	}

	created, err := h.svc.Create(r.Context(), CreateInput{
		Name:           r.FormValue("name"),
		Description:    r.FormValue("description"),
		InitialStock:   r.FormValue("initialStock"),
		AvailableStock: r.FormValue("availableStock"),
		CategoryID:     r.FormValue("categoryId"),
		Image:          img,
	})
	if err != nil {
		api.Fail(w, h.log, err)
		return
	}

	api.JSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	if err := api.ParseForm(w, r, h.maxUpload); err != nil {
		api.Fail(w, h.log, err)
		return
	}
	img, err := api.ReadImage(r, "image")
	if err != nil {
		api.Fail(w, h.log, err)
		return
	}

	edited, err := h.svc.Edit(r.Context(), EditInput{
		ID:             r.FormValue("id"),
		Name:           r.FormValue("name"),
		Description:    r.FormValue("description"),
		InitialStock:   r.FormValue("initialStock"),
		AvailableStock: r.FormValue("availableStock"),
		CategoryID:     r.FormValue("categoryId"),
		Image:          img,
	})
	if err != nil {
		api.Fail(w, h.log, err)
		return
	}
	if edited == nil {
		api.Message(w, mutation.NoChanges)
		return
	}

	api.JSON(w, http.StatusOK, edited)
}

func (h *ProductHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	raw, err := api.ReadID(r)
	if err != nil {
		api.Fail(w, h.log, err)
		return
	}

	id, err := h.svc.Delete(r.Context(), raw)
	if err != nil {
		api.Fail(w, h.log, err)
		return
	}

	api.Message(w, fmt.Sprintf("Product with ID %d deleted successfully", id))
}
