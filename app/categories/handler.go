package categories

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/adminpro/storefront-admin/app/api"
	"github.com/adminpro/storefront-admin/app/mutation"
)

type CategoryResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

type CategoryHandler struct {
	svc       *Service
	log       *zap.Logger
	maxUpload int64
}

func NewCategoryHandler(svc *Service, log *zap.Logger, maxUpload int64) *CategoryHandler {
	return &CategoryHandler{svc: svc, log: log, maxUpload: maxUpload}
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.List(r.Context())
	if err != nil {
		api.Fail(w, h.log, err)
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		response[i] = CategoryResponse{
			ID:    c.ID,
			Name:  c.Name,
			Image: c.Image,
		}
	}

	api.JSON(w, http.StatusOK, response)
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
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
		Name:  r.FormValue("name"),
		Image: img,
	})
	if err != nil {
		api.Fail(w, h.log, err)
		return
	}

	api.JSON(w, http.StatusCreated, created)
}

func (h *CategoryHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
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
		ID:    r.FormValue("categoryId"),
		Name:  r.FormValue("name"),
		Image: img,
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

func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

	api.Message(w, fmt.Sprintf("Category with ID %d deleted successfully", id))
}
