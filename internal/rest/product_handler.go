package rest

import (
	"net/http"
	"strconv"

	"kopimas-be/internal/catalog"

	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	service catalog.Service
}

func NewProductHandler(service catalog.Service) *ProductHandler {
	return &ProductHandler{service: service}
}

func (h *ProductHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.deactivate)
	r.Delete("/{id}/hard", h.hardDelete)
	return r
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListActive(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	var input catalog.NewProduct
	if !decodeBody(w, r, &input) {
		return
	}

	product, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var input catalog.UpdateProduct
	if !decodeBody(w, r, &input) {
		return
	}

	product, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.service.Deactivate(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string           `json:"message"`
		Product *catalog.Product `json:"product"`
	}{
		Message: "product deactivated",
		Product: product,
	})
}

func (h *ProductHandler) hardDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.HardDelete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "product deleted"})
}
