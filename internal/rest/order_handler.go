package rest

import (
	"net/http"

	"kopimas-be/internal/order"

	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	service order.Service
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{service: service}
}

func (h *OrderHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}/paid", h.setPaid)
	r.Post("/{id}/items", h.addItem)
	r.Put("/{id}/items/{itemId}", h.updateItem)
	r.Delete("/{id}/items/{itemId}", h.removeItem)
	return r
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	o, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request) {
	var input order.CreateOrderInput
	if !decodeBody(w, r, &input) {
		return
	}

	o, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var input order.UpdateOrderInput
	if !decodeBody(w, r, &input) {
		return
	}

	o, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "order deleted"})
}

func (h *OrderHandler) setPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var input struct {
		IsPaid bool `json:"isPaid"`
	}
	if !decodeBody(w, r, &input) {
		return
	}

	o, err := h.service.SetPaid(r.Context(), id, input.IsPaid)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) addItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var input order.ItemInput
	if !decodeBody(w, r, &input) {
		return
	}

	item, err := h.service.AddItem(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *OrderHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}

	var input order.ItemInput
	if !decodeBody(w, r, &input) {
		return
	}

	item, err := h.service.UpdateItem(r.Context(), id, itemID, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *OrderHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}

	if err := h.service.RemoveItem(r.Context(), id, itemID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "order item removed"})
}
