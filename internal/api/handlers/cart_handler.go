package handlers

import (
	"net/http"
)

type CartHandler struct {
	carts CartService
}

func NewCartHandler(carts CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.View(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(w, r, "productId")
	if !ok {
		return
	}
	if !parseForm(w, r) {
		return
	}

	update, err := h.carts.AddItem(r.Context(), userID(r), productID, r.PostFormValue("quantity"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: update.Message, Data: update})
}

func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(w, r, "productId")
	if !ok {
		return
	}
	if !parseForm(w, r) {
		return
	}

	update, err := h.carts.UpdateItem(r.Context(), userID(r), productID, r.PostFormValue("quantity"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: update.Message, Data: update})
}
