package handlers

import (
	"errors"
	"net/http"
	"strings"

	"retailshop/internal/models"
	"retailshop/internal/service"
)

type CheckoutHandler struct {
	checkout CheckoutService
}

func NewCheckoutHandler(checkout CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	cart, err := h.checkout.Checkout(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// Process places the order for the cart. The payment method defaults to
// cash when the form omits it.
func (h *CheckoutHandler) Process(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	shipping := models.ShippingDetails{
		FirstName:   r.PostFormValue("first_name"),
		LastName:    r.PostFormValue("last_name"),
		PhoneNumber: r.PostFormValue("phone_number"),
		Address:     r.PostFormValue("address"),
		City:        r.PostFormValue("city"),
	}

	method := models.PaymentMethod(strings.ToLower(strings.TrimSpace(r.PostFormValue("payment_method"))))
	if method == "" {
		method = models.PaymentCash
	}

	placed, err := h.checkout.PlaceOrder(r.Context(), userID(r), shipping, method)
	h.respond(w, r, placed, err)
}

func (h *CheckoutHandler) CashBuyNow(w http.ResponseWriter, r *http.Request) {
	h.buyNow(w, r, models.PaymentCash)
}

func (h *CheckoutHandler) MpesaBuyNow(w http.ResponseWriter, r *http.Request) {
	h.buyNow(w, r, models.PaymentMpesa)
}

func (h *CheckoutHandler) buyNow(w http.ResponseWriter, r *http.Request, method models.PaymentMethod) {
	productID, ok := parseID(w, r, "productId")
	if !ok {
		return
	}
	if !parseForm(w, r) {
		return
	}

	placed, err := h.checkout.BuyNow(r.Context(), userID(r), productID,
		r.PostFormValue("quantity"), method, r.PostFormValue("phone_number"))
	h.respond(w, r, placed, err)
}

// respond reports a failed push with the order that was kept, so the shopper
// can see it is still pending.
func (h *CheckoutHandler) respond(w http.ResponseWriter, r *http.Request, placed *service.PlacedOrder, err error) {
	if err != nil {
		if errors.Is(err, service.ErrPaymentInitiation) && placed != nil {
			writeError(w, http.StatusBadGateway, "payment_initiation_failed", placed.Message, placed)
			return
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, placed)
}
