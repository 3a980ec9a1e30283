package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"retailshop/internal/service"
)

type callbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

type PaymentHandler struct {
	payments PaymentService
}

func NewPaymentHandler(payments PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Callback receives the provider's STK push result. Any parsed callback is
// acknowledged, including unknown and repeated ones; only a malformed body
// or a storage failure is refused so the provider retries.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "callback accepts POST only", nil)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "unreadable body", nil)
		return
	}

	res, err := h.payments.HandleCallback(r.Context(), body)
	if err != nil {
		if errors.Is(err, service.ErrMalformedCallback) {
			writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
			return
		}
		log.Printf("mpesa callback failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "callback not processed", nil)
		return
	}

	log.Printf("mpesa callback %s: %s", res.Reference, res.Outcome)
	writeJSON(w, http.StatusOK, callbackAck{ResultCode: 0, ResultDesc: "Accepted"})
}
