/**
 * @description
 * This file contains the HTTP handlers for the payment-service's API
 * endpoints. Handlers parse incoming requests, call the application service,
 * and write the HTTP response. They are the bridge between the web layer and
 * the reconciliation/gift logic.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: Service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shagunpe/payment-service/internal/app"
	"github.com/shagunpe/payment-service/internal/domain"
	"github.com/shagunpe/payment-service/internal/store"
	"github.com/shagunpe/payment-service/pkg/razorpay"
)

// PaymentHandlers holds the application service that handlers will use.
type PaymentHandlers struct {
	service *app.Service
}

// NewPaymentHandlers creates a new instance of PaymentHandlers.
func NewPaymentHandlers(service *app.Service) *PaymentHandlers {
	return &PaymentHandlers{service: service}
}

// CreateCashGiftHandler records a manually-logged cash gift against an event.
func (h *PaymentHandlers) CreateCashGiftHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	var req domain.CreateGiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	gift, err := h.service.CreateCashGift(r.Context(), eventID, userID, req)
	if err != nil {
		if errors.Is(err, app.ErrInvalidAmount) {
			h.writeError(w, http.StatusBadRequest, "Gift amount must be positive")
			return
		}
		if errors.Is(err, store.ErrEventNotFound) {
			h.writeError(w, http.StatusNotFound, "Event not found")
			return
		}
		log.Printf("level=error component=api endpoint=cash_gift msg=\"create failed\" event_id=%s err=%v", eventID, err)
		h.writeError(w, http.StatusInternalServerError, "Unable to record cash gift")
		return
	}

	h.writeJSON(w, http.StatusCreated, gift)
}

// CreateOnlineGiftHandler creates a pending online gift and opens a gateway
// order for it, returning the checkout fields the client app needs.
func (h *PaymentHandlers) CreateOnlineGiftHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	var req domain.CreateGiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.CreateOnlineGift(r.Context(), eventID, userID, req)
	if err != nil {
		if errors.Is(err, app.ErrInvalidAmount) {
			h.writeError(w, http.StatusBadRequest, "Gift amount must be positive")
			return
		}
		if errors.Is(err, store.ErrEventNotFound) {
			h.writeError(w, http.StatusNotFound, "Event not found")
			return
		}
		if errors.Is(err, razorpay.ErrGatewayUnavailable) {
			h.writeError(w, http.StatusBadGateway, "Payment gateway unavailable, please retry")
			return
		}
		log.Printf("level=error component=api endpoint=online_gift msg=\"create failed\" event_id=%s err=%v", eventID, err)
		h.writeError(w, http.StatusInternalServerError, "Unable to initiate online gift")
		return
	}

	h.writeJSON(w, http.StatusCreated, resp)
}

// VerifyPaymentHandler handles the client-initiated payment confirmation
// after the gateway-hosted checkout returns control to the app.
func (h *PaymentHandlers) VerifyPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.VerifyClientPayment(r.Context(), req)
	if err != nil {
		if errors.Is(err, app.ErrInvalidSignature) {
			h.writeError(w, http.StatusBadRequest, "Invalid payment signature")
			return
		}
		log.Printf("level=error component=api endpoint=verify_payment msg=\"verification failed\" order_id=%s err=%v", req.RazorpayOrderID, err)
		h.writeError(w, http.StatusInternalServerError, "Unable to verify payment")
		return
	}

	if result.Outcome == domain.OutcomeNotFound {
		h.writeError(w, http.StatusNotFound, "Payment not found")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// GetPaymentHandler returns the payment recorded for a gateway order reference.
func (h *PaymentHandlers) GetPaymentHandler(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		h.writeError(w, http.StatusBadRequest, "Order ID required")
		return
	}

	payment, err := h.service.GetPayment(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, store.ErrPaymentNotFound) {
			h.writeError(w, http.StatusNotFound, "Payment not found")
			return
		}
		log.Printf("level=error component=api endpoint=get_payment msg=\"lookup failed\" order_id=%s err=%v", orderID, err)
		h.writeError(w, http.StatusInternalServerError, "Unable to fetch payment")
		return
	}

	h.writeJSON(w, http.StatusOK, payment)
}

// GetTransactionHandler returns a gift visible to the authenticated user.
func (h *PaymentHandlers) GetTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	transactionID, err := uuid.Parse(chi.URLParam(r, "transactionID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	gift, err := h.service.GetTransaction(r.Context(), transactionID, userID)
	if err != nil {
		if errors.Is(err, store.ErrTransactionNotFound) {
			h.writeError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		log.Printf("level=error component=api endpoint=get_transaction msg=\"lookup failed\" transaction_id=%s err=%v", transactionID, err)
		h.writeError(w, http.StatusInternalServerError, "Unable to fetch transaction")
		return
	}

	h.writeJSON(w, http.StatusOK, gift)
}

// GetEventSummaryHandler returns an event's running totals.
func (h *PaymentHandlers) GetEventSummaryHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	summary, err := h.service.GetEventSummary(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, store.ErrEventNotFound) {
			h.writeError(w, http.StatusNotFound, "Event not found")
			return
		}
		log.Printf("level=error component=api endpoint=event_summary msg=\"lookup failed\" event_id=%s err=%v", eventID, err)
		h.writeError(w, http.StatusInternalServerError, "Unable to fetch event summary")
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

// writeJSON is a helper for writing JSON responses.
func (h *PaymentHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *PaymentHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
