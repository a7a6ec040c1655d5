/**
 * @description
 * This file sets up the HTTP router for the payment-service. It defines the
 * API endpoints, associates them with their handlers, and applies middleware.
 * The webhook endpoint stays outside the authenticated group: its
 * authentication is the gateway signature, not a bearer token.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// PaymentRoutes creates and returns a new router for the payment service.
func PaymentRoutes(h *PaymentHandlers, jwtSecret string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Gateway-facing endpoint, authenticated by signature.
	r.Post("/webhooks/razorpay", h.RazorpayWebhookHandler)

	// Group routes that require a user bearer token.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))

		r.Post("/events/{eventID}/transactions/cash", h.CreateCashGiftHandler)
		r.Post("/events/{eventID}/transactions/online", h.CreateOnlineGiftHandler)
		r.Get("/events/{eventID}/summary", h.GetEventSummaryHandler)

		r.Post("/payments/verify", h.VerifyPaymentHandler)
		r.Get("/payments/{orderID}", h.GetPaymentHandler)

		r.Get("/transactions/{transactionID}", h.GetTransactionHandler)
	})

	return r
}
