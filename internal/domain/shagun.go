/**
 * @description
 * This file defines the core domain models for the payment-service: events,
 * transactions (shaguns), and their gateway payments. These structs map
 * directly to the database tables and are shared by the store, the application
 * service, and the API layers.
 *
 * @notes
 * - Amounts are stored as `int64` in the smallest currency unit (paise), which
 *   avoids floating-point inaccuracies with financial data.
 * - Event aggregate columns are additive counters: they are only ever
 *   incremented inside the same database transaction that completes a gift.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Transaction types.
const (
	TransactionTypeOnline = "online"
	TransactionTypeCash   = "cash"
)

// Transaction statuses. Completed and failed are terminal.
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// Payment statuses. Completed and failed are terminal.
const (
	PaymentStatusInitiated  = "initiated"
	PaymentStatusProcessing = "processing"
	PaymentStatusCompleted  = "completed"
	PaymentStatusFailed     = "failed"
)

// Event represents an occasion (wedding, housewarming, ...) that collects
// shagun gifts. The three amount columns are running totals in paise.
type Event struct {
	ID           uuid.UUID `json:"id"`
	CreatorID    uuid.UUID `json:"creator_id"`
	EventName    string    `json:"event_name"`
	EventDate    time.Time `json:"event_date"`
	Location     *string   `json:"location,omitempty"`
	TotalAmount  int64     `json:"total_amount"`  // in paise
	OnlineAmount int64     `json:"online_amount"` // in paise
	CashAmount   int64     `json:"cash_amount"`   // in paise
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Transaction is the ledger record for a single shagun gift.
// Cash gifts are created already completed; online gifts start pending and
// reach a terminal status through payment reconciliation.
type Transaction struct {
	ID         uuid.UUID `json:"id"`
	EventID    uuid.UUID `json:"event_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Amount     int64     `json:"amount"` // in paise
	Type       string    `json:"type"`   // 'online' or 'cash'
	Status     string    `json:"status"` // 'pending', 'completed', 'failed'
	SenderName string    `json:"sender_name"`
	Address    *string   `json:"address,omitempty"`
	Message    *string   `json:"message,omitempty"`
	GatewayRef *string   `json:"gateway_ref,omitempty"` // gateway order id, online only
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Payment is the gateway-side record for an online transaction (1:1).
// GatewayPaymentID is the gateway's order reference and is unique.
type Payment struct {
	ID               uuid.UUID `json:"id"`
	TransactionID    uuid.UUID `json:"transaction_id"`
	Amount           int64     `json:"amount"` // in paise
	GatewayPaymentID string    `json:"gateway_payment_id"`
	Status           string    `json:"status"`
	GatewayResponse  []byte    `json:"-"` // raw gateway payload, stored for audit
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// EventSummary is the aggregate readback for an event.
type EventSummary struct {
	EventID      uuid.UUID `json:"event_id"`
	EventName    string    `json:"event_name"`
	TotalAmount  int64     `json:"total_amount"`
	OnlineAmount int64     `json:"online_amount"`
	CashAmount   int64     `json:"cash_amount"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateGiftRequest is the DTO for creating a cash or online gift against an event.
type CreateGiftRequest struct {
	Amount     int64   `json:"amount"` // in paise
	SenderName string  `json:"sender_name"`
	Address    *string `json:"address,omitempty"`
	Message    *string `json:"message,omitempty"`
	Contact    string  `json:"contact,omitempty"`
}

// OnlineGiftResponse is returned after an online gift has been created and a
// gateway order opened. The checkout fields are what the client app needs to
// launch the gateway-hosted payment UI.
type OnlineGiftResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Status        string    `json:"status"`
	OrderID       string    `json:"order_id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	KeyID         string    `json:"key_id"`
}

// PaymentVerificationRequest carries the three correlation fields the gateway
// hands the client after a completed checkout. The signature is recomputed
// server-side and never trusted as submitted.
type PaymentVerificationRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}
