/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract
 * for all data access operations required by the payment-service. The
 * interface decouples the reconciliation and gift-creation logic from the
 * PostgreSQL implementation and makes the application service testable with
 * in-memory stubs.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/shagunpe/payment-service/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Gift creation
	CreateCashTransaction(ctx context.Context, params CreateTransactionParams) (*domain.Transaction, error)
	CreateOnlineTransaction(ctx context.Context, params CreateTransactionParams) (*domain.Transaction, error)
	CreatePaymentIntent(ctx context.Context, params CreatePaymentIntentParams) (*domain.Payment, error)

	// Reconciliation. Runs the locked read-check-write sequence for the
	// payment identified by the gateway order reference. Safe under
	// arbitrary replay and concurrent invocation.
	ReconcilePayment(ctx context.Context, gatewayPaymentID string, target StatusTarget, rawEvidence []byte) (*domain.ReconcileResult, error)

	// Reads
	FindPaymentByGatewayID(ctx context.Context, gatewayPaymentID string) (*domain.Payment, error)
	FindTransactionByID(ctx context.Context, transactionID uuid.UUID, userID uuid.UUID) (*domain.Transaction, error)
	GetEventSummary(ctx context.Context, eventID uuid.UUID) (*domain.EventSummary, error)
}

// CreateTransactionParams carries everything needed to insert a gift
// transaction. The receiver is always the event creator and is resolved
// inside the insert.
type CreateTransactionParams struct {
	EventID    uuid.UUID
	SenderID   uuid.UUID
	Amount     int64
	SenderName string
	Address    *string
	Message    *string
}

// CreatePaymentIntentParams links a freshly opened gateway order to its
// pending transaction.
type CreatePaymentIntentParams struct {
	TransactionID    uuid.UUID
	Amount           int64
	GatewayPaymentID string
	GatewayResponse  []byte
}

// StatusTarget is the pair of internal statuses a gateway event maps to. The
// transaction status may lag the payment status for intermediate events
// (an authorized-but-not-captured payment keeps its transaction pending).
type StatusTarget struct {
	Payment     string
	Transaction string
}

// Completed reports whether this target credits the event aggregate.
func (t StatusTarget) Completed() bool {
	return t.Payment == domain.PaymentStatusCompleted
}
