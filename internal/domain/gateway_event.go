package domain

import "github.com/google/uuid"

// ReconcileOutcome is the result of applying one gateway status update to the
// payment / transaction / event records.
type ReconcileOutcome string

const (
	// OutcomeApplied means this caller performed the transition.
	OutcomeApplied ReconcileOutcome = "applied"
	// OutcomeAlreadyApplied means the payment was already terminal; the call
	// was a no-op. This is the expected steady state for replayed webhooks.
	OutcomeAlreadyApplied ReconcileOutcome = "already_applied"
	// OutcomeNotFound means no payment matches the gateway reference.
	OutcomeNotFound ReconcileOutcome = "not_found"
	// OutcomeRejected means the gateway event type is not in the mapping
	// table; nothing was mutated.
	OutcomeRejected ReconcileOutcome = "rejected"
)

// ReconcileResult describes what the reconciliation state machine did.
type ReconcileResult struct {
	Outcome           ReconcileOutcome `json:"outcome"`
	PaymentID         uuid.UUID        `json:"payment_id,omitempty"`
	TransactionID     uuid.UUID        `json:"transaction_id,omitempty"`
	EventID           uuid.UUID        `json:"event_id,omitempty"`
	Amount            int64            `json:"amount,omitempty"`
	PaymentStatus     string           `json:"payment_status,omitempty"`
	TransactionStatus string           `json:"transaction_status,omitempty"`
	SenderName        string           `json:"sender_name,omitempty"`
}

// GatewayWebhookPayload is the JSON body Razorpay pushes on payment lifecycle
// events. Only the fields this service reads are modelled; the raw body is
// persisted alongside the payment for audit.
type GatewayWebhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Amount  int64  `json:"amount"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}
