/**
 * @description
 * Webhook ingestion flow: signature gate, advisory duplicate check, gateway
 * event mapping, and the call into the store's locked reconciliation state
 * machine. The gateway delivers at-least-once and unordered; every delivery
 * is treated as an idempotent command whose application is gated by the
 * payment's terminal status under a row lock, not by delivery counting.
 */

package app

import (
	"context"
	"encoding/json"
	"log"

	"github.com/shagunpe/payment-service/internal/domain"
	"github.com/shagunpe/payment-service/internal/store"
)

// Webhook processing statuses reported back to the gateway. All of them are
// acknowledged with HTTP 200; only infrastructure failures surface as errors
// so the gateway retries those and nothing else.
const (
	WebhookStatusSuccess          = "success"
	WebhookStatusAlreadyProcessed = "already_processed"
	WebhookStatusDuplicate        = "duplicate_delivery"
	WebhookStatusPaymentNotFound  = "payment_not_found"
	WebhookStatusUnhandledEvent   = "unhandled_event"
	WebhookStatusInvalidPayload   = "invalid_payload"
)

// WebhookResult is the structured body returned to the gateway.
type WebhookResult struct {
	Status            string                  `json:"status"`
	Outcome           domain.ReconcileOutcome `json:"outcome,omitempty"`
	GatewayPaymentID  string                  `json:"order_id,omitempty"`
	PaymentStatus     string                  `json:"payment_status,omitempty"`
	TransactionStatus string                  `json:"transaction_status,omitempty"`
}

// statusTargetsByGatewayEvent is the fixed mapping from the gateway's event
// vocabulary to internal statuses. An authorized payment keeps its
// transaction pending until capture. Events missing from this table are
// rejected without mutation.
var statusTargetsByGatewayEvent = map[string]store.StatusTarget{
	"payment.captured": {
		Payment:     domain.PaymentStatusCompleted,
		Transaction: domain.TransactionStatusCompleted,
	},
	"order.paid": {
		Payment:     domain.PaymentStatusCompleted,
		Transaction: domain.TransactionStatusCompleted,
	},
	"payment.authorized": {
		Payment:     domain.PaymentStatusProcessing,
		Transaction: domain.TransactionStatusPending,
	},
	"payment.failed": {
		Payment:     domain.PaymentStatusFailed,
		Transaction: domain.TransactionStatusFailed,
	},
}

// HandleGatewayWebhook processes one webhook delivery.
//
// The delivery signature doubles as the idempotency key for the advisory
// cache. The cache only short-circuits byte-identical redeliveries; the
// authoritative duplicate defense is the terminal-status guard inside
// ReconcilePayment, which also covers redeliveries that arrive re-signed.
//
// Returns ErrInvalidSignature for unauthenticated bodies. Any other non-nil
// error is a store failure the caller must NOT acknowledge, so the gateway
// redelivers later.
func (s *Service) HandleGatewayWebhook(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	if !s.gateway.VerifyWebhookSignature(body, signature) {
		return nil, ErrInvalidSignature
	}

	if s.cache.Seen(ctx, signature) {
		log.Printf("level=info component=service flow=webhook msg=\"duplicate delivery short-circuited\"")
		return &WebhookResult{Status: WebhookStatusDuplicate, Outcome: domain.OutcomeAlreadyApplied}, nil
	}

	var payload domain.GatewayWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("level=warn component=service flow=webhook msg=\"unparsable payload\" err=%v", err)
		return &WebhookResult{Status: WebhookStatusInvalidPayload}, nil
	}

	orderID := payload.Payload.Payment.Entity.OrderID
	if orderID == "" {
		log.Printf("level=warn component=service flow=webhook msg=\"payload missing order reference\" event=%s", payload.Event)
		return &WebhookResult{Status: WebhookStatusInvalidPayload}, nil
	}

	target, ok := statusTargetsByGatewayEvent[payload.Event]
	if !ok {
		log.Printf("level=warn component=service flow=webhook msg=\"unhandled gateway event\" event=%s order_id=%s", payload.Event, orderID)
		return &WebhookResult{
			Status:           WebhookStatusUnhandledEvent,
			Outcome:          domain.OutcomeRejected,
			GatewayPaymentID: orderID,
		}, nil
	}

	result, err := s.repo.ReconcilePayment(ctx, orderID, target, body)
	if err != nil {
		return nil, err
	}

	switch result.Outcome {
	case domain.OutcomeNotFound:
		log.Printf("level=warn component=service flow=webhook msg=\"webhook for unknown payment acknowledged\" order_id=%s event=%s", orderID, payload.Event)
		return &WebhookResult{Status: WebhookStatusPaymentNotFound, Outcome: result.Outcome, GatewayPaymentID: orderID}, nil
	case domain.OutcomeAlreadyApplied:
		s.cache.MarkSeen(ctx, signature)
		return &WebhookResult{
			Status:           WebhookStatusAlreadyProcessed,
			Outcome:          result.Outcome,
			GatewayPaymentID: orderID,
			PaymentStatus:    result.PaymentStatus,
		}, nil
	}

	// Applied. Mark the delivery seen and notify, both outside the
	// committed transaction and both best-effort.
	s.cache.MarkSeen(ctx, signature)
	if target.Completed() {
		s.publishShagunReceived(ctx, result.EventID, result.TransactionID, result.Amount, domain.TransactionTypeOnline, result.SenderName)
	}

	log.Printf("level=info component=service flow=webhook msg=\"status applied\" order_id=%s event=%s payment_status=%s transaction_status=%s",
		orderID, payload.Event, target.Payment, target.Transaction)
	return &WebhookResult{
		Status:            WebhookStatusSuccess,
		Outcome:           result.Outcome,
		GatewayPaymentID:  orderID,
		PaymentStatus:     result.PaymentStatus,
		TransactionStatus: result.TransactionStatus,
	}, nil
}
