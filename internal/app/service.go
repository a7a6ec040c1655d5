/**
 * @description
 * This file contains the core application service for the payment-service.
 * The service owns gift creation (cash and online), gateway order opening,
 * and the two reconciliation entry points (webhook ingestion and client
 * verification) that funnel into the store's locked state machine.
 *
 * @dependencies
 * - internal/store: Data access layer.
 * - internal/domain: Domain models.
 * - pkg/razorpay: Gateway client and signature verification.
 * - pkg/rabbitmq: Post-commit notification events.
 */

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shagunpe/payment-service/internal/domain"
	"github.com/shagunpe/payment-service/internal/store"
	"github.com/shagunpe/payment-service/pkg/rabbitmq"
	"github.com/shagunpe/payment-service/pkg/razorpay"
)

var (
	// ErrInvalidSignature is returned when a webhook or client confirmation
	// fails its signature check. Nothing is mutated in this case.
	ErrInvalidSignature = errors.New("invalid gateway signature")
	// ErrInvalidAmount is returned for non-positive gift amounts.
	ErrInvalidAmount = errors.New("gift amount must be positive")
)

// Gateway is the subset of the Razorpay client the service depends on.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, receipt string, notes map[string]string) (*razorpay.Order, error)
	VerifyWebhookSignature(body []byte, signature string) bool
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	CheckoutKeyID() string
}

// Service implements the payment and reconciliation use cases.
type Service struct {
	repo     store.Repository
	gateway  Gateway
	cache    IdempotencyCache
	producer rabbitmq.Publisher
}

// NewService creates the application service. The cache and producer may be
// nil; both are best-effort collaborators and the service degrades without them.
func NewService(repo store.Repository, gateway Gateway, cache IdempotencyCache, producer rabbitmq.Publisher) *Service {
	if cache == nil {
		cache = noopIdempotencyCache{}
	}
	return &Service{
		repo:     repo,
		gateway:  gateway,
		cache:    cache,
		producer: producer,
	}
}

// CreateCashGift records a cash shagun. The transaction is born completed and
// the event's cash and total counters are credited in the same database
// transaction; no payment row is involved.
func (s *Service) CreateCashGift(ctx context.Context, eventID, senderID uuid.UUID, req domain.CreateGiftRequest) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	gift, err := s.repo.CreateCashTransaction(ctx, store.CreateTransactionParams{
		EventID:    eventID,
		SenderID:   senderID,
		Amount:     req.Amount,
		SenderName: req.SenderName,
		Address:    req.Address,
		Message:    req.Message,
	})
	if err != nil {
		return nil, err
	}

	s.publishShagunReceived(ctx, gift.EventID, gift.ID, gift.Amount, domain.TransactionTypeCash, gift.SenderName)
	return gift, nil
}

// CreateOnlineGift records a pending online shagun and opens a gateway order
// for it. If the gateway call fails the transaction stays pending with no
// gateway reference, so the client can retry the payment step.
func (s *Service) CreateOnlineGift(ctx context.Context, eventID, senderID uuid.UUID, req domain.CreateGiftRequest) (*domain.OnlineGiftResponse, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	gift, err := s.repo.CreateOnlineTransaction(ctx, store.CreateTransactionParams{
		EventID:    eventID,
		SenderID:   senderID,
		Amount:     req.Amount,
		SenderName: req.SenderName,
		Address:    req.Address,
		Message:    req.Message,
	})
	if err != nil {
		return nil, err
	}

	notes := map[string]string{
		"transaction_id": gift.ID.String(),
		"event_id":       gift.EventID.String(),
		"sender_name":    req.SenderName,
	}
	if req.Contact != "" {
		notes["contact"] = req.Contact
	}

	order, err := s.gateway.CreateOrder(ctx, gift.Amount, gift.ID.String(), notes)
	if err != nil {
		log.Printf("level=warn component=service flow=online_gift msg=\"gateway order failed; transaction left pending\" transaction_id=%s err=%v", gift.ID, err)
		return nil, err
	}

	orderJSON, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("marshal gateway order: %w", err)
	}

	payment, err := s.repo.CreatePaymentIntent(ctx, store.CreatePaymentIntentParams{
		TransactionID:    gift.ID,
		Amount:           gift.Amount,
		GatewayPaymentID: order.ID,
		GatewayResponse:  orderJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("persist payment intent for transaction %s: %w", gift.ID, err)
	}

	return &domain.OnlineGiftResponse{
		TransactionID: gift.ID,
		Status:        gift.Status,
		OrderID:       payment.GatewayPaymentID,
		Amount:        payment.Amount,
		Currency:      "INR",
		KeyID:         s.gateway.CheckoutKeyID(),
	}, nil
}

// VerifyClientPayment handles the client-initiated confirmation after a
// gateway-hosted checkout. The signature is recomputed from the order and
// payment references; on success the update funnels into the same locked
// reconciliation path the webhook uses, so the two channels cannot
// double-credit.
func (s *Service) VerifyClientPayment(ctx context.Context, req domain.PaymentVerificationRequest) (*domain.ReconcileResult, error) {
	if !s.gateway.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return nil, ErrInvalidSignature
	}

	evidence, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal verification evidence: %w", err)
	}

	result, err := s.repo.ReconcilePayment(ctx, req.RazorpayOrderID, store.StatusTarget{
		Payment:     domain.PaymentStatusCompleted,
		Transaction: domain.TransactionStatusCompleted,
	}, evidence)
	if err != nil {
		return nil, err
	}

	if result.Outcome == domain.OutcomeApplied {
		s.publishShagunReceived(ctx, result.EventID, result.TransactionID, result.Amount, domain.TransactionTypeOnline, result.SenderName)
	}
	return result, nil
}

// GetPayment returns the payment recorded for a gateway order reference.
func (s *Service) GetPayment(ctx context.Context, gatewayPaymentID string) (*domain.Payment, error) {
	return s.repo.FindPaymentByGatewayID(ctx, gatewayPaymentID)
}

// GetTransaction returns a gift visible to the given user.
func (s *Service) GetTransaction(ctx context.Context, transactionID, userID uuid.UUID) (*domain.Transaction, error) {
	return s.repo.FindTransactionByID(ctx, transactionID, userID)
}

// GetEventSummary returns the event's running totals.
func (s *Service) GetEventSummary(ctx context.Context, eventID uuid.UUID) (*domain.EventSummary, error) {
	return s.repo.GetEventSummary(ctx, eventID)
}

// publishShagunReceived emits the notification event for a credited gift.
// Best-effort: failures are logged and never affect the committed credit.
func (s *Service) publishShagunReceived(ctx context.Context, eventID, transactionID uuid.UUID, amount int64, giftType, senderName string) {
	if s.producer == nil {
		return
	}
	event := rabbitmq.ShagunReceivedEvent{
		EventID:       eventID,
		TransactionID: transactionID,
		Amount:        amount,
		Type:          giftType,
		SenderName:    senderName,
		Timestamp:     time.Now().UTC(),
	}
	if err := s.producer.PublishShagunReceived(ctx, event); err != nil {
		log.Printf("level=warn component=service msg=\"shagun event publish failed\" transaction_id=%s err=%v", transactionID, err)
	}
}
