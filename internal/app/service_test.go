package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shagunpe/payment-service/internal/domain"
	"github.com/shagunpe/payment-service/internal/store"
	"github.com/shagunpe/payment-service/pkg/razorpay"
)

type giftRepoStub struct {
	store.Repository

	cashResult   *domain.Transaction
	onlineResult *domain.Transaction
	intentResult *domain.Payment
	intentErr    error

	reconcileResult *domain.ReconcileResult
	reconcileCalled bool

	intentParams store.CreatePaymentIntentParams
	intentCalled bool
}

func (s *giftRepoStub) CreateCashTransaction(ctx context.Context, params store.CreateTransactionParams) (*domain.Transaction, error) {
	return s.cashResult, nil
}

func (s *giftRepoStub) CreateOnlineTransaction(ctx context.Context, params store.CreateTransactionParams) (*domain.Transaction, error) {
	return s.onlineResult, nil
}

func (s *giftRepoStub) CreatePaymentIntent(ctx context.Context, params store.CreatePaymentIntentParams) (*domain.Payment, error) {
	s.intentCalled = true
	s.intentParams = params
	if s.intentErr != nil {
		return nil, s.intentErr
	}
	return s.intentResult, nil
}

func (s *giftRepoStub) ReconcilePayment(ctx context.Context, gatewayPaymentID string, target store.StatusTarget, rawEvidence []byte) (*domain.ReconcileResult, error) {
	s.reconcileCalled = true
	return s.reconcileResult, nil
}

func TestCreateCashGift_CreditsAndNotifies(t *testing.T) {
	txID := uuid.New()
	eventID := uuid.New()
	repo := &giftRepoStub{
		cashResult: &domain.Transaction{
			ID:         txID,
			EventID:    eventID,
			Amount:     10100,
			Type:       domain.TransactionTypeCash,
			Status:     domain.TransactionStatusCompleted,
			SenderName: "Sunita",
		},
	}
	producer := &producerStub{}
	service := NewService(repo, &gatewayStub{}, nil, producer)

	gift, err := service.CreateCashGift(context.Background(), eventID, uuid.New(), domain.CreateGiftRequest{
		Amount:     10100,
		SenderName: "Sunita",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if gift.Status != domain.TransactionStatusCompleted {
		t.Fatalf("cash gift must be completed immediately, got %q", gift.Status)
	}
	if len(producer.events) != 1 {
		t.Fatalf("expected one notification, got %d", len(producer.events))
	}
	if producer.events[0].Type != domain.TransactionTypeCash || producer.events[0].TransactionID != txID {
		t.Fatalf("unexpected notification %+v", producer.events[0])
	}
}

func TestCreateGift_RejectsNonPositiveAmounts(t *testing.T) {
	service := NewService(&giftRepoStub{}, &gatewayStub{}, nil, nil)

	for _, amount := range []int64{0, -500} {
		if _, err := service.CreateCashGift(context.Background(), uuid.New(), uuid.New(), domain.CreateGiftRequest{Amount: amount}); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("cash amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
		if _, err := service.CreateOnlineGift(context.Background(), uuid.New(), uuid.New(), domain.CreateGiftRequest{Amount: amount}); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("online amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestCreateOnlineGift_OpensOrderAndPersistsIntent(t *testing.T) {
	txID := uuid.New()
	repo := &giftRepoStub{
		onlineResult: &domain.Transaction{
			ID:      txID,
			EventID: uuid.New(),
			Amount:  250000,
			Type:    domain.TransactionTypeOnline,
			Status:  domain.TransactionStatusPending,
		},
		intentResult: &domain.Payment{
			TransactionID:    txID,
			Amount:           250000,
			GatewayPaymentID: "order_xyz",
			Status:           domain.PaymentStatusInitiated,
		},
	}
	gateway := &gatewayStub{
		order: &razorpay.Order{ID: "order_xyz", Amount: 250000, Currency: "INR", Status: "created"},
	}
	service := NewService(repo, gateway, nil, nil)

	resp, err := service.CreateOnlineGift(context.Background(), uuid.New(), uuid.New(), domain.CreateGiftRequest{
		Amount:     250000,
		SenderName: "Vikram",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if resp.OrderID != "order_xyz" {
		t.Fatalf("expected order_xyz, got %q", resp.OrderID)
	}
	if resp.Status != domain.TransactionStatusPending {
		t.Fatalf("online gift must stay pending until reconciliation, got %q", resp.Status)
	}
	if resp.KeyID != "rzp_test_stub" {
		t.Fatalf("expected checkout key id, got %q", resp.KeyID)
	}
	if !repo.intentCalled || repo.intentParams.GatewayPaymentID != "order_xyz" {
		t.Fatalf("expected payment intent for order_xyz, got %+v", repo.intentParams)
	}
	if len(repo.intentParams.GatewayResponse) == 0 {
		t.Fatal("gateway order must be stored as evidence on the intent")
	}
}

func TestCreateOnlineGift_GatewayFailureLeavesPendingTransaction(t *testing.T) {
	repo := &giftRepoStub{
		onlineResult: &domain.Transaction{
			ID:     uuid.New(),
			Amount: 250000,
			Status: domain.TransactionStatusPending,
		},
	}
	gateway := &gatewayStub{orderErr: razorpay.ErrGatewayUnavailable}
	service := NewService(repo, gateway, nil, nil)

	_, err := service.CreateOnlineGift(context.Background(), uuid.New(), uuid.New(), domain.CreateGiftRequest{Amount: 250000})
	if !errors.Is(err, razorpay.ErrGatewayUnavailable) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if repo.intentCalled {
		t.Fatal("no payment intent must be persisted when the gateway order fails")
	}
}

func TestVerifyClientPayment_RejectsBadSignature(t *testing.T) {
	repo := &giftRepoStub{}
	service := NewService(repo, &gatewayStub{paymentOK: false}, nil, nil)

	_, err := service.VerifyClientPayment(context.Background(), domain.PaymentVerificationRequest{
		RazorpayOrderID:   "order_xyz",
		RazorpayPaymentID: "pay_abc",
		RazorpaySignature: "forged",
	})
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if repo.reconcileCalled {
		t.Fatal("a forged confirmation must not reach the store")
	}
}

func TestVerifyClientPayment_AppliedPublishesOnce(t *testing.T) {
	repo := &giftRepoStub{
		reconcileResult: &domain.ReconcileResult{
			Outcome:       domain.OutcomeApplied,
			TransactionID: uuid.New(),
			EventID:       uuid.New(),
			Amount:        250000,
			SenderName:    "Vikram",
		},
	}
	producer := &producerStub{}
	service := NewService(repo, &gatewayStub{paymentOK: true}, nil, producer)

	result, err := service.VerifyClientPayment(context.Background(), domain.PaymentVerificationRequest{
		RazorpayOrderID:   "order_xyz",
		RazorpayPaymentID: "pay_abc",
		RazorpaySignature: "ok",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.Outcome != domain.OutcomeApplied {
		t.Fatalf("expected applied, got %q", result.Outcome)
	}
	if len(producer.events) != 1 || producer.events[0].Type != domain.TransactionTypeOnline {
		t.Fatalf("expected one online notification, got %v", producer.events)
	}
}

func TestVerifyClientPayment_AlreadyAppliedStaysQuiet(t *testing.T) {
	repo := &giftRepoStub{
		reconcileResult: &domain.ReconcileResult{
			Outcome:       domain.OutcomeAlreadyApplied,
			PaymentStatus: domain.PaymentStatusCompleted,
		},
	}
	producer := &producerStub{}
	service := NewService(repo, &gatewayStub{paymentOK: true}, nil, producer)

	result, err := service.VerifyClientPayment(context.Background(), domain.PaymentVerificationRequest{
		RazorpayOrderID:   "order_xyz",
		RazorpayPaymentID: "pay_abc",
		RazorpaySignature: "ok",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.Outcome != domain.OutcomeAlreadyApplied {
		t.Fatalf("expected already applied, got %q", result.Outcome)
	}
	if len(producer.events) != 0 {
		t.Fatal("a repeated confirmation must not publish a second notification")
	}
}
