package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shagunpe/payment-service/internal/app"
	"github.com/shagunpe/payment-service/internal/domain"
	"github.com/shagunpe/payment-service/internal/store"
	"github.com/shagunpe/payment-service/pkg/razorpay"
)

const (
	testWebhookSecret = "whsec_handler_test"
	testJWTSecret     = "jwt_handler_test"
)

type webhookRepoStub struct {
	store.Repository

	result *domain.ReconcileResult
	err    error
}

func (s *webhookRepoStub) ReconcilePayment(ctx context.Context, gatewayPaymentID string, target store.StatusTarget, rawEvidence []byte) (*domain.ReconcileResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newWebhookServer(repo store.Repository) http.Handler {
	gateway := razorpay.NewClient("http://gateway.invalid", "rzp_test_key", "key_secret", testWebhookSecret)
	service := app.NewService(repo, gateway, nil, nil)
	return PaymentRoutes(NewPaymentHandlers(service), testJWTSecret)
}

func signBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(t *testing.T, handler http.Handler, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("X-Razorpay-Signature", signature)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func TestRazorpayWebhookHandler_AcknowledgesAppliedDelivery(t *testing.T) {
	repo := &webhookRepoStub{
		result: &domain.ReconcileResult{
			Outcome:           domain.OutcomeApplied,
			TransactionID:     uuid.New(),
			EventID:           uuid.New(),
			Amount:            50000,
			PaymentStatus:     domain.PaymentStatusCompleted,
			TransactionStatus: domain.TransactionStatusCompleted,
		},
	}
	handler := newWebhookServer(repo)

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_abc","order_id":"order_123","amount":50000,"status":"captured"}}}}`)
	recorder := postWebhook(t, handler, body, signBody(body, testWebhookSecret))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var result app.WebhookResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Status != app.WebhookStatusSuccess || result.GatewayPaymentID != "order_123" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestRazorpayWebhookHandler_MissingSignatureHeader(t *testing.T) {
	handler := newWebhookServer(&webhookRepoStub{})

	recorder := postWebhook(t, handler, []byte(`{}`), "")
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestRazorpayWebhookHandler_ForgedSignature(t *testing.T) {
	handler := newWebhookServer(&webhookRepoStub{})

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"order_123"}}}}`)
	recorder := postWebhook(t, handler, body, signBody(body, "some_other_secret"))

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "invalid_signature" {
		t.Fatalf("unexpected body %v", resp)
	}
}

func TestRazorpayWebhookHandler_UnknownPaymentStillAcknowledged(t *testing.T) {
	repo := &webhookRepoStub{
		result: &domain.ReconcileResult{Outcome: domain.OutcomeNotFound},
	}
	handler := newWebhookServer(repo)

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"order_unknown"}}}}`)
	recorder := postWebhook(t, handler, body, signBody(body, testWebhookSecret))

	if recorder.Code != http.StatusOK {
		t.Fatalf("unknown payments must be acknowledged with 200, got %d", recorder.Code)
	}
	var result app.WebhookResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Status != app.WebhookStatusPaymentNotFound {
		t.Fatalf("expected %q, got %q", app.WebhookStatusPaymentNotFound, result.Status)
	}
}

func TestRazorpayWebhookHandler_StoreFailureRequestsRedelivery(t *testing.T) {
	repo := &webhookRepoStub{err: errors.New("connection reset")}
	handler := newWebhookServer(repo)

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"order_123"}}}}`)
	recorder := postWebhook(t, handler, body, signBody(body, testWebhookSecret))

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("store failures must not be acknowledged, got %d", recorder.Code)
	}
}
