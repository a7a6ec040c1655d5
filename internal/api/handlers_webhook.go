/**
 * @description
 * Webhook ingestion endpoint. The raw body is read before any parsing so the
 * HMAC check covers exactly the bytes the gateway signed. Responses are
 * near-always HTTP 200 with a structured status body; only genuine storage
 * failures return a non-success code, because that is the one case where a
 * gateway redelivery can help.
 */

package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/shagunpe/payment-service/internal/app"
)

const webhookSignatureHeader = "X-Razorpay-Signature"

// RazorpayWebhookHandler ingests asynchronous payment lifecycle notifications
// pushed by the gateway.
func (h *PaymentHandlers) RazorpayWebhookHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Unable to read request body")
		return
	}

	signature := r.Header.Get(webhookSignatureHeader)
	if signature == "" {
		log.Printf("level=warn component=api endpoint=webhook msg=\"missing signature header\"")
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"status": "invalid_signature"})
		return
	}

	result, err := h.service.HandleGatewayWebhook(r.Context(), body, signature)
	if err != nil {
		if errors.Is(err, app.ErrInvalidSignature) {
			log.Printf("level=warn component=api endpoint=webhook msg=\"signature verification failed\"")
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"status": "invalid_signature"})
			return
		}
		// Transient store failure: do not acknowledge, so the gateway
		// retries this delivery later.
		log.Printf("level=error component=api endpoint=webhook msg=\"processing failed\" err=%v", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}
