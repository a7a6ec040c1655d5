/**
 * @description
 * Signature verification for the two Razorpay signature schemes:
 *
 *   1. Webhook deliveries sign the raw request body with the provisioned
 *      webhook secret (X-Razorpay-Signature header).
 *   2. Checkout completions hand the client a signature over
 *      "<order_id>|<payment_id>" keyed by the API key secret.
 *
 * Both are HMAC-SHA256 hex digests compared in constant time. Verification
 * never fails with an error on malformed input; it just returns false.
 */
package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifyWebhookSignature checks that a webhook body was produced by the
// gateway. This is the sole gate on trusting webhook content.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	return hmac.Equal([]byte(hexDigest(body, secret)), []byte(signature))
}

// VerifyPaymentSignature checks the client-submitted checkout confirmation.
// The digest is recomputed server-side; the client's claim is never trusted.
func VerifyPaymentSignature(orderID, paymentID, signature, secret string) bool {
	if orderID == "" || paymentID == "" || signature == "" || secret == "" {
		return false
	}
	payload := orderID + "|" + paymentID
	return hmac.Equal([]byte(hexDigest([]byte(payload), secret)), []byte(signature))
}

func hexDigest(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
