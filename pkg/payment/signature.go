package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignBody returns the hex HMAC-SHA256 of body under secret.
func SignBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature recomputes the HMAC over the raw body and compares in
// constant time. An empty signature never verifies.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	expected := SignBody(body, secret)
	return hmac.Equal([]byte(signature), []byte(expected))
}
