package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Verifier checks webhook deliveries from the call provider. The provider
// signs the raw request body with its API secret and sends the hex digest
// alongside its public API key.
type Verifier struct {
	apiKey string
	secret string
}

// NewVerifier creates a verifier for the given provider credentials
func NewVerifier(apiKey, secret string) *Verifier {
	return &Verifier{apiKey: apiKey, secret: secret}
}

// Verify reports whether signature is the sha256 HMAC of body
func (v *Verifier) Verify(body []byte, signature string) bool {
	return VerifyHMAC(v.secret, body, signature)
}

// MatchesAPIKey reports whether key is the configured provider key
func (v *Verifier) MatchesAPIKey(key string) bool {
	if v.apiKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(v.apiKey), []byte(key)) == 1
}

// Sign returns the hex HMAC of body. Used by tooling that replays events.
func Sign(secret string, body []byte) string {
	return hex.EncodeToString(digest(secret, body))
}

func digest(secret string, body []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}

// VerifyHMAC verifies a sha256 HMAC hex signature against payload and secret.
// Hex case is not significant.
func VerifyHMAC(secret string, payload []byte, signatureHex string) bool {
	if secret == "" || signatureHex == "" {
		return false
	}
	got, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false
	}
	return hmac.Equal(digest(secret, payload), got)
}
