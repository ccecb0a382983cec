package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	HeaderSignature = "X-Stilltime-Signature"
	HeaderDate      = "X-Stilltime-Date"
	HeaderNonce     = "X-Stilltime-Nonce"
)

func ComputeBodyHash(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// ComputeSignature builds the canonical string the client signs:
// device id, method, path, query, body hash, date and nonce joined by
// newlines, then HMAC-SHA256 under the shared secret.
func ComputeSignature(secret string, deviceID string, method string, path string, query string, bodyHash string, date string, nonce string) string {
	canonical := strings.Join([]string{
		deviceID,
		strings.ToUpper(method),
		path,
		query,
		bodyHash,
		date,
		nonce,
	}, "\n")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(canonical))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func ValidateSignature(secret string, deviceID string, signature string, method string, path string, query string, body []byte, date string, nonce string) bool {
	expected := ComputeSignature(secret, deviceID, method, path, query, ComputeBodyHash(body), date, nonce)
	return hmac.Equal([]byte(signature), []byte(expected))
}

func ExtractSignatureHeaders(c *gin.Context) (date string, nonce string, signature string, err error) {
	date = c.GetHeader(HeaderDate)
	nonce = c.GetHeader(HeaderNonce)
	signature = c.GetHeader(HeaderSignature)

	if date == "" || nonce == "" || signature == "" {
		return "", "", "", fmt.Errorf("missing signature headers")
	}
	return date, nonce, signature, nil
}
