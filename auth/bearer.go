// Package auth extracts and verifies the bearer token carried on inbound
// requests.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"os"
	"strings"
)

// BearerFields is the result of a successfully verified bearer token.
type BearerFields struct {
	OwnerID  string
	RawValue string
}

// ExtractBearer parses an Authorization header value. It returns ok=false
// for any header that isn't "Bearer <token>", or whose token fails HMAC
// verification against HTTP_COOKIE_SECRET.
func ExtractBearer(header string) (BearerFields, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || token == "" {
		return BearerFields{}, false
	}
	token = strings.TrimPrefix(token, "s:")

	ownerID, ok := hmacVerify(token)
	if !ok {
		return BearerFields{}, false
	}
	return BearerFields{OwnerID: ownerID, RawValue: token}, true
}

// hmacVerify splits token on its last '.' into ownerId and signature, and
// checks signature against HMAC-SHA256(ownerId, secret), base64-std-no-pad
// encoded.
func hmacVerify(token string) (string, bool) {
	secret := os.Getenv("HTTP_COOKIE_SECRET")
	if secret == "" {
		return "", false
	}

	dot := strings.LastIndexByte(token, '.')
	if dot < 0 {
		return "", false
	}
	ownerID, signature := token[:dot], token[dot+1:]

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ownerID))
	expected := base64.RawStdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return "", false
	}
	return ownerID, true
}
