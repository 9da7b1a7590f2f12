package crypto

import (
	"crypto/subtle"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CSRFFormField is the hidden input carrying the token in the picker form
const CSRFFormField = "csrf_token"

// CSRFProtection provides stateless HMAC-based CSRF tokens of the form
// nonce:timestamp:signature. The picker uses them double-submit style: the
// same token goes into a cookie and the form.
type CSRFProtection struct {
	signingKey []byte
	ttl        time.Duration
}

// NewCSRFProtection creates a new CSRF protection instance
func NewCSRFProtection(signingKey []byte, ttl time.Duration) CSRFProtection {
	return CSRFProtection{
		signingKey: signingKey,
		ttl:        ttl,
	}
}

// Generate creates a new CSRF token
func (c *CSRFProtection) Generate() (string, error) {
	nonce, err := GenerateSecureToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	data := nonce + ":" + strconv.FormatInt(time.Now().Unix(), 10)
	return data + ":" + SignData(data, c.signingKey), nil
}

// Validate checks if a CSRF token is authentic and not expired
func (c *CSRFProtection) Validate(token string) bool {
	parts := strings.SplitN(token, ":", 3)
	if len(parts) != 3 {
		return false
	}

	timestamp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return false
	}
	if time.Since(time.Unix(timestamp, 0)) > c.ttl {
		return false
	}

	return ValidateSignedData(parts[0]+":"+parts[1], parts[2], c.signingKey)
}

// ValidatePair checks the form token matches the cookie token and is valid
func (c *CSRFProtection) ValidatePair(cookieToken, formToken string) bool {
	if cookieToken == "" || subtle.ConstantTimeCompare([]byte(cookieToken), []byte(formToken)) != 1 {
		return false
	}
	return c.Validate(formToken)
}
