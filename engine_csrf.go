package authcore

import (
	"fmt"
)

// GenerateCSRF mints a fresh double-submit token. The host places the same
// value in a cookie and in the response body; state-changing requests echo
// it back in a header for [Engine.ValidateCSRF].
func (e *Engine) GenerateCSRF() (string, error) {
	tok, err := e.guard.Generate()
	if err != nil {
		return "", fmt.Errorf("csrf token generation: %w", err)
	}
	return tok, nil
}

// ValidateCSRF compares the header-supplied token against the cookie
// value in constant time. Either side missing is a mismatch.
func (e *Engine) ValidateCSRF(supplied, cookieValue string) error {
	if e.guard.Validate(supplied, cookieValue) {
		return nil
	}
	e.metricInc(MetricCSRFMismatch)
	return ErrCSRFMismatch
}
