package magento

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Error kinds surfaced by the client. Stores match with errors.Is and decide
// whether a failure becomes an inline panel or a transient notification.
var (
	// ErrNetwork covers connectivity and transport failures.
	ErrNetwork = errors.New("network error")
	// ErrAuth covers invalid credentials and expired or rejected tokens.
	ErrAuth = errors.New("authentication error")
	// ErrBackend covers GraphQL-level error payloads from the API.
	ErrBackend = errors.New("backend error")
	// ErrValidation covers client-side precondition failures, e.g. placing
	// an order on an empty cart.
	ErrValidation = errors.New("validation error")
)

// classify maps a raw transport error onto the error taxonomy. The GraphQL
// library folds server errors into plain messages, so auth detection is
// message sniffing, same as the error handling this replaces.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "authoriz"),
		strings.Contains(msg, "authenticat"),
		strings.Contains(msg, "sign-in was incorrect"),
		strings.Contains(msg, "token is expired"),
		strings.Contains(msg, "token expired"),
		strings.Contains(msg, "invalid token"),
		strings.Contains(msg, "status code: 401"):
		return fmt.Errorf("%w: %v", ErrAuth, err)
	}
	return fmt.Errorf("%w: %v", ErrBackend, err)
}
