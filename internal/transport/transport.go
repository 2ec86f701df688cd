// Package transport delivers quote payloads to the studio by email, a form
// backend or another instance of the quote relay.
package transport

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/helousound/site/internal/quote"
)

// DefaultTimeout bounds every outbound delivery.
const DefaultTimeout = 15 * time.Second

var ErrNotConfigured = errors.New("no quote transport configured")

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Disabled fails every delivery. It stands in when no provider is configured.
type Disabled struct{}

func (Disabled) Name() string { return "disabled" }

func (Disabled) Send(_ context.Context, _ quote.Payload) (quote.Receipt, error) {
	return quote.Receipt{}, ErrNotConfigured
}
