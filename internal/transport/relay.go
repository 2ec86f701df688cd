package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/helousound/site/internal/quote"
)

const relayPath = "/api/request-quote"

// RelayOptions configures the relay transport.
type RelayOptions struct {
	BaseURL string
	Timeout time.Duration
}

// Relay forwards quote requests as JSON to a quote relay endpoint.
type Relay struct {
	endpoint string
	client   *http.Client
}

func NewRelay(opts RelayOptions) (*Relay, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("relay base url is required")
	}
	return &Relay{endpoint: base + relayPath, client: newHTTPClient(opts.Timeout)}, nil
}

func (r *Relay) Name() string { return "relay" }

func (r *Relay) Send(ctx context.Context, p quote.Payload) (quote.Receipt, error) {
	body, err := json.Marshal(quote.NewRelayRequest(p))
	if err != nil {
		return quote.Receipt{}, fmt.Errorf("encode relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return quote.Receipt{}, fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return quote.Receipt{}, fmt.Errorf("post relay: %w", err)
	}
	defer resp.Body.Close()

	var out quote.RelayResponse
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return quote.Receipt{}, fmt.Errorf("read relay response: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return quote.Receipt{}, fmt.Errorf("relay responded %d with unreadable body: %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !out.OK {
		msg := out.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return quote.Receipt{}, fmt.Errorf("relay responded %d: %s", resp.StatusCode, msg)
	}
	return quote.Receipt{MessageID: out.EmailID, Message: out.Message}, nil
}
