package quote

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/helousound/site/internal/logger"
	"github.com/helousound/site/internal/metrics"
)

var (
	ErrInFlight         = errors.New("quote submission already in flight")
	ErrAlreadySubmitted = errors.New("quote request already submitted")
	ErrSubmissionFailed = errors.New("quote submission failed, please retry")
	ErrAbandoned        = errors.New("quote submission abandoned")
)

// Receipt acknowledges a delivered quote request.
type Receipt struct {
	MessageID string
	Message   string
}

// Transport delivers a quote payload to the studio.
type Transport interface {
	Send(ctx context.Context, p Payload) (Receipt, error)
}

type namedTransport interface {
	Name() string
}

// Gateway validates quote requests and hands valid ones to a Transport.
type Gateway struct {
	transport Transport
	logg      *logger.Logger
	metrics   *metrics.QuoteMetrics
}

func NewGateway(t Transport, logg *logger.Logger, m *metrics.QuoteMetrics) *Gateway {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Gateway{transport: t, logg: logg, metrics: m}
}

// Submit runs a single submission attempt for req.
func (g *Gateway) Submit(ctx context.Context, req Request) (Receipt, error) {
	return g.NewSubmission(req).Submit(ctx)
}

func (g *Gateway) NewSubmission(req Request) *Submission {
	return &Submission{gateway: g, req: req, state: StateIdle}
}

func (g *Gateway) transportName() string {
	if named, ok := g.transport.(namedTransport); ok {
		return named.Name()
	}
	return "custom"
}

// send delivers p and reports any failure as ErrSubmissionFailed.
func (g *Gateway) send(ctx context.Context, p Payload) (Receipt, error) {
	name := g.transportName()
	logCtx := g.logg.WithFields(ctx, map[string]any{
		"transport": name,
		"package":   p.SelectedPackageName,
	})
	if g.transport == nil {
		g.metrics.IncSubmission(metrics.OutcomeTransportFailure)
		g.logg.Error(logCtx, "quote.transport_missing", nil)
		return Receipt{}, fmt.Errorf("%w: no transport configured", ErrSubmissionFailed)
	}

	start := time.Now()
	receipt, err := g.transport.Send(ctx, p)
	g.metrics.ObserveTransport(name, time.Since(start))
	if err != nil {
		g.metrics.IncSubmission(metrics.OutcomeTransportFailure)
		g.logg.Error(logCtx, "quote.transport_failed", err)
		return Receipt{}, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	g.metrics.IncSubmission(metrics.OutcomeSent)
	g.logg.Info(g.logg.WithField(logCtx, "message_id", receipt.MessageID), "quote.sent")
	return receipt, nil
}

type State int

const (
	StateIdle State = iota
	StateValidating
	StateValidationFailed
	StateSubmitting
	StateSubmitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateValidationFailed:
		return "validation_failed"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Submission tracks one quote request through validation and delivery.
// At most one attempt is in flight at a time.
type Submission struct {
	gateway *Gateway

	mu        sync.Mutex
	req       Request
	state     State
	abandoned bool
	receipt   Receipt
	err       error
}

// Submit validates the request and, when valid, sends it. A call made while
// another attempt is in flight returns ErrInFlight without sending.
func (s *Submission) Submit(ctx context.Context) (Receipt, error) {
	s.mu.Lock()
	switch {
	case s.abandoned:
		s.mu.Unlock()
		return Receipt{}, ErrAbandoned
	case s.state == StateSubmitting || s.state == StateValidating:
		s.mu.Unlock()
		return Receipt{}, ErrInFlight
	case s.state == StateSubmitted:
		receipt := s.receipt
		s.mu.Unlock()
		return receipt, ErrAlreadySubmitted
	}

	s.state = StateValidating
	req := s.req
	if err := Validate(req); err != nil {
		s.state = StateValidationFailed
		s.err = err
		s.mu.Unlock()
		s.gateway.metrics.IncSubmission(metrics.OutcomeInvalid)
		s.gateway.logg.Warn(s.gateway.logg.WithField(ctx, "error", err.Error()), "quote.validation_failed")
		return Receipt{}, err
	}
	s.state = StateSubmitting
	s.err = nil
	s.mu.Unlock()

	receipt, err := s.gateway.send(ctx, NewPayload(req))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.abandoned {
		return Receipt{}, ErrAbandoned
	}
	if err != nil {
		s.state = StateFailed
		s.err = err
		return Receipt{}, err
	}
	s.state = StateSubmitted
	s.receipt = receipt
	return receipt, nil
}

// Update replaces the request after an edit and returns a failed submission
// to idle.
func (s *Submission) Update(req Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.abandoned:
		return ErrAbandoned
	case s.state == StateSubmitting || s.state == StateValidating:
		return ErrInFlight
	case s.state == StateSubmitted:
		return ErrAlreadySubmitted
	}
	s.req = req
	s.state = StateIdle
	s.err = nil
	return nil
}

// Abandon detaches the submission. A response that arrives afterwards is
// dropped and leaves State and Err as they were.
func (s *Submission) Abandon() {
	s.mu.Lock()
	s.abandoned = true
	s.mu.Unlock()
}

func (s *Submission) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error of the last finished attempt.
func (s *Submission) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Submission) Receipt() Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receipt
}
