package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/helousound/site/internal/catalog"
	"github.com/helousound/site/internal/money"
	"github.com/helousound/site/internal/pricing"
	"github.com/helousound/site/internal/quote"
)

const (
	msgQuoteSent   = "Quote request sent successfully"
	msgQuoteFailed = "Failed to send quote request. Please try again."
	msgInvalidBody = "Invalid JSON body"
	msgInternal    = "Internal server error"
)

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Server is running"})
}

func (s *server) handleReady(w http.ResponseWriter, r *http.Request) {
	if failures := s.ready(r.Context()); len(failures) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "Not ready", "checks": failures})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Ready"})
}

type packageView struct {
	Name         string          `json:"name"`
	PricePerDay  decimal.Decimal `json:"pricePerDay"`
	DisplayPrice string          `json:"displayPrice"`
	Target       string          `json:"target,omitempty"`
	Features     []string        `json:"features"`
	Included     []string        `json:"included"`
	Highlighted  bool            `json:"highlighted"`
}

type addonView struct {
	Name        string          `json:"name"`
	PricePerDay decimal.Decimal `json:"pricePerDay"`
	Rate        string          `json:"rate"`
}

func (s *server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	c := s.engine.Catalog()

	packages := make([]packageView, 0)
	for _, p := range c.Packages() {
		packages = append(packages, newPackageView(p))
	}
	addons := make([]addonView, 0)
	for _, a := range c.Addons() {
		addons = append(addons, addonView{Name: a.Name, PricePerDay: a.PricePerDay, Rate: a.DisplayRate()})
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "packages": packages, "addons": addons})
}

func newPackageView(p catalog.Package) packageView {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	included := p.Included
	if included == nil {
		included = []string{}
	}
	return packageView{
		Name:         p.Name,
		PricePerDay:  p.PricePerDay,
		DisplayPrice: p.DisplayPrice(),
		Target:       p.Target,
		Features:     features,
		Included:     included,
		Highlighted:  p.Highlighted,
	}
}

type estimateRequest struct {
	SelectedPackage string `json:"selectedPackage"`
	// PreviousPackage is set by clients when the visitor has just switched
	// packages. Only then are the new package's included add-ons seeded.
	PreviousPackage *string         `json:"previousPackage"`
	Addons          map[string]int  `json:"addons"`
	EstimatedHours  json.RawMessage `json:"estimatedHours"`
}

// hours accepts either a number or the raw text typed into the hours field.
func (e estimateRequest) hours() int {
	raw := strings.TrimSpace(string(e.EstimatedHours))
	if raw == "" || raw == "null" {
		return 0
	}
	var text string
	if err := json.Unmarshal(e.EstimatedHours, &text); err == nil {
		return pricing.ParseHours(text)
	}
	return pricing.ParseHours(raw)
}

// selection prices the add-ons exactly as sent, so the estimate matches what
// /api/request-quote will charge for the same body.
func (e estimateRequest) selection(engine *pricing.Engine) pricing.Selection {
	sel := pricing.Selection{
		PackageName:     strings.TrimSpace(e.SelectedPackage),
		AddonQuantities: e.Addons,
	}.Clone()
	if e.PreviousPackage != nil && strings.TrimSpace(*e.PreviousPackage) != sel.PackageName {
		sel = engine.ChoosePackage(sel, sel.PackageName)
	}
	return engine.SetHours(sel, e.hours())
}

type estimateView struct {
	*pricing.Breakdown
	DailyTotalDisplay string `json:"dailyTotalDisplay"`
	GrandTotalDisplay string `json:"grandTotalDisplay"`
	SelectedCount     int    `json:"selectedCount"`
}

func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var body estimateRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	sel := body.selection(s.engine)

	breakdown, err := s.engine.Estimate(sel)
	if err != nil {
		if errors.Is(err, pricing.ErrUnknownAddon) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logg.Error(r.Context(), "estimate.failed", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	if breakdown == nil {
		s.metrics.IncEstimate("")
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":            true,
			"estimate":      nil,
			"selection":     sel,
			"selectedCount": sel.SelectedCount(),
		})
		return
	}
	s.metrics.IncEstimate(breakdown.PackageName)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"selection": sel,
		"estimate": estimateView{
			Breakdown:         breakdown,
			DailyTotalDisplay: money.USD(breakdown.DailyTotal),
			GrandTotalDisplay: money.USD(breakdown.GrandTotal),
			SelectedCount:     sel.SelectedCount(),
		},
	})
}

func (s *server) handleRequestQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body quote.RelayRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	// Prices are re-derived from the catalog; client totals are ignored.
	req, err := quote.Build(s.engine, body.Selection(), body.Client)
	if err == nil {
		var receipt quote.Receipt
		receipt, err = s.gateway.Submit(ctx, req)
		if err == nil {
			writeJSON(w, http.StatusOK, quote.RelayResponse{OK: true, Message: msgQuoteSent, EmailID: receipt.MessageID})
			return
		}
	}

	var verr *quote.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, quote.RelayResponse{Error: verr.Summary(), Fields: verr.Fields})
	case errors.Is(err, quote.ErrSubmissionFailed):
		writeError(w, http.StatusInternalServerError, msgQuoteFailed)
	default:
		s.logg.Error(ctx, "quote.request_failed", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dest)
}
