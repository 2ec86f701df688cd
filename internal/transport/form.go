package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/helousound/site/internal/quote"
)

// FormOptions configures the form-backend transport.
type FormOptions struct {
	Endpoint string
	FormName string
	Timeout  time.Duration
}

// Form posts quote requests as url-encoded form submissions.
type Form struct {
	endpoint string
	formName string
	client   *http.Client
}

func NewForm(opts FormOptions) (*Form, error) {
	if strings.TrimSpace(opts.Endpoint) == "" {
		return nil, errors.New("form endpoint is required")
	}
	if _, err := url.ParseRequestURI(opts.Endpoint); err != nil {
		return nil, fmt.Errorf("parsing form endpoint: %w", err)
	}
	name := opts.FormName
	if name == "" {
		name = "quote-request"
	}
	return &Form{endpoint: opts.Endpoint, formName: name, client: newHTTPClient(opts.Timeout)}, nil
}

func (f *Form) Name() string { return "form" }

func (f *Form) Send(ctx context.Context, p quote.Payload) (quote.Receipt, error) {
	values, err := FormValues(f.formName, p)
	if err != nil {
		return quote.Receipt{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return quote.Receipt{}, fmt.Errorf("build form request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.client.Do(req)
	if err != nil {
		return quote.Receipt{}, fmt.Errorf("post form: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return quote.Receipt{}, fmt.Errorf("form backend responded %d", resp.StatusCode)
	}
	return quote.Receipt{Message: sentMessage}, nil
}

// FormValues flattens p into form fields. Add-on lines travel as one JSON
// string field.
func FormValues(formName string, p quote.Payload) (url.Values, error) {
	addons, err := json.Marshal(p.Addons)
	if err != nil {
		return nil, fmt.Errorf("encode add-ons: %w", err)
	}

	values := url.Values{}
	values.Set("form-name", formName)
	values.Set("fullName", p.FullName)
	values.Set("email", p.Email)
	values.Set("phone", p.Phone)
	values.Set("productionName", p.ProductionName)
	values.Set("address", p.Address)
	values.Set("shootDate", p.ShootDate)
	values.Set("productionDurationDays", strconv.Itoa(p.ProductionDurationDays))
	values.Set("notes", p.Notes)
	values.Set("selectedPackageName", p.SelectedPackageName)
	values.Set("packagePricePerDayDisplay", p.PackagePricePerDayDisplay)
	values.Set("addons", string(addons))
	values.Set("totalPerDay", p.TotalPerDay.StringFixed(2))
	values.Set("estimatedTotal", p.EstimatedTotal.StringFixed(2))
	return values, nil
}
