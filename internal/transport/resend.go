package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/helousound/site/internal/money"
	"github.com/helousound/site/internal/quote"
)

const sentMessage = "Quote request sent successfully"

var emailBody = template.Must(template.New("quote-email").Funcs(template.FuncMap{
	"usd":    money.USD,
	"orElse": orElse,
}).Parse(`New Quote Request

CLIENT DETAILS
--------------------------------------
Name:           {{.FullName}}
Email:          {{.Email}}
Phone:          {{orElse .Phone "Not provided"}}
Production:     {{orElse .ProductionName "Not provided"}}
Address:        {{orElse .Address "Not provided"}}
Shoot Date:     {{.ShootDate}}
Duration:       {{.ProductionDurationDays}} day(s)

QUOTE DETAILS
--------------------------------------
Selected Package: {{.SelectedPackageName}}
Package Rate:     {{.PackagePricePerDayDisplay}}/day

Add-ons:
{{- if .Addons}}
{{- range .Addons}}
  - {{.Item}} x {{.Quantity}} @ {{usd .PricePerDay}}/day = {{usd .LineTotalPerDay}}/day
{{- end}}
{{- else}}
  None
{{- end}}

TOTALS
--------------------------------------
Total Per Day:    {{usd .TotalPerDay}}
Estimated Total:  {{usd .EstimatedTotal}} ({{.ProductionDurationDays}} day(s) x {{usd .TotalPerDay}}/day)

NOTES
--------------------------------------
{{orElse .Notes "No additional notes provided"}}

--------------------------------------
Reply to: {{.Email}}
`))

func orElse(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendOptions configures the Resend email transport.
type ResendOptions struct {
	APIKey  string
	From    string
	To      string
	Timeout time.Duration
}

// Resend emails quote requests to the studio through the Resend API.
type Resend struct {
	emails emailSender
	from   string
	to     string
}

func NewResend(opts ResendOptions) (*Resend, error) {
	if opts.APIKey == "" {
		return nil, errors.New("resend api key is required")
	}
	if opts.From == "" || opts.To == "" {
		return nil, errors.New("resend sender and recipient are required")
	}
	client := resend.NewCustomClient(newHTTPClient(opts.Timeout), opts.APIKey)
	return &Resend{emails: client.Emails, from: opts.From, to: opts.To}, nil
}

func (r *Resend) Name() string { return "resend" }

func (r *Resend) Send(ctx context.Context, p quote.Payload) (quote.Receipt, error) {
	params, err := r.request(p)
	if err != nil {
		return quote.Receipt{}, err
	}
	sent, err := r.emails.SendWithContext(ctx, params)
	if err != nil {
		return quote.Receipt{}, fmt.Errorf("resend send: %w", err)
	}
	receipt := quote.Receipt{Message: sentMessage}
	if sent != nil {
		receipt.MessageID = sent.Id
	}
	return receipt, nil
}

func (r *Resend) request(p quote.Payload) (*resend.SendEmailRequest, error) {
	var body bytes.Buffer
	if err := emailBody.Execute(&body, p); err != nil {
		return nil, fmt.Errorf("render quote email: %w", err)
	}
	return &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{r.to},
		ReplyTo: p.Email,
		Subject: Subject(p),
		Text:    body.String(),
	}, nil
}

// Subject is the email subject line for a quote request.
func Subject(p quote.Payload) string {
	return fmt.Sprintf("New Quote Request – %s – %s – %s", p.FullName, p.ShootDate, p.SelectedPackageName)
}
