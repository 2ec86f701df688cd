package quote

import (
	"errors"
	"fmt"
	"strings"

	"github.com/helousound/site/internal/pricing"
)

// Contact is the client information collected by the quote form.
type Contact struct {
	FullName       string `json:"fullName" validate:"required"`
	Email          string `json:"email" validate:"required,quoteemail"`
	Phone          string `json:"phone,omitempty"`
	ProductionName string `json:"productionName,omitempty"`
	Address        string `json:"address,omitempty"`
	// ShootDate is a calendar date formatted as YYYY-MM-DD.
	ShootDate              string `json:"shootDate" validate:"required,datetime=2006-01-02"`
	ProductionDurationDays int    `json:"productionDurationDays" validate:"gte=1"`
	Notes                  string `json:"notes,omitempty"`
}

func (c Contact) normalized() Contact {
	c.FullName = strings.TrimSpace(c.FullName)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.ProductionName = strings.TrimSpace(c.ProductionName)
	c.Address = strings.TrimSpace(c.Address)
	c.ShootDate = strings.TrimSpace(c.ShootDate)
	c.Notes = strings.TrimSpace(c.Notes)
	return c
}

// Request is a quote request built at submission time. It is never persisted.
type Request struct {
	Contact   Contact
	Selection pricing.Selection
	// Breakdown is nil when the selection names no known package.
	Breakdown *pricing.Breakdown
}

// Build prices sel with engine and pairs it with the client's contact details.
// The only error is a *ValidationError for add-ons rejected by a strict engine.
func Build(engine *pricing.Engine, sel pricing.Selection, contact Contact) (Request, error) {
	breakdown, err := engine.Estimate(sel)
	if err != nil {
		if errors.Is(err, pricing.ErrUnknownAddon) {
			return Request{}, &ValidationError{Fields: map[string]string{"addons": err.Error()}}
		}
		return Request{}, fmt.Errorf("estimate selection: %w", err)
	}
	return Request{
		Contact:   contact.normalized(),
		Selection: sel.Clone(),
		Breakdown: breakdown,
	}, nil
}
