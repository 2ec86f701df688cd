package quote

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/helousound/site/internal/pricing"
)

// RelayPackage identifies the chosen package on the relay wire.
type RelayPackage struct {
	Name         string `json:"name"`
	DisplayPrice string `json:"displayPrice,omitempty"`
}

type RelayTotals struct {
	TotalPerDay decimal.Decimal `json:"totalPerDay"`
}

// RelayRequest is the JSON body of POST /api/request-quote.
type RelayRequest struct {
	SelectedPackage RelayPackage `json:"selectedPackage"`
	Addons          []AddonLine  `json:"addons"`
	Totals          RelayTotals  `json:"totals"`
	Client          Contact      `json:"client"`
}

// RelayResponse is the JSON reply of POST /api/request-quote.
type RelayResponse struct {
	OK      bool              `json:"ok"`
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
	EmailID string            `json:"emailId,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func NewRelayRequest(p Payload) RelayRequest {
	return RelayRequest{
		SelectedPackage: RelayPackage{
			Name:         p.SelectedPackageName,
			DisplayPrice: p.PackagePricePerDayDisplay,
		},
		Addons: p.Addons,
		Totals: RelayTotals{TotalPerDay: p.TotalPerDay},
		Client: Contact{
			FullName:               p.FullName,
			Email:                  p.Email,
			Phone:                  p.Phone,
			ProductionName:         p.ProductionName,
			Address:                p.Address,
			ShootDate:              p.ShootDate,
			ProductionDurationDays: p.ProductionDurationDays,
			Notes:                  p.Notes,
		},
	}
}

// Selection recovers the package and add-on quantities from the wire body.
// Prices and totals sent by the client are ignored.
func (r RelayRequest) Selection() pricing.Selection {
	sel := pricing.Selection{PackageName: strings.TrimSpace(r.SelectedPackage.Name)}
	for _, line := range r.Addons {
		name := strings.TrimSpace(line.Item)
		if name == "" || line.Quantity <= 0 {
			continue
		}
		if sel.AddonQuantities == nil {
			sel.AddonQuantities = make(map[string]int)
		}
		sel.AddonQuantities[name] = pricing.AddQuantities(sel.AddonQuantities[name], line.Quantity)
	}
	return sel
}
