package quote

import (
	"github.com/shopspring/decimal"

	"github.com/helousound/site/internal/money"
	"github.com/helousound/site/internal/pricing"
)

// AddonLine is one add-on as it appears in an outbound quote.
type AddonLine struct {
	Item            string          `json:"item"`
	PricePerDay     decimal.Decimal `json:"pricePerDay"`
	Quantity        int             `json:"quantity"`
	LineTotalPerDay decimal.Decimal `json:"lineTotalPerDay"`
}

// Payload is what a Transport delivers.
type Payload struct {
	FullName                  string          `json:"fullName"`
	Email                     string          `json:"email"`
	Phone                     string          `json:"phone"`
	ProductionName            string          `json:"productionName"`
	Address                   string          `json:"address"`
	ShootDate                 string          `json:"shootDate"`
	ProductionDurationDays    int             `json:"productionDurationDays"`
	Notes                     string          `json:"notes"`
	SelectedPackageName       string          `json:"selectedPackageName"`
	PackagePricePerDayDisplay string          `json:"packagePricePerDayDisplay"`
	Addons                    []AddonLine     `json:"addons"`
	TotalPerDay               decimal.Decimal `json:"totalPerDay"`
	EstimatedTotal            decimal.Decimal `json:"estimatedTotal"`
}

// NewPayload flattens a validated request. The estimated total is the daily
// total times the production duration the client entered.
func NewPayload(req Request) Payload {
	c := req.Contact
	p := Payload{
		FullName:               c.FullName,
		Email:                  c.Email,
		Phone:                  c.Phone,
		ProductionName:         c.ProductionName,
		Address:                c.Address,
		ShootDate:              c.ShootDate,
		ProductionDurationDays: c.ProductionDurationDays,
		Notes:                  c.Notes,
		Addons:                 []AddonLine{},
		TotalPerDay:            decimal.Zero,
		EstimatedTotal:         decimal.Zero,
	}
	if req.Breakdown == nil {
		return p
	}

	b := req.Breakdown
	p.SelectedPackageName = b.PackageName
	p.PackagePricePerDayDisplay = money.Short(b.PackagePricePerDay)
	p.Addons = addonLines(b.Lines)
	p.TotalPerDay = b.DailyTotal
	p.EstimatedTotal = b.DailyTotal.Mul(decimal.NewFromInt(int64(c.ProductionDurationDays)))
	return p
}

func addonLines(lines []pricing.Line) []AddonLine {
	out := make([]AddonLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, AddonLine{
			Item:            l.Name,
			PricePerDay:     l.UnitPrice,
			Quantity:        l.Quantity,
			LineTotalPerDay: l.TotalPerDay,
		})
	}
	return out
}
