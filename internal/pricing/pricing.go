package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/helousound/site/internal/catalog"
)

const (
	// ReferenceDayHours is the length of one billable day.
	ReferenceDayHours = 10
	// DefaultHours is assumed when the estimated hours are absent or not positive.
	DefaultHours = ReferenceDayHours
)

var ErrUnknownAddon = errors.New("unknown add-on")

// Options tunes engine behavior for the configured catalog.
type Options struct {
	// SeedIncluded makes ChoosePackage add the package's included add-ons.
	SeedIncluded bool
	// StrictAddons rejects selections naming add-ons missing from the catalog
	// instead of pricing them at zero.
	StrictAddons bool
}

// Line is the per-day cost of one selected add-on.
type Line struct {
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	TotalPerDay decimal.Decimal `json:"lineTotalPerDay"`
}

// Breakdown is the cost decomposition derived from a Selection.
type Breakdown struct {
	PackageName        string          `json:"packageName"`
	PackagePricePerDay decimal.Decimal `json:"packagePricePerDay"`
	AddonsCostPerDay   decimal.Decimal `json:"addonsCostPerDay"`
	DailyTotal         decimal.Decimal `json:"dailyTotal"`
	Hours              int             `json:"hours"`
	BillableDays       int             `json:"billableDays"`
	GrandTotal         decimal.Decimal `json:"grandTotal"`
	Lines              []Line          `json:"lines"`
}

// Engine computes estimates against a fixed catalog. It holds no mutable state.
type Engine struct {
	catalog *catalog.Catalog
	opts    Options
}

func NewEngine(c *catalog.Catalog, opts Options) *Engine {
	return &Engine{catalog: c, opts: opts}
}

// Catalog returns the catalog the engine prices against.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Estimate derives the cost breakdown for sel. A nil breakdown with a nil
// error means there is nothing to estimate yet because no known package is
// chosen. An error is only returned in strict mode for unknown add-ons.
func (e *Engine) Estimate(sel Selection) (*Breakdown, error) {
	pkg, ok := e.catalog.FindPackage(sel.PackageName)
	if !ok {
		return nil, nil
	}

	lines, err := e.lines(sel)
	if err != nil {
		return nil, err
	}

	addonsCost := decimal.Zero
	for _, l := range lines {
		addonsCost = addonsCost.Add(l.TotalPerDay)
	}

	hours := NormalizeHours(sel.EstimatedHours)
	days := BillableDays(hours)
	daily := pkg.PricePerDay.Add(addonsCost)

	return &Breakdown{
		PackageName:        pkg.Name,
		PackagePricePerDay: pkg.PricePerDay,
		AddonsCostPerDay:   addonsCost,
		DailyTotal:         daily,
		Hours:              hours,
		BillableDays:       days,
		GrandTotal:         daily.Mul(decimal.NewFromInt(int64(days))),
		Lines:              lines,
	}, nil
}

// lines prices the positive add-on quantities in catalog order, followed by
// any unknown names in lexical order when running lenient.
func (e *Engine) lines(sel Selection) ([]Line, error) {
	lines := make([]Line, 0, len(sel.AddonQuantities))
	for _, a := range e.catalog.Addons() {
		qty := sel.Quantity(a.Name)
		if qty <= 0 {
			continue
		}
		lines = append(lines, Line{
			Name:        a.Name,
			UnitPrice:   a.PricePerDay,
			Quantity:    qty,
			TotalPerDay: a.PricePerDay.Mul(decimal.NewFromInt(int64(qty))),
		})
	}

	unknown := make([]string, 0)
	for name, qty := range sel.AddonQuantities {
		if qty <= 0 {
			continue
		}
		if _, ok := e.catalog.FindAddon(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 && e.opts.StrictAddons {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownAddon, strings.Join(unknown, ", "))
	}

	return lines, nil
}

// NormalizeHours applies the default to absent or non-positive hours.
func NormalizeHours(hours int) int {
	if hours <= 0 {
		return DefaultHours
	}
	return hours
}

// BillableDays rounds hours up to whole reference days.
func BillableDays(hours int) int {
	hours = NormalizeHours(hours)
	days := hours / ReferenceDayHours
	if hours%ReferenceDayHours != 0 {
		days++
	}
	return days
}

// ParseHours reads a user-entered hour count the way the quote form does:
// leading integer digits count, anything unparseable is treated as absent.
func ParseHours(raw string) int {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '+' || raw[end] == '-') {
		end++
	}
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
