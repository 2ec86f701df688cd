package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/helousound/site/internal/money"
)

var (
	ErrDuplicateName  = errors.New("duplicate catalog name")
	ErrNegativePrice  = errors.New("negative catalog price")
	ErrEmptyName      = errors.New("empty catalog name")
	ErrUnknownInclude = errors.New("included add-on not in catalog")
)

// Package is a priced bundle of equipment and services billed per day.
type Package struct {
	Name        string
	PricePerDay decimal.Decimal
	Target      string
	Features    []string
	// Included lists add-on names bundled with the package.
	Included    []string
	Highlighted bool
}

// DisplayPrice renders the per-day price, e.g. "$1,200".
func (p Package) DisplayPrice() string {
	return money.Short(p.PricePerDay)
}

// Addon is an optional extra item billed per day and selectable with a quantity.
type Addon struct {
	Name        string
	PricePerDay decimal.Decimal
	// Rate is an optional free-text label such as "$75–$125".
	Rate string
}

// DisplayRate renders the advertised rate, preferring the explicit label.
func (a Addon) DisplayRate() string {
	if a.Rate != "" {
		return a.Rate
	}
	return money.Short(a.PricePerDay)
}

// Catalog is the immutable set of packages and add-ons offered on the site.
type Catalog struct {
	packages     []Package
	addons       []Addon
	packageIndex map[string]int
	addonIndex   map[string]int
}

// New validates the given records and builds a Catalog preserving their order.
func New(packages []Package, addons []Addon) (*Catalog, error) {
	c := &Catalog{
		packages:     make([]Package, 0, len(packages)),
		addons:       make([]Addon, 0, len(addons)),
		packageIndex: make(map[string]int, len(packages)),
		addonIndex:   make(map[string]int, len(addons)),
	}

	for _, a := range addons {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return nil, fmt.Errorf("add-on: %w", ErrEmptyName)
		}
		if _, ok := c.addonIndex[name]; ok {
			return nil, fmt.Errorf("add-on %q: %w", name, ErrDuplicateName)
		}
		if a.PricePerDay.IsNegative() {
			return nil, fmt.Errorf("add-on %q: %w", name, ErrNegativePrice)
		}
		a.Name = name
		c.addonIndex[name] = len(c.addons)
		c.addons = append(c.addons, a)
	}

	for _, p := range packages {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fmt.Errorf("package: %w", ErrEmptyName)
		}
		if _, ok := c.packageIndex[name]; ok {
			return nil, fmt.Errorf("package %q: %w", name, ErrDuplicateName)
		}
		if p.PricePerDay.IsNegative() {
			return nil, fmt.Errorf("package %q: %w", name, ErrNegativePrice)
		}
		for _, included := range p.Included {
			if _, ok := c.addonIndex[included]; !ok {
				return nil, fmt.Errorf("package %q includes %q: %w", name, included, ErrUnknownInclude)
			}
		}
		p.Name = name
		p.Features = append([]string(nil), p.Features...)
		p.Included = append([]string(nil), p.Included...)
		c.packageIndex[name] = len(c.packages)
		c.packages = append(c.packages, p)
	}

	return c, nil
}

// FindPackage resolves a package by name. A miss is a normal outcome.
func (c *Catalog) FindPackage(name string) (Package, bool) {
	if c == nil {
		return Package{}, false
	}
	idx, ok := c.packageIndex[strings.TrimSpace(name)]
	if !ok {
		return Package{}, false
	}
	return clonePackage(c.packages[idx]), true
}

// FindAddon resolves an add-on by name. A miss is a normal outcome.
func (c *Catalog) FindAddon(name string) (Addon, bool) {
	if c == nil {
		return Addon{}, false
	}
	idx, ok := c.addonIndex[strings.TrimSpace(name)]
	if !ok {
		return Addon{}, false
	}
	return c.addons[idx], true
}

// Packages returns the packages in display order.
func (c *Catalog) Packages() []Package {
	if c == nil {
		return nil
	}
	out := make([]Package, len(c.packages))
	for i, p := range c.packages {
		out[i] = clonePackage(p)
	}
	return out
}

// Addons returns the add-ons in display order.
func (c *Catalog) Addons() []Addon {
	if c == nil {
		return nil
	}
	return append([]Addon(nil), c.addons...)
}

func clonePackage(p Package) Package {
	p.Features = append([]string(nil), p.Features...)
	p.Included = append([]string(nil), p.Included...)
	return p
}
