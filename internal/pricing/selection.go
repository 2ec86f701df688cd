package pricing

import (
	"fmt"
	"math"
	"sort"
)

// Selection is a visitor's in-progress choice of package, add-ons and
// duration. The zero value is an empty selection. Quantities are never
// negative and a removed add-on has no entry.
type Selection struct {
	PackageName     string         `json:"selectedPackage"`
	AddonQuantities map[string]int `json:"addons"`
	// EstimatedHours of zero means the visitor has not entered a duration.
	EstimatedHours int `json:"estimatedHours"`
}

// Quantity reports how many units of the named add-on are selected.
func (s Selection) Quantity(name string) int {
	if qty := s.AddonQuantities[name]; qty > 0 {
		return qty
	}
	return 0
}

// SelectedCount sums the selected add-on units, ignoring zero entries.
func (s Selection) SelectedCount() int {
	total := 0
	for _, qty := range s.AddonQuantities {
		total = AddQuantities(total, qty)
	}
	return total
}

// AddQuantities sums two quantities, ignoring non-positive values and
// saturating at math.MaxInt instead of wrapping.
func AddQuantities(a, b int) int {
	if a < 0 {
		a = 0
	}
	if b <= 0 {
		return a
	}
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// SelectedAddons lists the add-on names with a positive quantity, sorted.
func (s Selection) SelectedAddons() []string {
	names := make([]string, 0, len(s.AddonQuantities))
	for name, qty := range s.AddonQuantities {
		if qty > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy so callers can derive new selections safely.
func (s Selection) Clone() Selection {
	out := Selection{
		PackageName:    s.PackageName,
		EstimatedHours: s.EstimatedHours,
	}
	if len(s.AddonQuantities) > 0 {
		out.AddonQuantities = make(map[string]int, len(s.AddonQuantities))
		for name, qty := range s.AddonQuantities {
			if qty > 0 {
				out.AddonQuantities[name] = qty
			}
		}
	}
	return out
}

// ChoosePackage selects a package. Existing add-ons are kept. With
// SeedIncluded the package's included add-ons are raised to at least one
// unit. An unknown name clears the package and yields no estimate.
func (e *Engine) ChoosePackage(sel Selection, name string) Selection {
	out := sel.Clone()
	pkg, ok := e.catalog.FindPackage(name)
	if !ok {
		out.PackageName = ""
		return out
	}
	out.PackageName = pkg.Name

	if e.opts.SeedIncluded {
		for _, included := range pkg.Included {
			if out.Quantity(included) == 0 {
				out = setQuantity(out, included, 1)
			}
		}
	}
	return out
}

// ClearPackage removes the chosen package without touching add-ons.
func (e *Engine) ClearPackage(sel Selection) Selection {
	out := sel.Clone()
	out.PackageName = ""
	return out
}

// SetAddonQuantity sets the units of an add-on, clamping at zero. Zero
// removes the entry.
func (e *Engine) SetAddonQuantity(sel Selection, name string, qty int) (Selection, error) {
	addon, ok := e.catalog.FindAddon(name)
	if !ok {
		return sel, fmt.Errorf("%w: %s", ErrUnknownAddon, name)
	}
	return setQuantity(sel.Clone(), addon.Name, qty), nil
}

// Increment adds one unit of an add-on.
func (e *Engine) Increment(sel Selection, name string) (Selection, error) {
	return e.SetAddonQuantity(sel, name, sel.Quantity(name)+1)
}

// Decrement removes one unit of an add-on, never going below zero.
func (e *Engine) Decrement(sel Selection, name string) (Selection, error) {
	return e.SetAddonQuantity(sel, name, sel.Quantity(name)-1)
}

// SetHours records the estimated duration; non-positive values mean absent.
func (e *Engine) SetHours(sel Selection, hours int) Selection {
	out := sel.Clone()
	if hours < 0 {
		hours = 0
	}
	out.EstimatedHours = hours
	return out
}

func setQuantity(sel Selection, name string, qty int) Selection {
	if qty <= 0 {
		delete(sel.AddonQuantities, name)
		return sel
	}
	if sel.AddonQuantities == nil {
		sel.AddonQuantities = make(map[string]int)
	}
	sel.AddonQuantities[name] = qty
	return sel
}
