package pricing

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestChoosePackage_SeedsIncludedAddons(t *testing.T) {
	engine := newTestEngine(t, Options{SeedIncluded: true})

	sel := Selection{AddonQuantities: map[string]int{"Timecode Sync Box": 3, "Playback Speakers (Pair)": 1}}
	sel = engine.ChoosePackage(sel, "Narrative Film")

	want := map[string]int{
		"Wireless Boom Mic":        1,
		"IFB Headset (Individual)": 1,
		"Timecode Sync Box":        3,
		"Playback Speakers (Pair)": 1,
	}
	if !reflect.DeepEqual(sel.AddonQuantities, want) {
		t.Fatalf("AddonQuantities = %v, want %v", sel.AddonQuantities, want)
	}
	if sel.PackageName != "Narrative Film" {
		t.Fatalf("PackageName = %q", sel.PackageName)
	}
}

func TestChoosePackage_WithoutSeedingKeepsAddonsUntouched(t *testing.T) {
	engine := newTestEngine(t, Options{})

	sel := Selection{AddonQuantities: map[string]int{"Wireless Boom Mic": 2}}
	sel = engine.ChoosePackage(sel, "Interview Quick Kit")
	sel = engine.ChoosePackage(sel, "Commercial / TV")

	if !reflect.DeepEqual(sel.AddonQuantities, map[string]int{"Wireless Boom Mic": 2}) {
		t.Fatalf("add-ons changed across package switch: %v", sel.AddonQuantities)
	}
	if sel.PackageName != "Commercial / TV" {
		t.Fatalf("PackageName = %q", sel.PackageName)
	}
}

func TestChoosePackage_UnknownClearsPackage(t *testing.T) {
	engine := newTestEngine(t, Options{SeedIncluded: true})

	sel := engine.ChoosePackage(Selection{}, "Narrative Film")
	sel = engine.ChoosePackage(sel, "Nope")
	if sel.PackageName != "" {
		t.Fatalf("expected package cleared, got %q", sel.PackageName)
	}
	if sel.SelectedCount() == 0 {
		t.Fatalf("seeded add-ons should persist after clearing the package")
	}

	b, err := engine.Estimate(sel)
	if err != nil || b != nil {
		t.Fatalf("expected no estimate, got %+v err=%v", b, err)
	}
}

func TestSetAddonQuantity_ClampsAndRemoves(t *testing.T) {
	engine := newTestEngine(t, Options{})

	sel, err := engine.SetAddonQuantity(Selection{}, "IFB Headset (Individual)", 3)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if sel.Quantity("IFB Headset (Individual)") != 3 {
		t.Fatalf("quantity = %d, want 3", sel.Quantity("IFB Headset (Individual)"))
	}

	sel, err = engine.SetAddonQuantity(sel, "IFB Headset (Individual)", -4)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, present := sel.AddonQuantities["IFB Headset (Individual)"]; present {
		t.Fatalf("zero quantity must remove the entry: %v", sel.AddonQuantities)
	}
	if sel.SelectedCount() != 0 {
		t.Fatalf("SelectedCount = %d, want 0", sel.SelectedCount())
	}
}

func TestSetAddonQuantity_UnknownAddon(t *testing.T) {
	engine := newTestEngine(t, Options{})

	orig := Selection{AddonQuantities: map[string]int{"Wireless Boom Mic": 1}}
	sel, err := engine.SetAddonQuantity(orig, "Ghost", 1)
	if !errors.Is(err, ErrUnknownAddon) {
		t.Fatalf("err = %v, want ErrUnknownAddon", err)
	}
	if !reflect.DeepEqual(sel, orig) {
		t.Fatalf("selection changed on error: %+v", sel)
	}
}

func TestIncrementDecrement(t *testing.T) {
	engine := newTestEngine(t, Options{})
	const lav = "Additional Wireless Lav"

	sel := Selection{}
	var err error
	for i := 0; i < 3; i++ {
		if sel, err = engine.Increment(sel, lav); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	if sel.Quantity(lav) != 3 {
		t.Fatalf("quantity = %d, want 3", sel.Quantity(lav))
	}

	for i := 0; i < 5; i++ {
		if sel, err = engine.Decrement(sel, lav); err != nil {
			t.Fatalf("decrement: %v", err)
		}
	}
	if sel.Quantity(lav) != 0 || len(sel.AddonQuantities) != 0 {
		t.Fatalf("expected add-on removed after decrementing past zero: %v", sel.AddonQuantities)
	}
}

func TestMutationsDoNotAliasInput(t *testing.T) {
	engine := newTestEngine(t, Options{})

	orig := Selection{AddonQuantities: map[string]int{"Wireless Boom Mic": 1}}
	next, err := engine.Increment(orig, "Wireless Boom Mic")
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if orig.Quantity("Wireless Boom Mic") != 1 {
		t.Fatalf("input selection was mutated")
	}
	if next.Quantity("Wireless Boom Mic") != 2 {
		t.Fatalf("next quantity = %d, want 2", next.Quantity("Wireless Boom Mic"))
	}
}

func TestSelectedAddonsAndCount(t *testing.T) {
	sel := Selection{AddonQuantities: map[string]int{"b": 2, "a": 1, "z": 0}}

	if got := sel.SelectedAddons(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("SelectedAddons = %v", got)
	}
	if sel.SelectedCount() != 3 {
		t.Fatalf("SelectedCount = %d, want 3", sel.SelectedCount())
	}
}

func TestSetHours(t *testing.T) {
	engine := newTestEngine(t, Options{})

	sel := engine.SetHours(Selection{PackageName: "Narrative Film"}, 25)
	b, err := engine.Estimate(sel)
	if err != nil || b == nil {
		t.Fatalf("expected estimate, got %+v err=%v", b, err)
	}
	if b.BillableDays != 3 {
		t.Fatalf("billableDays = %d, want 3", b.BillableDays)
	}

	sel = engine.SetHours(sel, -3)
	if sel.EstimatedHours != 0 {
		t.Fatalf("negative hours should be treated as absent, got %d", sel.EstimatedHours)
	}
}

func TestAddQuantitiesSaturates(t *testing.T) {
	cases := []struct{ a, b, want int }{
		{1, 2, 3},
		{0, -4, 0},
		{-3, 2, 2},
		{math.MaxInt, 1, math.MaxInt},
		{math.MaxInt - 1, math.MaxInt, math.MaxInt},
	}
	for _, tc := range cases {
		if got := AddQuantities(tc.a, tc.b); got != tc.want {
			t.Fatalf("AddQuantities(%d, %d) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}

	sel := Selection{AddonQuantities: map[string]int{"a": math.MaxInt, "b": 5}}
	if sel.SelectedCount() != math.MaxInt {
		t.Fatalf("SelectedCount = %d, want saturation at MaxInt", sel.SelectedCount())
	}
}
