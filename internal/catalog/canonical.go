package catalog

import "github.com/shopspring/decimal"

// Canonical returns the catalog the site publishes. Package prices include
// labor for a ten hour day.
func Canonical() *Catalog {
	c, err := New(canonicalPackages(), canonicalAddons())
	if err != nil {
		panic("catalog: invalid canonical catalog: " + err.Error())
	}
	return c
}

// CanonicalRecords exposes the canonical rows, used by the startup seed.
func CanonicalRecords() ([]Package, []Addon) {
	return canonicalPackages(), canonicalAddons()
}

func canonicalPackages() []Package {
	return []Package{
		{
			Name:        "Interview Quick Kit",
			PricePerDay: decimal.NewFromInt(350),
			Target:      "Corporate & Sit-downs",
			Features: []string{
				"Compact Mixer / Recorder",
				"1× Wireless Lavalier",
				"Audio Feed to Camera",
				"Fast Setup / Small Footprint",
				"Budget-Friendly Entry",
			},
			Included: []string{"Additional Wireless Lav"},
		},
		{
			Name:        "Narrative Film",
			PricePerDay: decimal.NewFromInt(750),
			Target:      "Shorts & Indie Features",
			Features: []string{
				"Mixer/Recorder + Boom Kit",
				"2× Wireless Lavaliers",
				"Timecode Sync + Smart Slate",
				"IFB Headset (Director/Script)",
				"Designed for Scripted Content",
			},
			Included:    []string{"Wireless Boom Mic", "IFB Headset (Individual)", "Timecode Sync Box"},
			Highlighted: true,
		},
		{
			Name:        "Commercial / TV",
			PricePerDay: decimal.NewFromInt(900),
			Target:      "Branded & Episodic",
			Features: []string{
				"Pro Mixer / Recorder",
				"Boom + 2× Wireless Lavs",
				"Wireless Camera Link (S/M)",
				"IFB Headsets & Timecode",
				"Broadcast-Ready Feed",
			},
			Included: []string{
				"Wireless Boom Mic",
				"IFB Headset (Individual)",
				"Wireless Camera Audio Link",
				"Timecode Sync Box",
				"Timecode Smart Slate",
			},
		},
		{
			Name:        "Full Sound Cart",
			PricePerDay: decimal.NewFromInt(1200),
			Target:      "Features & Multi-Cam",
			Features: []string{
				"Digital Mixer Sound Cart",
				"Up to 4× Wireless Lavs",
				"RF Distro & High-Gain Antennas",
				"Active PA Playback Speakers",
				"Optimized for Complex Sets",
			},
			Included: []string{
				"Wireless Boom Mic",
				"IFB Headset (Individual)",
				"Wireless Camera Audio Link",
				"Timecode Sync Box",
				"Timecode Smart Slate",
				"Playback Speakers (Pair)",
			},
		},
	}
}

func canonicalAddons() []Addon {
	return []Addon{
		{Name: "Additional Wireless Lav", PricePerDay: decimal.NewFromInt(100), Rate: "$75–$125"},
		{Name: "Wireless Boom Mic", PricePerDay: decimal.NewFromInt(100)},
		{Name: "IFB Headset (Individual)", PricePerDay: decimal.NewFromInt(50)},
		{Name: "Wireless Camera Audio Link", PricePerDay: decimal.NewFromInt(65), Rate: "$50–$75"},
		{Name: "Timecode Sync Box", PricePerDay: decimal.NewFromInt(50)},
		{Name: "Timecode Smart Slate", PricePerDay: decimal.NewFromInt(75)},
		{Name: "Playback Speakers (Pair)", PricePerDay: decimal.NewFromInt(250)},
	}
}
