package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Load reads the active packages and add-ons from the database in display order.
func Load(ctx context.Context, db *sql.DB) (*Catalog, error) {
	addons, err := loadAddons(ctx, db)
	if err != nil {
		return nil, err
	}
	packages, err := loadPackages(ctx, db)
	if err != nil {
		return nil, err
	}

	c, err := New(packages, addons)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	return c, nil
}

func loadAddons(ctx context.Context, db *sql.DB) ([]Addon, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name, price_per_day, COALESCE(rate_label, '')
		FROM addons
		WHERE active = TRUE
		ORDER BY position ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query addons: %w", err)
	}
	defer rows.Close()

	addons := make([]Addon, 0)
	for rows.Next() {
		var a Addon
		if err := rows.Scan(&a.Name, &a.PricePerDay, &a.Rate); err != nil {
			return nil, fmt.Errorf("scan addon: %w", err)
		}
		addons = append(addons, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate addons: %w", err)
	}
	return addons, nil
}

func loadPackages(ctx context.Context, db *sql.DB) ([]Package, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name, price_per_day, COALESCE(target, ''), features_json, included_json, highlighted
		FROM packages
		WHERE active = TRUE
		ORDER BY position ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query packages: %w", err)
	}
	defer rows.Close()

	packages := make([]Package, 0)
	for rows.Next() {
		var (
			p            Package
			price        decimal.Decimal
			featuresJSON string
			includedJSON string
		)
		if err := rows.Scan(&p.Name, &price, &p.Target, &featuresJSON, &includedJSON, &p.Highlighted); err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		p.PricePerDay = price
		if err := json.Unmarshal([]byte(featuresJSON), &p.Features); err != nil {
			return nil, fmt.Errorf("decode features of package %q: %w", p.Name, err)
		}
		if err := json.Unmarshal([]byte(includedJSON), &p.Included); err != nil {
			return nil, fmt.Errorf("decode included add-ons of package %q: %w", p.Name, err)
		}
		packages = append(packages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate packages: %w", err)
	}
	return packages, nil
}
