package seed

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/helousound/site/internal/catalog"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run writes the given catalog records in an idempotent way. Existing rows are
// only touched when their stored values drift from the records.
func Run(ctx context.Context, db *sql.DB, packages []catalog.Package, addons []catalog.Addon) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	for i, a := range addons {
		if err := ensureAddon(ctx, tx, a, i, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}
	for i, p := range packages {
		if err := ensurePackage(ctx, tx, p, i, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

// RunCanonical seeds the site's canonical catalog.
func RunCanonical(ctx context.Context, db *sql.DB) (Stats, error) {
	packages, addons := catalog.CanonicalRecords()
	return Run(ctx, db, packages, addons)
}

func ensureAddon(ctx context.Context, tx *sql.Tx, a catalog.Addon, position int, stats *Stats) error {
	var (
		id    int64
		price decimal.Decimal
		rate  string
		pos   int
	)
	err := tx.QueryRowContext(ctx, `
		SELECT id, price_per_day, COALESCE(rate_label, ''), position
		FROM addons
		WHERE name = ?
		LIMIT 1
	`, a.Name).Scan(&id, &price, &rate, &pos)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO addons (name, price_per_day, rate_label, position, active)
			VALUES (?, ?, ?, ?, TRUE)
		`, a.Name, a.PricePerDay.StringFixed(2), a.Rate, position); err != nil {
			return fmt.Errorf("insert addon %q: %w", a.Name, err)
		}
		stats.Inserts++
		return nil
	}
	if err != nil {
		return fmt.Errorf("check addon %q existence: %w", a.Name, err)
	}

	if price.Equal(a.PricePerDay) && rate == a.Rate && pos == position {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE addons
		SET
			price_per_day = ?,
			rate_label = ?,
			position = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, a.PricePerDay.StringFixed(2), a.Rate, position, id); err != nil {
		return fmt.Errorf("update addon %q: %w", a.Name, err)
	}
	stats.Updates++
	return nil
}

func ensurePackage(ctx context.Context, tx *sql.Tx, p catalog.Package, position int, stats *Stats) error {
	featuresJSON, err := marshalList(p.Features)
	if err != nil {
		return fmt.Errorf("encode features of package %q: %w", p.Name, err)
	}
	includedJSON, err := marshalList(p.Included)
	if err != nil {
		return fmt.Errorf("encode included add-ons of package %q: %w", p.Name, err)
	}

	var (
		id             int64
		price          decimal.Decimal
		target         string
		storedFeatures string
		storedIncluded string
		highlighted    bool
		pos            int
	)
	err = tx.QueryRowContext(ctx, `
		SELECT id, price_per_day, COALESCE(target, ''), features_json, included_json, highlighted, position
		FROM packages
		WHERE name = ?
		LIMIT 1
	`, p.Name).Scan(&id, &price, &target, &storedFeatures, &storedIncluded, &highlighted, &pos)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO packages (name, price_per_day, target, features_json, included_json, highlighted, position, active)
			VALUES (?, ?, ?, ?, ?, ?, ?, TRUE)
		`, p.Name, p.PricePerDay.StringFixed(2), p.Target, featuresJSON, includedJSON, p.Highlighted, position); err != nil {
			return fmt.Errorf("insert package %q: %w", p.Name, err)
		}
		stats.Inserts++
		return nil
	}
	if err != nil {
		return fmt.Errorf("check package %q existence: %w", p.Name, err)
	}

	if price.Equal(p.PricePerDay) &&
		target == p.Target &&
		storedFeatures == featuresJSON &&
		storedIncluded == includedJSON &&
		highlighted == p.Highlighted &&
		pos == position {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE packages
		SET
			price_per_day = ?,
			target = ?,
			features_json = ?,
			included_json = ?,
			highlighted = ?,
			position = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, p.PricePerDay.StringFixed(2), p.Target, featuresJSON, includedJSON, p.Highlighted, position, id); err != nil {
		return fmt.Errorf("update package %q: %w", p.Name, err)
	}
	stats.Updates++
	return nil
}

func marshalList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
