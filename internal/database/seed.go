package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

type seedAirline struct{ name, codes, provider, status string }
type seedFeature struct{ category, name, description string }
type seedImplementation struct {
	airline, feature int // indexes into seedAirlines / seedFeatures
	value, notes     string
}

var seedAirlines = []seedAirline{
	{"American Airlines", "AA", "Sabre", "Production"},
	{"Lufthansa Group", "LH, OS, SN, LX, EN, 4Y", "Altea NDC", "Production"},
	{"Delta Air Lines", "DL", "Accelya (Former Farelogix)", "Production"},
	{"United Airlines", "UA", "Sabre", "Pilot"},
	{"British Airways", "BA", "Amadeus", "Production"},
}

var seedFeatures = []seedFeature{
	{"Shopping", "Dynamic pricing", "Real-time pricing based on demand and availability"},
	{"Shopping", "Seat selection", "Ability to select specific seats during booking"},
	{"Shopping", "Baggage options", "Selection of different baggage allowances"},
	{"Global", "Unaccompanied minors", "Support for unaccompanied minor bookings"},
	{"Global", "Pet transportation", "Options for pet travel arrangements"},
	{"Booking", "Multi-passenger booking", "Booking for multiple passengers in one transaction"},
	{"Booking", "Group bookings", "Special rates and options for group travel"},
	{"Servicing", "Online check-in", "Web-based check-in functionality"},
	{"Payment", "Corporate payment", "Corporate billing and payment options"},
}

var seedImplementations = []seedImplementation{
	{0, 0, "Yes", "Full dynamic pricing support"},
	{0, 1, "Yes", "Standard seat selection available"},
	{0, 2, "Yes", "Multiple baggage tiers"},
	{0, 3, "Yes", "Unaccompanied minor service available"},
	{0, 4, "No", "Pet transport not supported via NDC"},

	{1, 0, "Yes", "Advanced pricing algorithms"},
	{1, 1, "Yes", "Premium seat selection"},
	{1, 2, "Yes", "Flexible baggage options"},
	{1, 3, "Limited", "Select routes only"},
	{1, 4, "Yes", "Full pet transport support"},

	{2, 0, "Yes", "Market-leading dynamic pricing"},
	{2, 1, "Yes", "Enhanced seat selection"},
	{2, 2, "Yes", "Comprehensive baggage options"},
	{2, 3, "Yes", "Full unaccompanied minor support"},
	{2, 4, "Limited", "Domestic flights only"},

	{3, 0, "Pilot", "Testing phase"},
	{3, 1, "Yes", "Basic seat selection"},
	{3, 2, "No", "Not yet implemented"},
	{3, 3, "No", "Under development"},
	{3, 4, "No", "Future roadmap item"},

	{4, 0, "Yes", "Sophisticated pricing model"},
	{4, 1, "Yes", "Premium and standard seats"},
	{4, 2, "Yes", "Tiered baggage system"},
	{4, 3, "Yes", "Comprehensive UM service"},
	{4, 4, "Yes", "Full pet travel support"},
}

// Seed inserts the sample catalog when the airlines table is empty.  It
// reports whether anything was written.  All rows go in one transaction.
func Seed(ctx context.Context, db *sql.DB, log *zap.Logger) (seeded bool, err error) {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM airlines").Scan(&count); err != nil {
		return false, fmt.Errorf("count airlines: %w", err)
	}
	if count > 0 {
		log.Info("catalog already contains data, skipping seed", zap.Int("airlines", count))
		return false, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	airlineIDs := make([]int64, len(seedAirlines))
	for i, a := range seedAirlines {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO airlines (name, codes, provider, status) VALUES (?, ?, ?, ?)",
			a.name, a.codes, a.provider, a.status)
		if err != nil {
			return false, fmt.Errorf("seed airline %q: %w", a.name, err)
		}
		if airlineIDs[i], err = res.LastInsertId(); err != nil {
			return false, err
		}
	}

	featureIDs := make([]int64, len(seedFeatures))
	for i, f := range seedFeatures {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO features (category, name, description) VALUES (?, ?, ?)",
			f.category, f.name, f.description)
		if err != nil {
			return false, fmt.Errorf("seed feature %q: %w", f.name, err)
		}
		if featureIDs[i], err = res.LastInsertId(); err != nil {
			return false, err
		}
	}

	for _, im := range seedImplementations {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO implementations (airline_id, feature_id, value, notes) VALUES (?, ?, ?, ?)",
			airlineIDs[im.airline], featureIDs[im.feature], im.value, im.notes); err != nil {
			return false, fmt.Errorf("seed implementation: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}
	log.Info("catalog seeded",
		zap.Int("airlines", len(seedAirlines)),
		zap.Int("features", len(seedFeatures)),
		zap.Int("implementations", len(seedImplementations)))
	return true, nil
}
