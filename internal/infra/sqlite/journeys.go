package sqlite

import (
	"context"
	"database/sql"

	"github.com/ecoplus-hub/ecoplus/internal/domain"
)

// ─── Journeys ───────────────────────────────────────────────────────────────

// InsertJourney stores a logged journey.
func (d *DB) InsertJourney(ctx context.Context, j domain.Journey) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO journeys (id, user_id, transport_type, distance, fuel_efficiency, emissions, date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.UserID, string(j.TransportType), j.Distance, nullableFloat(j.FuelEfficiency),
		j.Emissions, millis(j.Date),
	)
	if isForeignKeyViolation(err) {
		return domain.ErrUserNotFound
	}
	return err
}

// ListJourneys returns the user's journeys, newest first.
func (d *DB) ListJourneys(ctx context.Context, userID string) ([]domain.Journey, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, user_id, transport_type, distance, fuel_efficiency, emissions, date
		FROM journeys WHERE user_id = ? ORDER BY date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Journey
	for rows.Next() {
		var j domain.Journey
		var transport string
		var fuel sql.NullFloat64
		var date int64
		if err := rows.Scan(&j.ID, &j.UserID, &transport, &j.Distance, &fuel, &j.Emissions, &date); err != nil {
			return nil, err
		}
		j.TransportType = domain.TransportType(transport)
		if fuel.Valid {
			f := fuel.Float64
			j.FuelEfficiency = &f
		}
		j.Date = fromMillis(date)
		out = append(out, j)
	}
	return out, rows.Err()
}

// JourneyTotals returns total emissions and total distance across the
// user's journeys.
func (d *DB) JourneyTotals(ctx context.Context, userID string) (emissions, distance float64, err error) {
	err = d.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(emissions), 0), COALESCE(SUM(distance), 0)
		FROM journeys WHERE user_id = ?`, userID,
	).Scan(&emissions, &distance)
	return emissions, distance, err
}
