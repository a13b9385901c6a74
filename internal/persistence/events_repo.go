package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"storyengine/internal/core"
)

type eventRepo struct {
	q queryer
}

// FindEvents returns events in [start, end] whose event_name matches any of
// keywords (case-insensitive substring), for C5's surprise scorer.
func (r *eventRepo) FindEvents(ctx context.Context, start, end time.Time, keywords []string) ([]core.EconomicEvent, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	patterns := make([]string, len(keywords))
	for i, k := range keywords {
		patterns[i] = "%" + k + "%"
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT event_name, country, event_time, actual_value, forecast_value, previous_value, impact, unit
		FROM economic_events
		WHERE event_time BETWEEN $1 AND $2
		AND event_name ILIKE ANY($3)
	`, start, end, pq.Array(patterns))
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	defer rows.Close()

	var events []core.EconomicEvent
	for rows.Next() {
		var e core.EconomicEvent
		if err := rows.Scan(&e.EventName, &e.Country, &e.EventTime, &e.ActualValue, &e.ForecastValue, &e.PreviousValue, &e.Impact, &e.Unit); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// SaveEvents bulk-upserts on (event_name, country, event_time), used to
// ingest economic calendar data ahead of surprise scoring.
func (r *eventRepo) SaveEvents(ctx context.Context, events []core.EconomicEvent) error {
	for _, e := range events {
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO economic_events (event_name, country, event_time, actual_value, forecast_value, previous_value, impact, unit)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (event_name, country, event_time) DO UPDATE SET
				actual_value = EXCLUDED.actual_value,
				forecast_value = EXCLUDED.forecast_value,
				previous_value = EXCLUDED.previous_value,
				impact = EXCLUDED.impact,
				unit = EXCLUDED.unit
		`, e.EventName, e.Country, e.EventTime, e.ActualValue, e.ForecastValue, e.PreviousValue, e.Impact, e.Unit)
		if err != nil {
			return fmt.Errorf("save event %s: %w", e.EventName, err)
		}
	}
	return nil
}
