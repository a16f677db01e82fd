package assets

import (
	"context"
	"encoding/json"
	"fmt"
)

// Stats returns a count of assets grouped by terminal status. Assets
// without a result are keyed under the empty status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT COALESCE(result_status, ''), COUNT(1) FROM assets GROUP BY result_status`)
	if err != nil {
		return nil, fmt.Errorf("catalog stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// ComputeAggregates derives catalog-wide progress numbers for status
// polling. Savings and percentages come from the stored result rows;
// the query walks processed rows only.
func (s *Store) ComputeAggregates(ctx context.Context) (Aggregates, error) {
	agg := Aggregates{}

	if err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1), COUNT(result_status) FROM assets`,
	).Scan(&agg.Total, &agg.Processed); err != nil {
		return agg, fmt.Errorf("aggregate counts: %w", err)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT result_json FROM assets WHERE result_json IS NOT NULL`,
	)
	if err != nil {
		return agg, fmt.Errorf("aggregate results: %w", err)
	}
	defer rows.Close()

	var percentSum float64
	var percentCount int
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return agg, err
		}
		var result Result
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			continue
		}
		if result.AllOK {
			agg.Succeeded++
		}
		agg.SavingsBytes += result.Savings
		if len(result.FormatsGenerated) > 0 && result.OriginalSize > 0 {
			percentSum += result.SavingsPercent()
			percentCount++
		}
	}
	if err := rows.Err(); err != nil {
		return agg, err
	}
	if percentCount > 0 {
		agg.AvgPercent = percentSum / float64(percentCount)
	}
	return agg, nil
}
