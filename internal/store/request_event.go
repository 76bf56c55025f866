package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
)

type requestRepo struct {
	db *sql.DB
}

func (r *requestRepo) Append(ctx context.Context, data RequestEventData) error {
	q, args, err := sqlBuilder.Insert("request_events").
		Columns("request_id", "op", "method", "path", "status", "latency_ms", "success", "error_message", "timestamp").
		Values(data.RequestID, data.Op, data.Method, data.Path, data.Status, data.LatencyMs,
			data.Success, data.ErrorMessage, time.Now().UnixMilli()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build append request event: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("save request event: %w", err)
	}
	return nil
}

func (r *requestRepo) Recent(ctx context.Context, opts QueryOpts) ([]RequestEvent, error) {
	query := sqlBuilder.Select(
		"id", "request_id", "op", "method", "path", "status",
		"latency_ms", "success", "error_message", "timestamp",
	).From("request_events")

	if opts.Op != "" {
		query = query.Where(squirrel.Eq{"op": opts.Op})
	}
	if opts.Failed {
		query = query.Where(squirrel.Eq{"success": false})
	}
	if !opts.From.IsZero() {
		query = query.Where(squirrel.GtOrEq{"timestamp": opts.From.UnixMilli()})
	}
	query = query.OrderBy("id DESC")
	if opts.Limit > 0 {
		query = query.Limit(uint64(opts.Limit))
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent request events: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query request events: %w", err)
	}
	defer rows.Close()

	var events []RequestEvent
	for rows.Next() {
		var (
			e  RequestEvent
			ts int64
		)
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Op, &e.Method, &e.Path, &e.Status,
			&e.LatencyMs, &e.Success, &e.ErrorMessage, &ts); err != nil {
			return nil, fmt.Errorf("scan request event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		events = append(events, e)
	}
	return events, rows.Err()
}
