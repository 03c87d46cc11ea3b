// Package storage is the durable record repository backed by SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bilancio/internal/core"

	_ "modernc.org/sqlite"
)

// Sync states for the background sheet export.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncFailed  = "error"
)

type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the database at dbPath,
// verifies connectivity, and applies pending migrations.
func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Insert persists rec, assigning its id and creation timestamp. The
// write runs in its own transaction; on any failure the transaction is
// rolled back and no partial row remains.
func (r *Repository) Insert(ctx context.Context, rec core.Record) (core.Record, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Record{}, fmt.Errorf("begin insert: %w", err)
	}

	createdAt := time.Now().UTC().Truncate(time.Second)
	row := tx.QueryRowContext(ctx, `
		INSERT INTO records (amount_cents, description, category, date, type, created_at, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		core.CentsFromAmount(rec.Amount),
		rec.Description,
		string(rec.Category),
		rec.Date.String(),
		string(rec.Kind),
		createdAt.Format(time.RFC3339),
		SyncPending,
	)
	if err := row.Scan(&rec.ID); err != nil {
		tx.Rollback()
		return core.Record{}, fmt.Errorf("insert record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Record{}, fmt.Errorf("commit insert: %w", err)
	}

	rec.CreatedAt = createdAt

	slog.InfoContext(ctx, "Record saved",
		"id", rec.ID,
		"description", rec.Description,
		"amount", rec.Amount.String(),
		"category", rec.Category,
		"type", rec.Kind)

	return rec, nil
}

// List returns the records matching f, ordered by id ascending. That
// is the canonical listing order; there is no other.
func (r *Repository) List(ctx context.Context, f core.ListFilter) ([]core.Record, error) {
	query := `SELECT id, amount_cents, description, category, date, type, created_at FROM records WHERE 1=1`
	var args []any

	if !f.StartDate.IsZero() {
		query += ` AND date >= ?`
		args = append(args, f.StartDate.String())
	}
	if !f.EndDate.IsZero() {
		query += ` AND date <= ?`
		args = append(args, f.EndDate.String())
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, string(f.Category))
	}
	if f.Kind != "" {
		query += ` AND type = ?`
		args = append(args, string(f.Kind))
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := make([]core.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// Delete removes the record with the given id. It reports false when no
// row matched; that is not an error.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		tx.Rollback()
		return false, fmt.Errorf("delete record %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return false, fmt.Errorf("delete record %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete: %w", err)
	}
	return affected > 0, nil
}

// AggregateByMonth sums amounts per (calendar month, category) for one
// year and kind. Months and categories without rows are simply absent;
// an empty year yields an empty slice, not an error.
func (r *Repository) AggregateByMonth(ctx context.Context, year int, kind core.Kind) ([]core.MonthCategorySum, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT CAST(strftime('%m', date) AS INTEGER) AS month, category, SUM(amount_cents)
		FROM records
		WHERE type = ? AND strftime('%Y', date) = ?
		GROUP BY month, category
		ORDER BY month, category`,
		string(kind), fmt.Sprintf("%04d", year),
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s by month: %w", kind, err)
	}
	defer rows.Close()

	sums := make([]core.MonthCategorySum, 0)
	for rows.Next() {
		var (
			month    int
			category string
			cents    int64
		)
		if err := rows.Scan(&month, &category, &cents); err != nil {
			return nil, fmt.Errorf("scan aggregate row: %w", err)
		}
		sums = append(sums, core.MonthCategorySum{
			Month:    month,
			Category: core.Category(category),
			Total:    core.AmountFromCents(cents),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("aggregate %s by month: %w", kind, err)
	}
	return sums, nil
}

// GetRecord fetches a single record by id. The error wraps
// sql.ErrNoRows when the id does not exist.
func (r *Repository) GetRecord(ctx context.Context, id int64) (core.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, amount_cents, description, category, date, type, created_at
		FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		return core.Record{}, fmt.Errorf("get record %d: %w", id, err)
	}
	return rec, nil
}

// ListPendingSync returns ids of records not yet exported, oldest
// first, capped at limit.
func (r *Repository) ListPendingSync(ctx context.Context, limit int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM records WHERE sync_status = ? ORDER BY id ASC LIMIT ?`,
		SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending sync: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending sync: %w", err)
	}
	return ids, nil
}

// MarkSynced records a successful export of the record.
func (r *Repository) MarkSynced(ctx context.Context, id int64) error {
	return r.setSyncStatus(ctx, id, SyncDone)
}

// MarkSyncError records a failed export attempt.
func (r *Repository) MarkSyncError(ctx context.Context, id int64) error {
	return r.setSyncStatus(ctx, id, SyncFailed)
}

func (r *Repository) setSyncStatus(ctx context.Context, id int64, status string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE records SET sync_status = ? WHERE id = ?`, status, id); err != nil {
		return fmt.Errorf("set sync status %s on record %d: %w", status, id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (core.Record, error) {
	var (
		rec       core.Record
		cents     int64
		category  string
		date      string
		kind      string
		createdAt string
	)
	if err := row.Scan(&rec.ID, &cents, &rec.Description, &category, &date, &kind, &createdAt); err != nil {
		return core.Record{}, err
	}

	rec.Amount = core.AmountFromCents(cents)
	rec.Category = core.Category(category)
	rec.Kind = core.Kind(kind)

	d, err := core.ParseDate(date)
	if err != nil {
		return core.Record{}, fmt.Errorf("record %d: %w", rec.ID, err)
	}
	rec.Date = d

	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return core.Record{}, fmt.Errorf("record %d: parse created_at: %w", rec.ID, err)
	}
	rec.CreatedAt = ts

	return rec, nil
}
