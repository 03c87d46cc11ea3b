// Package services orchestrates the validator, store, and aggregator
// behind the HTTP surface.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// ErrNotFound reports that the referenced record id does not exist. It
// is a client outcome, not a system failure.
var ErrNotFound = errors.New("record not found")

// RecordService is the façade over validation, persistence, and
// aggregation. The AMQP client is optional; without it records are
// simply never exported.
type RecordService struct {
	validator  *core.Validator
	store      *storage.Repository
	amqpClient *amqp.Client
}

func NewRecordService(store *storage.Repository, amqpClient *amqp.Client) *RecordService {
	return &RecordService{
		validator:  core.NewValidator(),
		store:      store,
		amqpClient: amqpClient,
	}
}

// AddRecord validates in and persists it. A nil input reports a missing
// body; invalid fields come back as a *core.ValidationError listing
// every violation, and nothing is persisted. After a successful insert
// a sync message is published best-effort: a broker failure is logged
// but never fails the request, since the record is already durable.
func (s *RecordService) AddRecord(ctx context.Context, in *core.RecordInput) (core.Record, error) {
	if in == nil {
		return core.Record{}, core.MissingBodyError()
	}

	rec, verr := s.validator.ValidateRecord(*in)
	if verr != nil {
		return core.Record{}, verr
	}

	rec, err := s.store.Insert(ctx, rec)
	if err != nil {
		return core.Record{}, fmt.Errorf("save record: %w", err)
	}

	if err := s.publishSync(ctx, rec.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", rec.ID, "error", err)
	}

	return rec, nil
}

// ListRecords returns records matching f, ordered by id ascending.
func (s *RecordService) ListRecords(ctx context.Context, f core.ListFilter) ([]core.Record, error) {
	records, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// DeleteRecord removes the record with the given id, reporting
// ErrNotFound when it does not exist.
func (s *RecordService) DeleteRecord(ctx context.Context, id int64) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// MonthlySummary builds the per-month income/expense summaries for one
// year. The two aggregate queries run concurrently; the result is
// assembled fresh on every call.
func (s *RecordService) MonthlySummary(ctx context.Context, year int) (core.MonthlySummaries, error) {
	var income, expenses []core.MonthCategorySum

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		income, err = s.store.AggregateByMonth(gctx, year, core.KindIncome)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.store.AggregateByMonth(gctx, year, core.KindExpense)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.MonthlySummaries{}, fmt.Errorf("monthly summary for %d: %w", year, err)
	}

	return core.BuildMonthlySummaries(income, expenses), nil
}

// StoreHealthy reports whether the backing store answers a ping.
func (s *RecordService) StoreHealthy(ctx context.Context) bool {
	return s.store.Ping(ctx) == nil
}

func (s *RecordService) publishSync(ctx context.Context, id int64) error {
	if s.amqpClient == nil {
		return nil
	}
	return s.amqpClient.PublishRecordSync(ctx, id)
}
