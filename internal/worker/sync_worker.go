// Package worker synchronizes stored records to the spreadsheet export.
package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/export/sheets"
	"bilancio/internal/storage"
)

// SyncWorker copies records from the store to the sheet export and
// tracks each record's sync status. Messages name records by id; a
// record deleted before its message arrives is acknowledged and
// skipped, since there is nothing left to export.
type SyncWorker struct {
	store     *storage.Repository
	appender  sheets.RecordAppender
	batchSize int
}

func NewSyncWorker(store *storage.Repository, appender sheets.RecordAppender, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		store:     store,
		appender:  appender,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single record sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID)

	if err := w.syncRecord(ctx, msg.ID); err != nil {
		return fmt.Errorf("sync record %d: %w", msg.ID, err)
	}
	return nil
}

// ProcessPending exports up to one batch of records still marked
// pending, picking up anything a lost message left behind. Returns the
// number of records synced.
func (w *SyncWorker) ProcessPending(ctx context.Context) (int, error) {
	ids, err := w.store.ListPendingSync(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending records: %w", err)
	}

	synced := 0
	for _, id := range ids {
		if err := w.syncRecord(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to sync pending record", "id", id, "error", err)
			continue
		}
		synced++
	}
	return synced, nil
}

func (w *SyncWorker) syncRecord(ctx context.Context, id int64) error {
	rec, err := w.store.GetRecord(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.WarnContext(ctx, "Record deleted before sync, skipping", "id", id)
			return nil
		}
		return fmt.Errorf("get record: %w", err)
	}

	if err := w.appender.AppendRecord(ctx, rec); err != nil {
		if markErr := w.store.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append record: %w", err)
	}

	if err := w.store.MarkSynced(ctx, id); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}

	slog.InfoContext(ctx, "Record synced", "id", id)
	return nil
}
