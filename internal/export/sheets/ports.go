// Package sheets exports finance records to a Google spreadsheet.
package sheets

import (
	"context"

	"bilancio/internal/core"
)

// RecordAppender is the outbound port the sync worker writes through.
type RecordAppender interface {
	AppendRecord(ctx context.Context, rec core.Record) error
}
