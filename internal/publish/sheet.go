package publish

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/pisense/internal/history"
	"github.com/nerrad567/pisense/internal/infrastructure/sheets"
)

// SheetPublisher appends one row per tick to the spreadsheet store.
//
// The row carries the newest reading per metric from the snapshot. The
// timestamp of the last appended row is remembered so a retried or
// skipped-then-redispatched snapshot that carries no newer data is a
// clean no-op rather than a duplicate row.
type SheetPublisher struct {
	appender sheets.Appender

	mu      sync.Mutex
	lastRow time.Time
}

// NewSheetPublisher creates the spreadsheet backend publisher.
func NewSheetPublisher(appender sheets.Appender) *SheetPublisher {
	return &SheetPublisher{appender: appender}
}

// Name implements Publisher.
func (p *SheetPublisher) Name() string {
	return "sheet"
}

// Publish appends a row holding the snapshot's newest reading per
// metric. The row timestamp is the newest reading timestamp present.
func (p *SheetPublisher) Publish(ctx context.Context, snap history.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	latest := snap.Latest()
	if len(latest) == 0 {
		return ErrNothingToPublish
	}

	row := sheets.Row{Cells: make(map[string]float64, len(latest))}
	for m, r := range latest {
		row.Cells[string(m)] = r.Value
		if r.Timestamp.After(row.Timestamp) {
			row.Timestamp = r.Timestamp
		}
	}

	if !row.Timestamp.After(p.lastRow) {
		return ErrNothingToPublish
	}

	if err := p.appender.AppendRow(ctx, row); err != nil {
		return fmt.Errorf("%w: sheet append: %w", ErrPublishFailed, err)
	}
	p.lastRow = row.Timestamp
	return nil
}
