package sheets

import (
	"context"
	"sort"
	"time"
)

// Row is one spreadsheet row: a timestamp plus one numeric cell per
// column. Column names are metric identifiers.
type Row struct {
	Timestamp time.Time          `json:"timestamp"`
	Cells     map[string]float64 `json:"cells"`
}

// Columns returns the row's column names in stable order.
func (r Row) Columns() []string {
	cols := make([]string, 0, len(r.Cells))
	for c := range r.Cells {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Appender is the spreadsheet store boundary: append one row.
type Appender interface {
	AppendRow(ctx context.Context, row Row) error
}
