package csvexport

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

const DefaultPageSize = 1000

var ErrExportBusy = errors.New("an export is already running")

// FetchFunc returns one page of rows. Pages are 1-based.
type FetchFunc func(ctx context.Context, page, limit int) ([]json.RawMessage, error)

// Exporter pulls every page of a listing one request at a time and writes
// the rows as CSV. It holds the full result set in memory until the write.
type Exporter struct {
	pageSize int
	busy     atomic.Bool
}

func New(pageSize int) *Exporter {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Exporter{pageSize: pageSize}
}

func (e *Exporter) PageSize() int { return e.pageSize }

func (e *Exporter) Busy() bool { return e.busy.Load() }

// Run collects all rows and writes them to w. It returns the number of
// data rows written.
func (e *Exporter) Run(ctx context.Context, fetch FetchFunc, w io.Writer) (int, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return 0, ErrExportBusy
	}
	defer e.busy.Store(false)

	rows, err := Collect(ctx, fetch, e.pageSize)
	if err != nil {
		return 0, err
	}
	if err := WriteCSV(w, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Collect requests page 1, 2, ... until a page comes back shorter than
// limit. There is no page cap.
func Collect(ctx context.Context, fetch FetchFunc, limit int) ([]json.RawMessage, error) {
	var rows []json.RawMessage
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch, err := fetch(ctx, page, limit)
		if err != nil {
			return nil, fmt.Errorf("export page %d: %w", page, err)
		}
		rows = append(rows, batch...)
		log.Debug().Int("page", page).Int("rows", len(batch)).Msg("export page fetched")
		if len(batch) < limit {
			return rows, nil
		}
	}
}

// WriteCSV writes a header taken from the first row's keys followed by one
// line per row. Cells containing commas are quoted. No rows, no output.
func WriteCSV(w io.Writer, rows []json.RawMessage) error {
	if len(rows) == 0 {
		return nil
	}
	first, err := ParseRecord(rows[0])
	if err != nil {
		return fmt.Errorf("row 1: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(first.Keys); err != nil {
		return err
	}
	line := make([]string, len(first.Keys))
	for i, raw := range rows {
		rec := first
		if i > 0 {
			if rec, err = ParseRecord(raw); err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
		}
		for j, key := range first.Keys {
			line[j] = rec.Text(key)
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
