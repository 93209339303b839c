package handover

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"termo/api/internal/sheets"
)

func TestMain(m *testing.M) {
	// The Sheets client's opencensus dependency starts a process-wide worker in init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// fakeGateway serves rows by search term and records every call.
type fakeGateway struct {
	mu sync.Mutex

	sheetNames    []string
	sheetNamesErr error
	rows          map[string][]sheets.Row
	writeErr      func(sheet, column string, row int) error

	sheetNameCalls int
	searches       []string
	writes         []string
}

func newFakeGateway(rows map[string][]sheets.Row) *fakeGateway {
	return &fakeGateway{
		sheetNames: []string{"CELULARES-TABLETS", "HEADSET", "NOTEBOOKS", "OUTROS"},
		rows:       rows,
	}
}

func (f *fakeGateway) SheetNames(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sheetNameCalls++
	return f.sheetNames, f.sheetNamesErr
}

func (f *fakeGateway) Search(_ context.Context, term string, _ []string) ([]sheets.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, term)
	return f.rows[term], nil
}

func (f *fakeGateway) WriteCell(_ context.Context, sheet, column string, row int, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		if err := f.writeErr(sheet, column, row); err != nil {
			return err
		}
	}
	f.writes = append(f.writes, fmt.Sprintf("%s!%s%d=%s", sheet, column, row, value))
	return nil
}

func (f *fakeGateway) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}

func phoneRow(number int, id string) sheets.Row {
	return sheets.Row{
		Sheet:  "CELULARES-TABLETS",
		Number: number,
		Values: []string{"JOAO", "TI", "2023", "Samsung", "Galaxy A54", "Preto", id},
	}
}

func phoneRows(n int, id string) []sheets.Row {
	rows := make([]sheets.Row, n)
	for i := range rows {
		rows[i] = phoneRow(i+2, id)
	}
	return rows
}
