package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeBackend struct {
	titles    []string
	titlesErr error
	data      map[string][][]string
	readErr   map[string]error
	updates   map[string]string
	updateErr error
	readCalls []string
}

func (f *fakeBackend) SheetTitles(context.Context) ([]string, error) {
	return f.titles, f.titlesErr
}

func (f *fakeBackend) ReadSheet(_ context.Context, sheet string) ([][]string, error) {
	f.readCalls = append(f.readCalls, sheet)
	if err := f.readErr[sheet]; err != nil {
		return nil, err
	}
	return f.data[sheet], nil
}

func (f *fakeBackend) UpdateCell(_ context.Context, a1 string, value string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.updates == nil {
		f.updates = map[string]string{}
	}
	f.updates[a1] = value
	return nil
}

func TestSearchMatchesCaseInsensitively(t *testing.T) {
	backend := &fakeBackend{data: map[string][][]string{
		"CELULARES-TABLETS": {
			{"PROPRIETARIO", "DEPARTAMENTO", "MARCA", "ID"},
			{"JOAO", "TI", "Samsung", "cel001"},
			{"MARIA", "RH", "Apple", "CEL002"},
		},
	}}
	client := NewClient(backend, "sheet-1", nil)

	rows, err := client.Search(context.Background(), "CEL001", []string{"CELULARES-TABLETS"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	want := []Row{{Sheet: "CELULARES-TABLETS", Number: 2, Values: []string{"JOAO", "TI", "Samsung", "cel001"}}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("unexpected rows (-want +got):\n%s", diff)
	}
}

func TestSearchRecordsOneMatchPerRow(t *testing.T) {
	backend := &fakeBackend{data: map[string][][]string{
		"OUTROS": {
			{"PC123", "PC123 spare", "PC123"},
		},
	}}
	client := NewClient(backend, "sheet-1", nil)

	rows, _ := client.Search(context.Background(), "pc123", []string{"OUTROS"})
	if len(rows) != 1 {
		t.Fatalf("expected a single match for a multi-column hit, got %d", len(rows))
	}
}

func TestSearchKeepsSheetThenRowOrder(t *testing.T) {
	backend := &fakeBackend{data: map[string][][]string{
		"NOTEBOOKS": {{"NOT1"}, {"x"}, {"NOT1 b"}},
		"HEADSET":   {{"NOT1 headset"}},
	}}
	client := NewClient(backend, "sheet-1", nil)

	rows, _ := client.Search(context.Background(), "NOT1", []string{"NOTEBOOKS", "HEADSET"})

	var got []string
	for _, r := range rows {
		got = append(got, r.Address("A"))
	}
	want := []string{"'NOTEBOOKS'!A1", "'NOTEBOOKS'!A3", "'HEADSET'!A1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestSearchSkipsUnreadableSheet(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	backend := &fakeBackend{
		data:    map[string][][]string{"MONITORES": {{"MO789"}}},
		readErr: map[string]error{"HEADSET": errors.New("rate limited")},
	}
	client := NewClient(backend, "sheet-1", zap.New(core))

	rows, err := client.Search(context.Background(), "MO789", []string{"HEADSET", "MONITORES"})
	if err != nil {
		t.Fatalf("a single bad sheet must not fail the search: %v", err)
	}
	if len(rows) != 1 || rows[0].Sheet != "MONITORES" {
		t.Errorf("expected partial results from MONITORES, got %+v", rows)
	}
	if logs.FilterMessage("sheet read failed, skipping").Len() != 1 {
		t.Error("expected skipped sheet to be logged")
	}
}

func TestSearchStopsOnCancelledContext(t *testing.T) {
	backend := &fakeBackend{data: map[string][][]string{"HEADSET": {{"x"}}}}
	client := NewClient(backend, "sheet-1", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Search(ctx, "x", []string{"HEADSET"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(backend.readCalls) != 0 {
		t.Errorf("expected no reads after cancellation, got %v", backend.readCalls)
	}
}

func TestSheetNames(t *testing.T) {
	client := NewClient(&fakeBackend{titles: []string{"HEADSET", "OUTROS"}}, "sheet-1", nil)
	names, err := client.SheetNames(context.Background())
	if err != nil {
		t.Fatalf("SheetNames failed: %v", err)
	}
	if diff := cmp.Diff([]string{"HEADSET", "OUTROS"}, names); diff != "" {
		t.Errorf("unexpected names:\n%s", diff)
	}

	failing := NewClient(&fakeBackend{titlesErr: errors.New("403")}, "sheet-1", nil)
	_, err = failing.SheetNames(context.Background())
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remote.Op != "metadata_fetch" || remote.Target != "sheet-1" {
		t.Errorf("unexpected remote error %+v", remote)
	}
}

func TestWriteCell(t *testing.T) {
	backend := &fakeBackend{}
	client := NewClient(backend, "sheet-1", nil)

	if err := client.WriteCell(context.Background(), "DESKTOP'S", "a", 7, "ANA SILVA"); err != nil {
		t.Fatalf("WriteCell failed: %v", err)
	}
	if got := backend.updates["'DESKTOP''S'!A7"]; got != "ANA SILVA" {
		t.Errorf("expected quoted address write, got %v", backend.updates)
	}
}

func TestWriteCellErrors(t *testing.T) {
	client := NewClient(&fakeBackend{updateErr: errors.New("conflict")}, "sheet-1", nil)

	err := client.WriteCell(context.Background(), "HEADSET", "B", 3, "TI")
	var remote *RemoteError
	if !errors.As(err, &remote) || remote.Target != "'HEADSET'!B3" {
		t.Fatalf("expected RemoteError with address, got %v", err)
	}

	for _, tt := range []struct {
		column string
		row    int
	}{{"B", 0}, {"", 1}, {"1", 1}} {
		if err := client.WriteCell(context.Background(), "HEADSET", tt.column, tt.row, "x"); err == nil {
			t.Errorf("expected invalid address error for %q%d", tt.column, tt.row)
		}
	}
}
