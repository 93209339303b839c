package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// GoogleBackend talks to the Google Sheets v4 API. Transport timeouts and
// authentication come from the client options.
type GoogleBackend struct {
	service       *gsheets.Service
	spreadsheetID string
}

// NewGoogleBackend creates a backend for one spreadsheet. Callers pass the
// credentials option, typically option.WithCredentialsFile.
func NewGoogleBackend(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*GoogleBackend, error) {
	opts = append([]option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}, opts...)
	service, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &GoogleBackend{service: service, spreadsheetID: spreadsheetID}, nil
}

func (b *GoogleBackend) SheetTitles(ctx context.Context) ([]string, error) {
	spreadsheet, err := b.service.Spreadsheets.Get(b.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(spreadsheet.Sheets))
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties == nil {
			continue
		}
		titles = append(titles, sheet.Properties.Title)
	}
	return titles, nil
}

func (b *GoogleBackend) ReadSheet(ctx context.Context, sheet string) ([][]string, error) {
	resp, err := b.service.Spreadsheets.Values.Get(b.spreadsheetID, quoteSheet(sheet)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	rows := make([][]string, len(resp.Values))
	for i, values := range resp.Values {
		row := make([]string, len(values))
		for j, value := range values {
			if value != nil {
				row[j] = fmt.Sprint(value)
			}
		}
		rows[i] = row
	}
	return rows, nil
}

func (b *GoogleBackend) UpdateCell(ctx context.Context, a1 string, value string) error {
	body := &gsheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := b.service.Spreadsheets.Values.Update(b.spreadsheetID, a1, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}
