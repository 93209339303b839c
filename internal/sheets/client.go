package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"termo/api/internal/logging"
)

// Backend is the raw spreadsheet transport.
type Backend interface {
	SheetTitles(ctx context.Context) ([]string, error)
	ReadSheet(ctx context.Context, sheet string) ([][]string, error)
	UpdateCell(ctx context.Context, a1 string, value string) error
}

// Client implements Gateway on top of a Backend.
type Client struct {
	backend       Backend
	spreadsheetID string
	logger        *zap.Logger
}

func NewClient(backend Backend, spreadsheetID string, logger *zap.Logger) *Client {
	return &Client{
		backend:       backend,
		spreadsheetID: spreadsheetID,
		logger:        logging.OrNop(logger).Named("sheets"),
	}
}

func (c *Client) SheetNames(ctx context.Context) ([]string, error) {
	titles, err := c.backend.SheetTitles(ctx)
	if err != nil {
		c.logger.Error("metadata fetch failed", zap.String("spreadsheet_id", c.spreadsheetID), zap.Error(err))
		return nil, &RemoteError{Op: "metadata_fetch", Target: c.spreadsheetID, Err: err}
	}
	return titles, nil
}

// Search scans every named sheet for rows where any cell contains term,
// compared case-insensitively. A row is reported once, for its first matching
// cell. A sheet that cannot be read is logged and skipped.
func (c *Client) Search(ctx context.Context, term string, sheets []string) ([]Row, error) {
	needle := strings.ToLower(term)
	var rows []Row

	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return rows, err
		}

		data, err := c.backend.ReadSheet(ctx, sheet)
		if err != nil {
			c.logger.Warn("sheet read failed, skipping",
				zap.String("sheet", sheet),
				zap.String("term", term),
				zap.Error(err))
			continue
		}

		for i, values := range data {
			for _, cell := range values {
				if strings.Contains(strings.ToLower(cell), needle) {
					rows = append(rows, Row{Sheet: sheet, Number: i + 1, Values: values})
					break
				}
			}
		}
	}

	c.logger.Debug("asset search",
		zap.String("term", term),
		zap.Int("sheets", len(sheets)),
		zap.Int("matches", len(rows)))
	return rows, nil
}

// WriteCell sets exactly one cell. There is no read-modify-write; concurrent
// writers to the same cell follow last-writer-wins.
func (c *Client) WriteCell(ctx context.Context, sheet, column string, row int, value string) error {
	if row < 1 || !validColumn(column) {
		return &RemoteError{Op: "write_cell", Target: fmt.Sprintf("%s!%s%d", sheet, column, row), Err: fmt.Errorf("invalid cell address")}
	}
	address := A1(sheet, column, row)
	if err := c.backend.UpdateCell(ctx, address, value); err != nil {
		return &RemoteError{Op: "write_cell", Target: address, Err: err}
	}
	return nil
}
