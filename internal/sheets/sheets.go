// Package sheets is the spreadsheet gateway: it lists tabs, scans them for an
// asset term and writes single cells back to the inventory spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Row is one matched spreadsheet row. Number is 1-based.
type Row struct {
	Sheet  string   `json:"sheet"`
	Number int      `json:"row"`
	Values []string `json:"values"`
}

// Address returns the A1 reference of column in this row.
func (r Row) Address(column string) string {
	return A1(r.Sheet, column, r.Number)
}

// Gateway is the subset of the spreadsheet service the handover pipeline uses.
type Gateway interface {
	SheetNames(ctx context.Context) ([]string, error)
	Search(ctx context.Context, term string, sheets []string) ([]Row, error)
	WriteCell(ctx context.Context, sheet, column string, row int, value string) error
}

// RemoteError is returned when the spreadsheet service fails an operation.
type RemoteError struct {
	Op     string
	Target string
	Err    error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("sheets %s %s: %v", e.Op, e.Target, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// A1 builds a single-cell reference with the sheet name quoted, so names such
// as DESKTOP'S are addressed correctly.
func A1(sheet, column string, row int) string {
	return quoteSheet(sheet) + "!" + strings.ToUpper(column) + strconv.Itoa(row)
}

func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func validColumn(column string) bool {
	if column == "" {
		return false
	}
	for _, r := range strings.ToUpper(column) {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
