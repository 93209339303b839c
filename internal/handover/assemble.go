package handover

import (
	"fmt"
	"strings"
	"time"

	"termo/api/internal/docx"
)

// DateMarker is replaced with the formatted issue date.
const DateMarker = "data"

var months = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// FormatDate renders "City, D de mês de YYYY".
func FormatDate(city string, t time.Time) string {
	return fmt.Sprintf("%s, %d de %s de %d", city, t.Day(), months[t.Month()-1], t.Year())
}

// UserReplacements lists the template markers filled from the user record,
// in the order they are applied.
func UserReplacements(user UserRecord, city string, now time.Time) []docx.Replacement {
	return []docx.Replacement{
		{Marker: "nome", Value: user.Name},
		{Marker: "funcao", Value: user.Role},
		{Marker: "numero", Value: user.Phone},
		{Marker: "empresa", Value: user.Company},
		{Marker: DateMarker, Value: FormatDate(city, now)},
	}
}

// ObservationText is the banner written under an asset's rows.
func ObservationText(observation string) string {
	return "OBS: " + strings.ToUpper(observation)
}

// AppendItems writes one table row per item in order. After the last row of
// each run of items sharing an identifier, a merged observation row follows
// when the run's first item carries an observation.
func AppendItems(doc *docx.Document, items []ResolvedItem) error {
	observation := ""
	for i, item := range items {
		if i == 0 || items[i-1].Identifier != item.Identifier {
			observation = item.Observation
		}
		if err := doc.AppendRow(0, item.Content[:]); err != nil {
			return assemblyError(item, err)
		}

		lastOfGroup := i == len(items)-1 || items[i+1].Identifier != item.Identifier
		if !lastOfGroup || strings.TrimSpace(observation) == "" {
			continue
		}
		if err := doc.AppendMergedRow(0, ObservationText(observation)); err != nil {
			return assemblyError(item, err)
		}
	}
	return nil
}

func assemblyError(item ResolvedItem, err error) *Error {
	return &Error{
		Kind:    DocumentAssemblyFailure,
		Message: "could not add item to document table",
		Field:   item.Identifier,
		Err:     err,
	}
}
