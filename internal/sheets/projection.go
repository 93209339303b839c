package sheets

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Projections maps a sheet name to the indices kept from a cleaned row, in
// output order. The last kept field is conventionally the asset tag.
type Projections map[string][]int

// DefaultProjections is the column layout of the inventory spreadsheet.
func DefaultProjections() Projections {
	return Projections{
		"HEADSET":           {2, 3, 4, 5}, // brand, model, connection, id
		"DESKTOP'S":         {3, 4, 5, 6, 7, 8, 9},
		"CELULARES-TABLETS": {3, 4, 5, 6},
		"MONITORES":         {3, 4, 5, 6},
		"IMP-TRITURADORA":   {3, 4, 5, 6},
		"NOTEBOOKS":         {3, 4, 5, 6, 7, 8, 9},
		"OUTROS":            {1, 4, 5, 6},
	}
}

type projectionsFile struct {
	Sheets map[string][]int `yaml:"sheets"`
}

// LoadProjections reads a YAML file of the form
//
//	sheets:
//	  HEADSET: [2, 3, 4, 5]
//
// and returns it in place of the defaults.
func LoadProjections(path string) (Projections, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read projections: %w", err)
	}

	var file projectionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse projections: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, fmt.Errorf("parse projections: no sheets defined in %s", path)
	}

	projections := make(Projections, len(file.Sheets))
	for name, indices := range file.Sheets {
		for _, index := range indices {
			if index < 0 {
				return nil, fmt.Errorf("parse projections: negative index %d for sheet %q", index, name)
			}
		}
		projections[normalizeSheet(name)] = indices
	}
	return projections, nil
}

// Project keeps the fields of cleaned listed for sheet. Indices past the end
// of the row are skipped. An unknown sheet yields an empty projection and
// known=false.
func (p Projections) Project(sheet string, cleaned []string) (fields []string, known bool) {
	indices, ok := p.lookup(sheet)
	if !ok {
		return nil, false
	}
	fields = make([]string, 0, len(indices))
	for _, index := range indices {
		if index < len(cleaned) {
			fields = append(fields, cleaned[index])
		}
	}
	return fields, true
}

func (p Projections) lookup(sheet string) ([]int, bool) {
	if indices, ok := p[sheet]; ok {
		return indices, true
	}
	indices, ok := p[normalizeSheet(sheet)]
	return indices, ok
}

// CleanRow drops empty and whitespace-only cells and trims the rest.
func CleanRow(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

func normalizeSheet(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
