// Package handover turns an employee record and a list of asset tags into a
// filled handover document, updating the inventory spreadsheet on the way.
package handover

import (
	"time"

	"termo/api/internal/sheets"
)

// Cache namespaces and their TTLs.
const (
	NamespaceMetadata  = "sheets_metadata"
	NamespaceSearch    = "sheets_search"
	NamespaceTemplates = "template_list"

	MetadataTTL  = 5 * time.Minute
	SearchTTL    = 10 * time.Minute
	TemplatesTTL = time.Hour
)

// UserRecord is the employee receiving the equipment, already normalized.
type UserRecord struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
	Company    string `json:"company"`
}

// Asset is one requested tag and its optional observation.
type Asset struct {
	Identifier  string `json:"identifier"`
	Observation string `json:"observation,omitempty"`
}

// ResolvedItem is one spreadsheet row ready for the document table. Content
// holds quantity, description and tag.
type ResolvedItem struct {
	Content     [3]string  `json:"content"`
	Observation string     `json:"observation,omitempty"`
	Identifier  string     `json:"identifier"`
	Row         sheets.Row `json:"row"`
}

// Limits bound the work a single request may do.
type Limits struct {
	MaxAssets          int
	MaxResultsPerAsset int
	MaxRows            int
	MaxMutations       int
}

func DefaultLimits() Limits {
	return Limits{
		MaxAssets:          10,
		MaxResultsPerAsset: 5,
		MaxRows:            50,
		MaxMutations:       50,
	}
}

// withDefaults replaces non-positive limits with the defaults.
func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxAssets <= 0 {
		l.MaxAssets = d.MaxAssets
	}
	if l.MaxResultsPerAsset <= 0 {
		l.MaxResultsPerAsset = d.MaxResultsPerAsset
	}
	if l.MaxRows <= 0 {
		l.MaxRows = d.MaxRows
	}
	if l.MaxMutations <= 0 {
		l.MaxMutations = d.MaxMutations
	}
	return l
}
