package handover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"termo/api/internal/docx"
)

const (
	templatePrefix = "entrega"
	templateExt    = ".docx"
)

// Template is one available company template.
type Template struct {
	Company string `json:"company"`
	File    string `json:"file"`
}

// TemplateName returns the template file used for company.
func TemplateName(company string) string {
	return templatePrefix + strings.ToLower(strings.TrimSpace(company)) + templateExt
}

// Templates is a directory of DOCX templates.
type Templates struct {
	dir string
}

func NewTemplates(dir string) *Templates {
	return &Templates{dir: dir}
}

func (t *Templates) Dir() string {
	return t.dir
}

// List returns every DOCX template in the directory sorted by file name.
func (t *Templates) List() ([]Template, error) {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	var out []Template
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), templateExt) {
			continue
		}
		company := strings.TrimSuffix(name, filepath.Ext(name))
		company = strings.TrimPrefix(company, templatePrefix)
		out = append(out, Template{Company: company, File: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out, nil
}

// Open loads the named template. A missing file yields a TemplateNotFound
// error listing the available templates.
func (t *Templates) Open(name string) (*docx.Document, error) {
	if name == "" || filepath.Base(name) != name {
		return nil, t.notFound(name, fs.ErrInvalid)
	}

	doc, err := docx.Open(filepath.Join(t.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, t.notFound(name, err)
		}
		return nil, &Error{
			Kind:    DocumentAssemblyFailure,
			Message: "could not load template " + name,
			Field:   name,
			Err:     err,
		}
	}
	return doc, nil
}

func (t *Templates) notFound(name string, cause error) *Error {
	available := []string{}
	if list, err := t.List(); err == nil {
		for _, tpl := range list {
			available = append(available, tpl.File)
		}
	}
	return &Error{
		Kind:    TemplateNotFound,
		Message: "Template não encontrado: " + name,
		Field:   name,
		Details: map[string]any{"available_templates": available},
		Err:     cause,
	}
}
