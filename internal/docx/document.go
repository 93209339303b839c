// Package docx edits Word templates in memory and converts the result to PDF.
//
// Only word/document.xml is parsed; every other part of the package is
// carried through unchanged on save.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/beevik/etree"
)

const documentPart = "word/document.xml"

var (
	// ErrInvalidDocument indicates the input is not a readable DOCX package.
	ErrInvalidDocument = errors.New("docx invalid document")
	// ErrNoTable indicates the requested table does not exist.
	ErrNoTable = errors.New("docx table not found")
	// ErrRowArity indicates a row was appended with the wrong number of values.
	ErrRowArity = errors.New("docx row arity mismatch")
)

type part struct {
	name     string
	modified time.Time
	data     []byte
}

// Document is one open DOCX package. It is not safe for concurrent use.
type Document struct {
	parts []part
	xml   *etree.Document
	body  *etree.Element
}

// Open reads a DOCX file from disk.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	doc, err := Read(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// Read parses a DOCX package held in memory.
func Read(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	doc := &Document{}
	for _, file := range zr.File {
		content, err := readZipFile(file)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidDocument, file.Name, err)
		}
		doc.parts = append(doc.parts, part{name: file.Name, modified: file.Modified, data: content})

		if file.Name != documentPart {
			continue
		}
		doc.xml = etree.NewDocument()
		if err := doc.xml.ReadFromBytes(content); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidDocument, documentPart, err)
		}
	}

	if doc.xml == nil || doc.xml.Root() == nil {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidDocument, documentPart)
	}
	doc.body = doc.xml.Root().SelectElement("w:body")
	if doc.body == nil {
		return nil, fmt.Errorf("%w: missing w:body", ErrInvalidDocument)
	}
	return doc, nil
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Bytes serializes the package with the edited document part.
func (d *Document) Bytes() ([]byte, error) {
	body, err := d.xml.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", documentPart, err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range d.parts {
		data := p.data
		if p.name == documentPart {
			data = body
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p.name,
			Method:   zip.Deflate,
			Modified: p.modified,
		})
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", p.name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close docx: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the package to path, creating the parent directory.
func (d *Document) Save(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save docx: %w", err)
	}
	return nil
}
