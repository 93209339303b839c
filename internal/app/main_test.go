package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"termo/api/internal/cache"
	"termo/api/internal/config"
	"termo/api/internal/docx"
	"termo/api/internal/docx/docxtest"
	"termo/api/internal/handover"
)

type fakePipeline struct {
	runFn        func(context.Context, handover.Request) (*handover.Result, error)
	sheetNamesFn func(context.Context) ([]string, error)
	requests     []handover.Request
}

func (f *fakePipeline) Run(ctx context.Context, req handover.Request) (*handover.Result, error) {
	f.requests = append(f.requests, req)
	if f.runFn != nil {
		return f.runFn(ctx, req)
	}
	return nil, nil
}

func (f *fakePipeline) SheetNames(ctx context.Context) ([]string, error) {
	if f.sheetNamesFn != nil {
		return f.sheetNamesFn(ctx)
	}
	return []string{"CELULARES-TABLETS"}, nil
}

type fakeConverter struct {
	convertFn func(ctx context.Context, docxPath, outDir string) (string, error)
	calls     int
}

func (f *fakeConverter) Convert(ctx context.Context, docxPath, outDir string) (string, error) {
	f.calls++
	if f.convertFn != nil {
		return f.convertFn(ctx, docxPath, outDir)
	}
	return writePDF(docxPath, outDir)
}

// writePDF stands in for LibreOffice: it writes <base>.pdf next to outDir.
func writePDF(docxPath, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	base := filepath.Base(docxPath)
	path := filepath.Join(outDir, base[:len(base)-len(filepath.Ext(base))]+".pdf")
	return path, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644)
}

type testEnv struct {
	service   *Service
	pipeline  *fakePipeline
	converter *fakeConverter
	cache     *cache.Cache
	cfg       config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	cfg := config.Config{
		SheetID:       "sheet-1",
		TemplatesDir:  filepath.Join(root, "modelos"),
		OutputDOCXDir: filepath.Join(root, "entrega_docx"),
		OutputPDFDir:  filepath.Join(root, "entrega_pdf"),
	}
	docxtest.Write(t, filepath.Join(cfg.TemplatesDir, handover.TemplateName("acme")), docxtest.HandoverBody)

	pipeline := &fakePipeline{}
	pipeline.runFn = func(context.Context, handover.Request) (*handover.Result, error) {
		return &handover.Result{Document: testDocument(t), NotFound: []string{}}, nil
	}
	converter := &fakeConverter{}
	c := cache.NewMemory(time.Hour, nil)

	service := New(cfg, pipeline, converter, c, handover.NewTemplates(cfg.TemplatesDir), nil)
	service.now = func() time.Time { return time.Date(2025, 3, 7, 14, 30, 5, 0, time.UTC) }

	return &testEnv{service: service, pipeline: pipeline, converter: converter, cache: c, cfg: cfg}
}

func testDocument(t *testing.T) *docx.Document {
	t.Helper()
	doc, err := docx.Read(docxtest.Build(t, docxtest.HandoverBody))
	if err != nil {
		t.Fatalf("read test document: %v", err)
	}
	return doc
}

func validForm() handover.Form {
	return handover.Form{
		Name:       "Ana Silva",
		Role:       "Analista",
		Department: "ti",
		Phone:      "62999998888",
		Company:    "acme",
		Assets:     []handover.FormAsset{{Identifier: "cel001", Observation: "trocar capa"}},
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("read dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
