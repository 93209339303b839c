package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"termo/api/internal/cache"
	"termo/api/internal/config"
	"termo/api/internal/handover"
	"termo/api/internal/logging"
)

type pipeline interface {
	Run(ctx context.Context, req handover.Request) (*handover.Result, error)
	SheetNames(ctx context.Context) ([]string, error)
}

type converter interface {
	Convert(ctx context.Context, docxPath, outDir string) (string, error)
}

// Handover is a generated document on disk. Callers remove the files with
// Service.Cleanup once the PDF has been delivered.
type Handover struct {
	DOCXPath     string
	PDFPath      string
	DownloadName string
	NotFound     []string
	Items        int
	Mutations    handover.MutationReport
}

type Service struct {
	cfg       config.Config
	pipeline  pipeline
	converter converter
	cache     *cache.Cache
	templates *handover.Templates
	logger    *zap.Logger
	now       func() time.Time
}

func New(cfg config.Config, p pipeline, conv converter, c *cache.Cache, templates *handover.Templates, logger *zap.Logger) *Service {
	return &Service{
		cfg:       cfg,
		pipeline:  p,
		converter: conv,
		cache:     c,
		templates: templates,
		logger:    logging.OrNop(logger).Named("service"),
		now:       time.Now,
	}
}

// Generate validates the form, runs the handover pipeline and writes the
// DOCX and PDF outputs. An empty template selects the company template.
func (s *Service) Generate(ctx context.Context, form handover.Form, template string) (*Handover, error) {
	if fields := form.Validate(); len(fields) > 0 {
		s.logger.Info("form validation failed", zap.Int("errors", len(fields)))
		return nil, &handover.Error{Kind: handover.ValidationFailure, Message: "Validation failed", Fields: fields}
	}

	user := form.UserRecord()
	result, err := s.pipeline.Run(ctx, handover.Request{User: user, Assets: form.AssetQuery(), Template: template})
	if err != nil {
		return nil, err
	}

	removeStale(s.logger, user.Name, s.cfg.OutputDOCXDir, s.cfg.OutputPDFDir)

	base := outputBase(user.Name, s.now())
	docxPath := filepath.Join(s.cfg.OutputDOCXDir, base+".docx")
	if err := result.Document.Save(docxPath); err != nil {
		return nil, &handover.Error{Kind: handover.DocumentAssemblyFailure, Message: "could not save document", Err: err}
	}

	pdfPath, err := s.converter.Convert(ctx, docxPath, s.cfg.OutputPDFDir)
	if err != nil {
		s.removeFiles(docxPath)
		return nil, &handover.Error{Kind: handover.DocumentAssemblyFailure, Message: "PDF não gerado", Err: err}
	}

	s.logger.Info("handover generated",
		zap.String("pdf", pdfPath),
		zap.Int("items", len(result.Items)),
		zap.Strings("not_found", result.NotFound))

	return &Handover{
		DOCXPath:     docxPath,
		PDFPath:      pdfPath,
		DownloadName: "Entrega " + user.Name + ".pdf",
		NotFound:     result.NotFound,
		Items:        len(result.Items),
		Mutations:    result.Mutations,
	}, nil
}

// Cleanup removes the files of a delivered handover.
func (s *Service) Cleanup(h *Handover) {
	if h == nil {
		return
	}
	s.removeFiles(h.DOCXPath, h.PDFPath)
}

func (s *Service) removeFiles(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("could not delete output", zap.String("path", path), zap.Error(err))
		}
	}
}

// Templates lists the available templates, cached for an hour.
func (s *Service) Templates(ctx context.Context) ([]handover.Template, error) {
	key, err := cache.Key(handover.NamespaceTemplates, []any{s.templates.Dir()}, nil)
	if err != nil {
		return nil, err
	}
	return cache.Remember(ctx, s.cache, key, handover.TemplatesTTL, func(context.Context) ([]handover.Template, error) {
		return s.templates.List()
	})
}

// FlushCache clears cached entries containing pattern, or everything.
func (s *Service) FlushCache(ctx context.Context, pattern string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Clear(ctx, pattern)
}

type ReadyReport struct {
	Ready bool           `json:"ok"`
	Cache map[string]any `json:"cache"`
	Sheet map[string]any `json:"spreadsheet"`
}

// Ready reports cache backend stats and whether the spreadsheet answers.
func (s *Service) Ready(ctx context.Context) ReadyReport {
	report := ReadyReport{
		Ready: true,
		Cache: map[string]any{"status": "ok"},
		Sheet: map[string]any{"status": "ok"},
	}

	if s.cache != nil {
		stats, err := s.cache.Stats(ctx)
		if err != nil {
			report.Cache = map[string]any{"status": "error", "error": err.Error()}
		} else {
			report.Cache["type"] = stats.Backend
			report.Cache["keys"] = stats.Keys
		}
	}

	names, err := s.pipeline.SheetNames(ctx)
	if err != nil {
		report.Ready = false
		report.Sheet = map[string]any{"status": "error", "error": err.Error()}
	} else {
		report.Sheet["sheets"] = len(names)
	}
	return report
}
