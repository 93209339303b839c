package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"

	"termo/api/internal/app"
	"termo/api/internal/cache"
	"termo/api/internal/config"
	"termo/api/internal/docx"
	"termo/api/internal/handover"
	"termo/api/internal/sheets"
)

// deps is the wired application shared by every subcommand.
type deps struct {
	service *app.Service
	cache   *cache.Cache
}

func (d *deps) Close() {
	if err := d.cache.Close(); err != nil {
		logger.Warn("cache close failed", zap.Error(err))
	}
}

// buildDeps wires the service. With strict set, missing spreadsheet settings
// are an error; otherwise the service starts and reports them per request.
func buildDeps(ctx context.Context, cfg config.Config, logger *zap.Logger, strict bool) (*deps, error) {
	c := cache.Open(cfg.RedisURL, cfg.CacheTTL, logger)

	var gateway sheets.Gateway
	if err := cfg.Validate(); err != nil {
		if strict {
			_ = c.Close()
			return nil, err
		}
		logger.Warn("spreadsheet not configured", zap.Error(err))
	} else {
		backend, err := sheets.NewGoogleBackend(ctx, cfg.SheetID, option.WithCredentialsFile(cfg.CredentialsPath))
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		gateway = sheets.NewClient(backend, cfg.SheetID, logger)
	}

	var projections sheets.Projections
	if strings.TrimSpace(cfg.ProjectionsFile) != "" {
		loaded, err := sheets.LoadProjections(cfg.ProjectionsFile)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("load sheet projections: %w", err)
		}
		projections = loaded
	}

	templates := handover.NewTemplates(cfg.TemplatesDir)
	pipeline := handover.NewPipeline(gateway, c, templates, handover.Options{
		SpreadsheetID: cfg.SheetID,
		City:          cfg.DocumentCity,
		Projections:   projections,
		Limits: handover.Limits{
			MaxAssets:          cfg.MaxAssetsPerRequest,
			MaxResultsPerAsset: cfg.MaxResultsPerAsset,
			MaxRows:            cfg.MaxRowsPerRequest,
			MaxMutations:       cfg.MaxUpdatesPerRequest,
		},
	}, logger)
	converter := docx.NewConverter(cfg.LibreOfficePath, cfg.ConvertTimeout, logger)

	return &deps{
		service: app.New(cfg, pipeline, converter, c, templates, logger),
		cache:   c,
	}, nil
}
