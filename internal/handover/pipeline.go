package handover

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"termo/api/internal/cache"
	"termo/api/internal/docx"
	"termo/api/internal/logging"
	"termo/api/internal/sheets"
)

// Options configures a Pipeline.
type Options struct {
	SpreadsheetID string
	City          string
	Limits        Limits
	Projections   sheets.Projections
	Now           func() time.Time
}

// Request is one handover to generate. Template defaults to the company
// template when empty.
type Request struct {
	User     UserRecord
	Assets   []Asset
	Template string
}

// Result is the filled document and what happened on the way.
type Result struct {
	Document  *docx.Document
	Items     []ResolvedItem
	NotFound  []string
	Mutations MutationReport
}

// Pipeline runs a handover from validated input to a filled document. A
// Pipeline is safe for concurrent use; each Run works on its own document.
type Pipeline struct {
	gateway   sheets.Gateway
	cache     *cache.Cache
	templates *Templates
	resolver  *Resolver
	mutator   *Mutator
	opts      Options
	logger    *zap.Logger
}

func NewPipeline(gateway sheets.Gateway, c *cache.Cache, templates *Templates, opts Options, logger *zap.Logger) *Pipeline {
	logger = logging.OrNop(logger)
	opts.Limits = opts.Limits.withDefaults()
	if opts.City == "" {
		opts.City = "Goiânia"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{
		gateway:   gateway,
		cache:     c,
		templates: templates,
		resolver:  NewResolver(gateway, c, opts.Projections, opts.Limits, opts.SpreadsheetID, logger),
		mutator:   NewMutator(gateway, c, opts.Limits, logger),
		opts:      opts,
		logger:    logger.Named("pipeline"),
	}
}

// Run validates the request, fills the template with the user data, resolves
// and mutates the assets and appends them to the document table.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if err := p.configured(); err != nil {
		return nil, err
	}
	if fields := validateRequest(req); len(fields) > 0 {
		return nil, validationError(fields)
	}
	if n := len(req.Assets); n > p.opts.Limits.MaxAssets {
		return nil, &Error{
			Kind:    SafetyLimitExceeded,
			Message: fmt.Sprintf("Máximo de %d patrimônios por requisição permitido", p.opts.Limits.MaxAssets),
			Field:   "patrimonio",
			Details: map[string]int{"requested": n, "limit": p.opts.Limits.MaxAssets},
		}
	}

	name := req.Template
	if name == "" {
		name = TemplateName(req.User.Company)
	}
	doc, err := p.templates.Open(name)
	if err != nil {
		return nil, err
	}
	doc.Substitute(UserReplacements(req.User, p.opts.City, p.opts.Now()))

	sheetNames, err := p.SheetNames(ctx)
	if err != nil {
		return nil, err
	}

	resolution, err := p.resolver.Resolve(ctx, req.Assets, sheetNames)
	if err != nil {
		return nil, err
	}

	report, err := p.mutator.Apply(ctx, req.User, resolution.Items)
	if err != nil {
		return nil, err
	}

	if err := AppendItems(doc, resolution.Items); err != nil {
		return nil, err
	}

	if len(resolution.NotFound) > 0 {
		p.logger.Warn("assets not found", zap.Strings("identifiers", resolution.NotFound))
	}
	p.logger.Info("handover assembled",
		zap.String("template", name),
		zap.Int("items", len(resolution.Items)),
		zap.Int("mutated", report.Mutated),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped))

	return &Result{
		Document:  doc,
		Items:     resolution.Items,
		NotFound:  resolution.NotFound,
		Mutations: report,
	}, nil
}

// SheetNames lists the spreadsheet tabs through the cache. Failing to list
// them, or finding none, is fatal to a handover.
func (p *Pipeline) SheetNames(ctx context.Context) ([]string, error) {
	if err := p.configured(); err != nil {
		return nil, err
	}
	fetch := func(ctx context.Context) ([]string, error) {
		return p.gateway.SheetNames(ctx)
	}
	key, err := cache.Key(NamespaceMetadata, []any{p.opts.SpreadsheetID}, nil)
	if err != nil {
		return nil, fmt.Errorf("metadata cache key: %w", err)
	}

	names, err := cache.RememberIf(ctx, p.cache, key, MetadataTTL, fetch, func(names []string) bool {
		return len(names) > 0
	})
	if err != nil {
		return nil, &Error{
			Kind:    RemoteServiceFailure,
			Message: "Erro ao conectar com a planilha",
			Field:   p.opts.SpreadsheetID,
			Err:     err,
		}
	}
	if len(names) == 0 {
		return nil, &Error{
			Kind:    RemoteServiceFailure,
			Message: "Erro ao conectar com a planilha",
			Field:   p.opts.SpreadsheetID,
			Err:     fmt.Errorf("spreadsheet has no sheets"),
		}
	}
	return names, nil
}

func (p *Pipeline) configured() error {
	if p.gateway == nil || strings.TrimSpace(p.opts.SpreadsheetID) == "" {
		return &Error{Kind: ConfigurationMissing, Message: "spreadsheet is not configured", Field: "SHEET_ID"}
	}
	return nil
}

// validateRequest checks the normalized record and asset list.
func validateRequest(req Request) []FieldError {
	var fields []FieldError
	required := []struct{ field, label, value string }{
		{"nome", "Nome", req.User.Name},
		{"funcao", "Função", req.User.Role},
		{"departamento", "Departamento", req.User.Department},
		{"empresa", "Empresa", req.User.Company},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			fields = append(fields, FieldError{Field: r.field, Message: r.label + " é obrigatório"})
		}
	}

	for _, a := range req.Assets {
		if strings.TrimSpace(a.Identifier) != "" {
			return fields
		}
	}
	return append(fields, FieldError{Field: "patrimonio", Message: "Pelo menos um patrimônio é obrigatório"})
}
