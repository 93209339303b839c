package handover

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"termo/api/internal/cache"
	"termo/api/internal/logging"
	"termo/api/internal/sheets"
)

// Resolution is the outcome of resolving an asset query.
type Resolution struct {
	Items    []ResolvedItem
	NotFound []string
}

// Resolver looks assets up in the spreadsheet and folds matching rows into
// document items.
type Resolver struct {
	gateway       sheets.Gateway
	cache         *cache.Cache
	projections   sheets.Projections
	limits        Limits
	spreadsheetID string
	logger        *zap.Logger
}

func NewResolver(gateway sheets.Gateway, c *cache.Cache, projections sheets.Projections, limits Limits, spreadsheetID string, logger *zap.Logger) *Resolver {
	if projections == nil {
		projections = sheets.DefaultProjections()
	}
	return &Resolver{
		gateway:       gateway,
		cache:         c,
		projections:   projections,
		limits:        limits.withDefaults(),
		spreadsheetID: spreadsheetID,
		logger:        logging.OrNop(logger).Named("resolver"),
	}
}

// Resolve processes assets in order. Missing assets are reported in
// NotFound and never fail the call; only context cancellation does.
func (r *Resolver) Resolve(ctx context.Context, assets []Asset, sheetNames []string) (Resolution, error) {
	var res Resolution

lookup:
	for _, asset := range assets {
		id := strings.TrimSpace(asset.Identifier)
		if id == "" {
			continue
		}
		if len(res.Items) >= r.limits.MaxRows {
			r.logger.Warn("row limit reached, ignoring remaining assets",
				zap.Int("limit", r.limits.MaxRows),
				zap.String("identifier", id))
			break lookup
		}

		rows, err := r.search(ctx, id, sheetNames)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			r.logger.Warn("asset search failed", zap.String("identifier", id), zap.Error(err))
			rows = nil
		}

		if len(rows) == 0 {
			r.logger.Warn("asset not found", zap.String("identifier", id))
			res.NotFound = append(res.NotFound, id)
			continue
		}

		if len(rows) > r.limits.MaxResultsPerAsset {
			r.logger.Warn("too many results for asset, truncating",
				zap.String("identifier", id),
				zap.Int("results", len(rows)),
				zap.Int("limit", r.limits.MaxResultsPerAsset))
			rows = rows[:r.limits.MaxResultsPerAsset]
		}

		for _, row := range rows {
			if len(res.Items) >= r.limits.MaxRows {
				r.logger.Warn("row limit reached, ignoring remaining assets",
					zap.Int("limit", r.limits.MaxRows),
					zap.String("identifier", id))
				break lookup
			}
			item, ok := r.fold(id, asset.Observation, row)
			if ok {
				res.Items = append(res.Items, item)
			}
		}
	}

	return res, nil
}

func (r *Resolver) search(ctx context.Context, id string, sheetNames []string) ([]sheets.Row, error) {
	fetch := func(ctx context.Context) ([]sheets.Row, error) {
		return r.gateway.Search(ctx, id, sheetNames)
	}

	key, err := cache.Key(NamespaceSearch, []any{r.spreadsheetID, id, sheetNames}, nil)
	if err != nil {
		r.logger.Warn("cache key failed, searching directly", zap.String("identifier", id), zap.Error(err))
		return fetch(ctx)
	}
	return cache.RememberIf(ctx, r.cache, key, SearchTTL, fetch, func(rows []sheets.Row) bool {
		return len(rows) > 0
	})
}

// fold turns one spreadsheet row into an item. Rows that project to fewer
// than two fields are discarded.
func (r *Resolver) fold(id, observation string, row sheets.Row) (ResolvedItem, bool) {
	cleaned := sheets.CleanRow(row.Values)
	owner := ""
	if len(cleaned) > 0 {
		owner = cleaned[0]
	}

	fields, known := r.projections.Project(row.Sheet, cleaned)
	if !known {
		r.logger.Info("no column layout for sheet", zap.String("sheet", row.Sheet))
	}
	if len(fields) < 2 {
		r.logger.Debug("row discarded, not enough fields",
			zap.String("identifier", id),
			zap.String("sheet", row.Sheet),
			zap.Int("row", row.Number),
			zap.Int("fields", len(fields)))
		return ResolvedItem{}, false
	}

	last := len(fields) - 1
	item := ResolvedItem{
		Content:     [3]string{"01", strings.Join(fields[:last], " "), fields[last]},
		Observation: observation,
		Identifier:  id,
		Row:         row,
	}
	r.logger.Info("asset row resolved",
		zap.String("identifier", id),
		zap.String("sheet", row.Sheet),
		zap.Int("row", row.Number),
		zap.String("previous_owner", owner))
	return item, true
}
