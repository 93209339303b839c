package handover

import (
	"context"

	"go.uber.org/zap"

	"termo/api/internal/cache"
	"termo/api/internal/logging"
	"termo/api/internal/sheets"
)

// Spreadsheet columns rewritten for every handed-over row.
const (
	OwnerColumn      = "A"
	DepartmentColumn = "B"
)

// MutationReport counts what happened to the resolved rows. A row is Mutated
// when at least one of its two writes succeeded.
type MutationReport struct {
	Mutated int `json:"mutated"`
	Partial int `json:"partial"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Mutator records the new owner and department of resolved rows.
type Mutator struct {
	gateway      sheets.Gateway
	cache        *cache.Cache
	maxMutations int
	logger       *zap.Logger
}

func NewMutator(gateway sheets.Gateway, c *cache.Cache, limits Limits, logger *zap.Logger) *Mutator {
	return &Mutator{
		gateway:      gateway,
		cache:        c,
		maxMutations: limits.withDefaults().MaxMutations,
		logger:       logging.OrNop(logger).Named("mutation"),
	}
}

// Apply writes owner and department for each item's source row. Write
// failures are logged and counted, never returned. Once the mutation ceiling
// is reached the remaining rows are skipped. After any successful write the
// cached asset searches are invalidated.
func (m *Mutator) Apply(ctx context.Context, user UserRecord, items []ResolvedItem) (MutationReport, error) {
	var report MutationReport

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if report.Mutated >= m.maxMutations {
			report.Skipped = len(items) - i
			m.logger.Warn("mutation limit reached, skipping remaining rows",
				zap.Int("limit", m.maxMutations),
				zap.Int("skipped", report.Skipped))
			break
		}

		row := item.Row
		ownerOK := m.write(ctx, item, OwnerColumn, user.Name)
		departmentOK := m.write(ctx, item, DepartmentColumn, user.Department)

		switch {
		case ownerOK && departmentOK:
			report.Mutated++
			m.logger.Info("owner updated",
				zap.String("identifier", item.Identifier),
				zap.String("sheet", row.Sheet),
				zap.Int("row", row.Number))
		case ownerOK || departmentOK:
			report.Mutated++
			report.Partial++
		default:
			report.Failed++
		}
	}

	if report.Mutated > 0 && m.cache != nil {
		if err := m.cache.Clear(ctx, NamespaceSearch); err != nil {
			m.logger.Warn("search cache invalidation failed", zap.Error(err))
		}
	}
	return report, nil
}

func (m *Mutator) write(ctx context.Context, item ResolvedItem, column, value string) bool {
	row := item.Row
	if err := m.gateway.WriteCell(ctx, row.Sheet, column, row.Number, value); err != nil {
		m.logger.Warn("spreadsheet write failed",
			zap.String("identifier", item.Identifier),
			zap.String("address", row.Address(column)),
			zap.Error(err))
		return false
	}
	return true
}
