package handover

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"termo/api/internal/cache"
	"termo/api/internal/sheets"
)

var allSheets = []string{"CELULARES-TABLETS", "HEADSET", "NOTEBOOKS", "OUTROS"}

// brokenStore fails every read and write.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis: connection refused")
}
func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("redis: connection refused")
}
func (brokenStore) Delete(context.Context, string) (bool, error) { return false, nil }
func (brokenStore) Clear(context.Context, string) error          { return nil }
func (brokenStore) Exists(context.Context, string) (bool, error) { return false, nil }
func (brokenStore) Stats(context.Context) (cache.Stats, error)   { return cache.Stats{}, nil }
func (brokenStore) Close() error                                 { return nil }

func newTestResolver(gw sheets.Gateway, c *cache.Cache, limits Limits, logger *zap.Logger) *Resolver {
	return NewResolver(gw, c, nil, limits, "sheet-1", logger)
}

func TestResolveFoldsRowsIntoContent(t *testing.T) {
	gw := newFakeGateway(map[string][]sheets.Row{
		"CEL001": {phoneRow(4, "CEL001")},
	})
	r := newTestResolver(gw, nil, DefaultLimits(), nil)

	res, err := r.Resolve(context.Background(), []Asset{{Identifier: "CEL001", Observation: "trocar capa"}}, allSheets)
	require.NoError(t, err)

	require.Len(t, res.Items, 1)
	item := res.Items[0]
	assert.Equal(t, [3]string{"01", "Samsung Galaxy A54 Preto", "CEL001"}, item.Content)
	assert.Equal(t, "trocar capa", item.Observation)
	assert.Equal(t, "CEL001", item.Identifier)
	assert.Equal(t, 4, item.Row.Number)
	assert.Empty(t, res.NotFound)
}

func TestResolveReportsMissingAssets(t *testing.T) {
	gw := newFakeGateway(map[string][]sheets.Row{"CEL001": {phoneRow(2, "CEL001")}})
	r := newTestResolver(gw, nil, DefaultLimits(), nil)

	res, err := r.Resolve(context.Background(), []Asset{
		{Identifier: "NOTFOUND99"},
		{Identifier: "   "},
		{Identifier: "CEL001"},
	}, allSheets)
	require.NoError(t, err)

	assert.Equal(t, []string{"NOTFOUND99"}, res.NotFound)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, []string{"NOTFOUND99", "CEL001"}, gw.searches, "blank identifiers are never searched")
}

func TestResolveTruncatesBroadMatches(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	gw := newFakeGateway(map[string][]sheets.Row{"CEL": phoneRows(7, "CEL001")})
	r := newTestResolver(gw, nil, DefaultLimits(), zap.New(core))

	res, err := r.Resolve(context.Background(), []Asset{{Identifier: "CEL"}}, allSheets)
	require.NoError(t, err)

	assert.Len(t, res.Items, 5)
	entries := logs.FilterMessage("too many results for asset, truncating").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(7), entries[0].ContextMap()["results"])
}

func TestResolveDiscardsThinRows(t *testing.T) {
	gw := newFakeGateway(map[string][]sheets.Row{
		"HS1": {
			{Sheet: "HEADSET", Number: 2, Values: []string{"", "John", "", "HP", "ProBook", "", "SN123"}},
			{Sheet: "HEADSET", Number: 3, Values: []string{"John", "TI", "HS1"}},
			{Sheet: "CADEIRAS", Number: 4, Values: []string{"John", "TI", "x", "y", "HS1"}},
		},
	})
	r := newTestResolver(gw, nil, DefaultLimits(), nil)

	res, err := r.Resolve(context.Background(), []Asset{{Identifier: "HS1"}}, allSheets)
	require.NoError(t, err)

	require.Len(t, res.Items, 1, "rows with fewer than two projected fields are dropped")
	assert.Equal(t, [3]string{"01", "ProBook", "SN123"}, res.Items[0].Content)
	assert.Empty(t, res.NotFound, "an asset with matches is not reported missing")
}

func TestResolveStopsAtRowLimit(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	gw := newFakeGateway(map[string][]sheets.Row{
		"CEL001": phoneRows(3, "CEL001"),
		"CEL002": phoneRows(3, "CEL002"),
		"CEL003": phoneRows(3, "CEL003"),
	})
	limits := DefaultLimits()
	limits.MaxRows = 4
	r := newTestResolver(gw, nil, limits, zap.New(core))

	res, err := r.Resolve(context.Background(), []Asset{
		{Identifier: "CEL001"}, {Identifier: "CEL002"}, {Identifier: "CEL003"},
	}, allSheets)
	require.NoError(t, err)

	assert.Len(t, res.Items, 4)
	assert.Equal(t, "CEL002", res.Items[3].Identifier)
	assert.Equal(t, []string{"CEL001", "CEL002"}, gw.searches)
	assert.Equal(t, 1, logs.FilterMessage("row limit reached, ignoring remaining assets").Len())
}

func TestResolveCachesSearches(t *testing.T) {
	gw := newFakeGateway(map[string][]sheets.Row{"CEL001": {phoneRow(2, "CEL001")}})
	c := cache.NewMemory(time.Hour, nil)
	r := newTestResolver(gw, c, DefaultLimits(), nil)

	query := []Asset{{Identifier: "CEL001"}, {Identifier: "NOTFOUND99"}}
	for i := 0; i < 2; i++ {
		res, err := r.Resolve(context.Background(), query, allSheets)
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, []string{"NOTFOUND99"}, res.NotFound)
	}

	assert.Equal(t, []string{"CEL001", "NOTFOUND99", "NOTFOUND99"}, gw.searches,
		"found rows are served from cache, empty results are searched again")
}

func TestResolveFallsBackWhenCacheFails(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)
	gw := newFakeGateway(map[string][]sheets.Row{"CEL001": {phoneRow(2, "CEL001")}})
	c := cache.New(brokenStore{}, time.Hour, logger)
	r := newTestResolver(gw, c, DefaultLimits(), logger)

	res, err := r.Resolve(context.Background(), []Asset{{Identifier: "CEL001"}}, allSheets)
	require.NoError(t, err)

	assert.Len(t, res.Items, 1)
	assert.Equal(t, 1, gw.searchCount())
	assert.Equal(t, 1, logs.FilterMessage("cache unavailable, calling through").Len())
}

func TestResolveHonoursCancellation(t *testing.T) {
	r := newTestResolver(&cancellingGateway{fakeGateway: newFakeGateway(nil)}, nil, DefaultLimits(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, []Asset{{Identifier: "CEL001"}}, allSheets)
	assert.ErrorIs(t, err, context.Canceled)
}

type cancellingGateway struct {
	*fakeGateway
}

func (g *cancellingGateway) Search(ctx context.Context, _ string, _ []string) ([]sheets.Row, error) {
	return nil, ctx.Err()
}
