// Package aggregate composes catalog fetches (dataset → tables → columns)
// into self-sufficient result bundles. Each call owns its fetches and holds
// no state across invocations; sub-fetches fan out with bounded concurrency
// and the composed output always follows upstream order.
package aggregate

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/basedosdados/mcp-basedosdados/pkg/catalog"
	"github.com/basedosdados/mcp-basedosdados/pkg/rank"
	"github.com/basedosdados/mcp-basedosdados/pkg/textnorm"
	"github.com/basedosdados/mcp-basedosdados/pkg/warehouse"
)

// MetadataClient is the catalog surface the aggregator consumes.
type MetadataClient interface {
	Search(ctx context.Context, query string, limit int) ([]catalog.DatasetSummary, error)
	GetDataset(ctx context.Context, id string) (*catalog.Dataset, error)
	GetTables(ctx context.Context, datasetID string) ([]catalog.Table, error)
	GetTable(ctx context.Context, id string) (*catalog.Table, *catalog.Dataset, error)
	GetColumns(ctx context.Context, tableID string) ([]catalog.Column, error)
}

// Verify the real client satisfies the surface.
var _ MetadataClient = (*catalog.Client)(nil)

const (
	// nextStepGuidance is appended to every overview so a calling agent
	// knows which operation drills into a single table.
	nextStepGuidance = "Use get_table_details with a table ID for the full column list, types, and sample SQL queries."

	// defaultMaxConcurrency bounds in-flight column-count fetches.
	defaultMaxConcurrency = 4

	// defaultMaxCountedTables bounds how many tables of a very large
	// dataset get their column counts fetched during an overview.
	defaultMaxCountedTables = 20

	// sampleColumnLimit caps sample column names per table summary.
	sampleColumnLimit = 5

	// topTables is the table cutoff for overview-mode explore.
	topTables = 3

	// relatedLimit caps related-mode results.
	relatedLimit = 10
)

// Config tunes the aggregator's fan-out behavior.
type Config struct {
	MaxConcurrency   int `yaml:"max_concurrency"`
	MaxCountedTables int `yaml:"max_counted_tables"`
}

// Aggregator builds result bundles from catalog fetches.
type Aggregator struct {
	client  MetadataClient
	refs    *warehouse.Builder
	weights rank.Weights

	maxConcurrency   int
	maxCountedTables int
}

// New creates an Aggregator.
func New(client MetadataClient, refs *warehouse.Builder, cfg Config) *Aggregator {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaultMaxConcurrency
	}
	if cfg.MaxCountedTables <= 0 {
		cfg.MaxCountedTables = defaultMaxCountedTables
	}
	return &Aggregator{
		client:           client,
		refs:             refs,
		maxConcurrency:   cfg.MaxConcurrency,
		maxCountedTables: cfg.MaxCountedTables,
	}
}

// SetWeights overrides the ranking weights used by related-mode explore.
func (a *Aggregator) SetWeights(w rank.Weights) {
	a.weights = w
}

// DatasetOverview fetches a dataset, its full table list, and column counts
// for a bounded prefix of tables, composing them into one bundle. A missing
// dataset fails with NotFoundError; any failed sub-fetch fails the whole
// operation rather than returning a bundle with silently missing sections.
func (a *Aggregator) DatasetOverview(ctx context.Context, datasetID string) (*OverviewResult, error) {
	dataset, err := a.client.GetDataset(ctx, datasetID)
	if err != nil {
		return nil, mapLookupErr(err, "dataset", datasetID)
	}

	tables, err := a.client.GetTables(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("fetching tables for dataset %s: %w", datasetID, err)
	}

	summaries, totalColumns, err := a.summarizeTables(ctx, dataset.Slug, tables)
	if err != nil {
		return nil, err
	}

	return &OverviewResult{
		ID:            dataset.ID,
		Name:          dataset.Name,
		Slug:          dataset.Slug,
		Description:   dataset.Description,
		Organizations: organizationNames(dataset),
		Themes:        dataset.Themes,
		Tags:          dataset.Tags,
		Tables:        summaries,
		TotalTables:   len(tables),
		TotalColumns:  totalColumns,
		NextStep:      nextStepGuidance,
	}, nil
}

// summarizeTables builds per-table summaries, fetching column lists for the
// first maxCountedTables tables with bounded concurrency. Results land in
// position-indexed slots so the output order matches the table fetch order
// no matter which concurrent fetch finishes first.
func (a *Aggregator) summarizeTables(ctx context.Context, datasetSlug string, tables []catalog.Table) ([]TableSummary, int, error) {
	counted := min(len(tables), a.maxCountedTables)
	columnsByTable := make([][]catalog.Column, counted)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxConcurrency)
	for i := 0; i < counted; i++ {
		g.Go(func() error {
			columns, err := a.client.GetColumns(gctx, tables[i].ID)
			if err != nil {
				return fmt.Errorf("fetching columns for table %s: %w", tables[i].ID, err)
			}
			columnsByTable[i] = columns
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	summaries := make([]TableSummary, len(tables))
	totalColumns := 0
	for i, table := range tables {
		summary := TableSummary{
			ID:                 table.ID,
			Name:               table.Name,
			Slug:               table.Slug,
			Description:        table.Description,
			WarehouseReference: a.refs.Reference(datasetSlug, table.Slug),
		}
		if i < counted {
			columns := columnsByTable[i]
			summary.ColumnCount = len(columns)
			summary.ColumnCountKnown = true
			summary.SampleColumns = sampleColumnNames(columns)
			totalColumns += len(columns)
		}
		summaries[i] = summary
	}
	return summaries, totalColumns, nil
}

// TableDetails fetches a table and all of its columns and composes the full
// drill-down bundle including sample SQL.
func (a *Aggregator) TableDetails(ctx context.Context, tableID string) (*TableDetailsResult, error) {
	table, parent, err := a.client.GetTable(ctx, tableID)
	if err != nil {
		return nil, mapLookupErr(err, "table", tableID)
	}

	columns, err := a.client.GetColumns(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("fetching columns for table %s: %w", tableID, err)
	}

	details := make([]ColumnDetail, len(columns))
	for i, col := range columns {
		details[i] = ColumnDetail{
			Name:        col.Name,
			Type:        col.BigQueryType,
			Description: col.Description,
		}
	}

	return &TableDetailsResult{
		ID:                 table.ID,
		Name:               table.Name,
		Slug:               table.Slug,
		Description:        table.Description,
		DatasetID:          parent.ID,
		DatasetName:        parent.Name,
		DatasetSlug:        parent.Slug,
		Columns:            details,
		WarehouseReference: a.refs.Reference(parent.Slug, table.Slug),
		SampleQueries:      a.refs.SampleQueries(parent.Slug, table.Slug, columns),
	}, nil
}

// Explore is the multi-level exploration entry point. Dataset targets honor
// all three modes; a target that turns out to be a table resolves to its
// details regardless of mode.
func (a *Aggregator) Explore(ctx context.Context, targetID string, mode ExploreMode) (*ExploreResult, error) {
	if !ValidMode(mode) {
		return nil, fmt.Errorf("invalid explore mode %q", mode)
	}

	dataset, err := a.client.GetDataset(ctx, targetID)
	switch {
	case err == nil:
		return a.exploreDataset(ctx, dataset, mode)
	case errors.Is(err, catalog.ErrNotFound):
		// Fall through: the target may be a table ID.
	default:
		return nil, err
	}

	details, err := a.TableDetails(ctx, targetID)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return nil, &NotFoundError{EntityKind: "dataset or table", ID: targetID}
		}
		return nil, err
	}
	return &ExploreResult{Mode: mode, TableDetails: details}, nil
}

func (a *Aggregator) exploreDataset(ctx context.Context, dataset *catalog.Dataset, mode ExploreMode) (*ExploreResult, error) {
	switch mode {
	case ModeRelated:
		return a.exploreRelated(ctx, dataset)
	case ModeDetailed, ModeOverview:
		overview, err := a.DatasetOverview(ctx, dataset.ID)
		if err != nil {
			return nil, err
		}
		result := &ExploreResult{Mode: mode, Overview: overview}
		if mode == ModeOverview && len(overview.Tables) > topTables {
			result.HiddenTables = len(overview.Tables) - topTables
			overview.Tables = overview.Tables[:topTables]
		}
		return result, nil
	default:
		return nil, fmt.Errorf("invalid explore mode %q", mode)
	}
}

// exploreRelated re-invokes search with the dataset's name (or first theme
// when the name yields nothing beyond the dataset itself) and drops the
// target from the ranked results.
func (a *Aggregator) exploreRelated(ctx context.Context, dataset *catalog.Dataset) (*ExploreResult, error) {
	related, err := a.searchExcluding(ctx, dataset.Name, dataset.ID)
	if err != nil {
		return nil, err
	}
	if len(related) == 0 && len(dataset.Themes) > 0 {
		related, err = a.searchExcluding(ctx, dataset.Themes[0], dataset.ID)
		if err != nil {
			return nil, err
		}
	}
	return &ExploreResult{Mode: ModeRelated, Related: related}, nil
}

func (a *Aggregator) searchExcluding(ctx context.Context, query, excludeID string) ([]rank.Candidate, error) {
	summaries, err := a.client.Search(ctx, query, relatedLimit+1)
	if err != nil {
		return nil, fmt.Errorf("searching related datasets: %w", err)
	}

	kept := summaries[:0]
	for _, s := range summaries {
		if s.ID != excludeID {
			kept = append(kept, s)
		}
	}

	ranked := rank.Rank(textnorm.Normalize(query), kept, a.weights)
	if len(ranked) > relatedLimit {
		ranked = ranked[:relatedLimit]
	}
	return ranked, nil
}

// mapLookupErr converts the client's not-found sentinel into a
// NotFoundError naming the missing entity; everything else passes through.
func mapLookupErr(err error, entityKind, id string) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return &NotFoundError{EntityKind: entityKind, ID: id}
	}
	return err
}

func organizationNames(dataset *catalog.Dataset) []string {
	names := make([]string, 0, len(dataset.Organizations))
	for _, org := range dataset.Organizations {
		names = append(names, org.Name)
	}
	return names
}

func sampleColumnNames(columns []catalog.Column) []string {
	names := make([]string, 0, min(len(columns), sampleColumnLimit))
	for _, col := range columns[:min(len(columns), sampleColumnLimit)] {
		names = append(names, col.Name)
	}
	return names
}
