// Package warehouse derives BigQuery table references and ready-to-run
// sample SQL from catalog slugs. Everything here is deterministic over its
// inputs; no I/O, no caching.
package warehouse

import (
	"fmt"
	"strings"

	"github.com/basedosdados/mcp-basedosdados/pkg/catalog"
)

// DefaultCatalog is the GCP project that hosts the public warehouse tables.
const DefaultCatalog = "basedosdados"

// previewColumns caps how many columns the row-preview query names before
// eliding the rest.
const previewColumns = 5

// previewLimit is the row bound on generated preview queries.
const previewLimit = 100

// Builder formats warehouse references for a fixed catalog name.
type Builder struct {
	catalog string
}

// NewBuilder creates a Builder. An empty catalog name falls back to
// DefaultCatalog.
func NewBuilder(catalogName string) *Builder {
	if catalogName == "" {
		catalogName = DefaultCatalog
	}
	return &Builder{catalog: catalogName}
}

// Reference returns the fully-qualified warehouse identifier
// catalog.dataset_slug.table_slug. Slugs are the only stable handle for
// this; nothing else from the entities participates.
func (b *Builder) Reference(datasetSlug, tableSlug string) string {
	return fmt.Sprintf("%s.%s.%s", b.catalog, datasetSlug, tableSlug)
}

// SampleQuery is one generated SQL statement with a short label describing
// what it is for.
type SampleQuery struct {
	Label string `json:"label"`
	SQL   string `json:"sql"`
}

// SampleQueries generates executable SQL against a table: a row preview with
// a LIMIT bound and a schema-inspection query. When column metadata is
// available the preview names real columns so the statement runs as-is.
func (b *Builder) SampleQueries(datasetSlug, tableSlug string, columns []catalog.Column) []SampleQuery {
	ref := b.Reference(datasetSlug, tableSlug)

	selectList := "*"
	if len(columns) > 0 {
		names := make([]string, 0, previewColumns)
		for _, col := range columns[:min(len(columns), previewColumns)] {
			names = append(names, col.Name)
		}
		selectList = strings.Join(names, ", ")
	}

	queries := []SampleQuery{
		{
			Label: "Row preview",
			SQL:   fmt.Sprintf("SELECT %s\nFROM `%s`\nLIMIT %d", selectList, ref, previewLimit),
		},
		{
			Label: "Full row sample",
			SQL:   fmt.Sprintf("SELECT *\nFROM `%s`\nLIMIT 10", ref),
		},
		{
			Label: "Schema inspection",
			SQL: fmt.Sprintf(
				"SELECT column_name, data_type, description\nFROM `%s.%s`.INFORMATION_SCHEMA.COLUMN_FIELD_PATHS\nWHERE table_name = '%s'",
				b.catalog, datasetSlug, tableSlug),
		},
	}
	return queries
}
