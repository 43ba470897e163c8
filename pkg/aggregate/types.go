package aggregate

import (
	"github.com/basedosdados/mcp-basedosdados/pkg/rank"
	"github.com/basedosdados/mcp-basedosdados/pkg/warehouse"
)

// TableSummary is the per-table section of a dataset overview.
type TableSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`

	// ColumnCount is valid only when ColumnCountKnown is set. For very
	// large datasets only a bounded prefix of tables gets its columns
	// fetched; the rest report an unknown count rather than a partial one.
	ColumnCount      int  `json:"column_count"`
	ColumnCountKnown bool `json:"column_count_known"`

	SampleColumns      []string `json:"sample_columns,omitempty"`
	WarehouseReference string   `json:"warehouse_reference"`
}

// OverviewResult is the composed bundle for a dataset overview.
type OverviewResult struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Description   string   `json:"description,omitempty"`
	Organizations []string `json:"organizations,omitempty"`
	Themes        []string `json:"themes,omitempty"`
	Tags          []string `json:"tags,omitempty"`

	Tables       []TableSummary `json:"tables"`
	TotalTables  int            `json:"total_tables"`
	TotalColumns int            `json:"total_columns"`

	// NextStep tells the calling agent which operation drills further down.
	NextStep string `json:"next_step"`
}

// ColumnDetail is one column row in a table-details bundle.
type ColumnDetail struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// TableDetailsResult is the composed bundle for a single table.
type TableDetailsResult struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`

	DatasetID   string `json:"dataset_id"`
	DatasetName string `json:"dataset_name"`
	DatasetSlug string `json:"dataset_slug"`

	Columns            []ColumnDetail          `json:"columns"`
	WarehouseReference string                  `json:"warehouse_reference"`
	SampleQueries      []warehouse.SampleQuery `json:"sample_queries"`
}

// ExploreMode selects the depth of an explore call.
type ExploreMode string

// Explore modes.
const (
	ModeOverview ExploreMode = "overview"
	ModeDetailed ExploreMode = "detailed"
	ModeRelated  ExploreMode = "related"
)

// ValidMode reports whether mode is one of the explore modes.
func ValidMode(mode ExploreMode) bool {
	switch mode {
	case ModeOverview, ModeDetailed, ModeRelated:
		return true
	}
	return false
}

// ExploreResult is the composed bundle for a multi-level explore call.
// Exactly one of the section fields is populated, matching Mode.
type ExploreResult struct {
	Mode ExploreMode `json:"mode"`

	// Overview holds the trimmed (overview mode) or full (detailed mode)
	// dataset structure.
	Overview *OverviewResult `json:"overview,omitempty"`

	// TableDetails holds the drill-down when the explore target was a
	// table rather than a dataset.
	TableDetails *TableDetailsResult `json:"table_details,omitempty"`

	// Related holds ranked similar datasets for related mode.
	Related []rank.Candidate `json:"related,omitempty"`

	// HiddenTables counts tables trimmed away in overview mode.
	HiddenTables int `json:"hidden_tables,omitempty"`
}
