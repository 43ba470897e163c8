package catalog

import "strings"

// Organization groups datasets under a publishing institution.
type Organization struct {
	ID   string
	Name string
	Slug string
}

// Dataset is a catalog dataset. Tables are fetched separately via GetTables;
// they are not embedded here.
type Dataset struct {
	ID            string
	Slug          string
	Name          string
	Description   string
	Themes        []string
	Tags          []string
	Organizations []Organization
}

// Table is a catalog table within a dataset. Columns are fetched separately
// via GetColumns.
type Table struct {
	ID          string
	Slug        string
	Name        string
	Description string
	DatasetID   string
}

// Column is a single column of a catalog table.
type Column struct {
	ID           string
	Name         string
	BigQueryType string
	Description  string
	TableID      string
}

// TableRef is the trimmed table projection embedded in search results:
// enough to show structure and build a warehouse reference without a
// follow-up fetch.
type TableRef struct {
	ID          string
	Name        string
	Slug        string
	ColumnCount int
}

// DatasetSummary is the search-result projection of a dataset, including the
// table and column counts the upstream search response carries.
type DatasetSummary struct {
	ID            string
	Slug          string
	Name          string
	Description   string
	Organizations []string
	Themes        []string
	Tags          []string
	Tables        []TableRef
}

// TableCount returns the number of tables known for the dataset.
func (s *DatasetSummary) TableCount() int {
	return len(s.Tables)
}

// TotalColumns sums the column counts across all tables in the summary.
func (s *DatasetSummary) TotalColumns() int {
	total := 0
	for _, t := range s.Tables {
		total += t.ColumnCount
	}
	return total
}

// CleanNodeID reduces a Relay node ID such as "DatasetNode:d30222ad-..." to
// the bare UUID the upstream API expects as a query variable. IDs without a
// type prefix pass through unchanged.
func CleanNodeID(id string) string {
	if i := strings.IndexByte(id, ':'); i >= 0 {
		return id[i+1:]
	}
	return id
}
