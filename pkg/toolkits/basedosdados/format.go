package basedosdados

import (
	"fmt"
	"strings"

	"github.com/basedosdados/mcp-basedosdados/pkg/aggregate"
	"github.com/basedosdados/mcp-basedosdados/pkg/rank"
)

// descriptionLimit caps rendered descriptions so one verbose dataset does
// not drown the rest of a result list.
const descriptionLimit = 280

// formatSearchResults renders ranked candidates as a numbered list with
// stable field labels.
func formatSearchResults(query string, candidates []rank.Candidate) string {
	if len(candidates) == 0 {
		return fmt.Sprintf("No datasets found for %q.", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d dataset(s) for %q:\n", len(candidates), query)
	for i, c := range candidates {
		fmt.Fprintf(&b, "\n%d. %s (%s)\n", i+1, c.Name, c.Slug)
		fmt.Fprintf(&b, "   ID: %s\n", c.ID)
		if len(c.Organizations) > 0 {
			fmt.Fprintf(&b, "   Organization: %s\n", strings.Join(c.Organizations, ", "))
		}
		if len(c.Themes) > 0 {
			fmt.Fprintf(&b, "   Themes: %s\n", strings.Join(c.Themes, ", "))
		}
		if n := c.TableCount(); n > 0 {
			fmt.Fprintf(&b, "   Tables: %d\n", n)
		}
		fmt.Fprintf(&b, "   Relevance: %.1f", c.Score)
		if len(c.MatchReasons) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(c.MatchReasons, "; "))
		}
		b.WriteString("\n")
		if c.Description != "" {
			fmt.Fprintf(&b, "   Description: %s\n", truncate(c.Description, descriptionLimit))
		}
	}
	b.WriteString("\nUse get_dataset_overview with a dataset ID to inspect its tables.")
	return b.String()
}

// formatOverview renders a dataset overview bundle. hiddenTables > 0 notes
// how many tables were trimmed from the listing.
func formatOverview(o *aggregate.OverviewResult, hiddenTables int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset: %s (%s)\n", o.Name, o.Slug)
	fmt.Fprintf(&b, "ID: %s\n", o.ID)
	if len(o.Organizations) > 0 {
		fmt.Fprintf(&b, "Organization: %s\n", strings.Join(o.Organizations, ", "))
	}
	if len(o.Themes) > 0 {
		fmt.Fprintf(&b, "Themes: %s\n", strings.Join(o.Themes, ", "))
	}
	if len(o.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(o.Tags, ", "))
	}
	if o.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", truncate(o.Description, descriptionLimit))
	}
	fmt.Fprintf(&b, "Tables: %d (%d columns counted)\n", o.TotalTables, o.TotalColumns)

	for i, table := range o.Tables {
		fmt.Fprintf(&b, "\n%d. %s (%s)\n", i+1, table.Name, table.Slug)
		fmt.Fprintf(&b, "   ID: %s\n", table.ID)
		fmt.Fprintf(&b, "   Warehouse: %s\n", table.WarehouseReference)
		if table.ColumnCountKnown {
			fmt.Fprintf(&b, "   Columns: %d", table.ColumnCount)
			if len(table.SampleColumns) > 0 {
				fmt.Fprintf(&b, " (e.g. %s)", strings.Join(table.SampleColumns, ", "))
			}
			b.WriteString("\n")
		} else {
			b.WriteString("   Columns: not counted\n")
		}
		if table.Description != "" {
			fmt.Fprintf(&b, "   Description: %s\n", truncate(table.Description, descriptionLimit))
		}
	}
	if hiddenTables > 0 {
		fmt.Fprintf(&b, "\n... and %d more table(s). Use explore_data with mode 'detailed' to list them all.\n", hiddenTables)
	}

	fmt.Fprintf(&b, "\n%s", o.NextStep)
	return b.String()
}

// formatTableDetails renders the full drill-down bundle for one table.
func formatTableDetails(d *aggregate.TableDetailsResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table: %s (%s)\n", d.Name, d.Slug)
	fmt.Fprintf(&b, "ID: %s\n", d.ID)
	fmt.Fprintf(&b, "Dataset: %s (%s)\n", d.DatasetName, d.DatasetSlug)
	fmt.Fprintf(&b, "Warehouse: %s\n", d.WarehouseReference)
	if d.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", truncate(d.Description, descriptionLimit))
	}

	if len(d.Columns) == 0 {
		b.WriteString("\nColumns: none listed upstream.\n")
	} else {
		fmt.Fprintf(&b, "\nColumns (%d):\n", len(d.Columns))
		for _, col := range d.Columns {
			fmt.Fprintf(&b, "- %s", col.Name)
			if col.Type != "" {
				fmt.Fprintf(&b, " [%s]", col.Type)
			}
			if col.Description != "" {
				fmt.Fprintf(&b, ": %s", truncate(col.Description, descriptionLimit))
			}
			b.WriteString("\n")
		}
	}

	if len(d.SampleQueries) > 0 {
		b.WriteString("\nSample queries:\n")
		for _, q := range d.SampleQueries {
			fmt.Fprintf(&b, "\n-- %s\n%s\n", q.Label, q.SQL)
		}
	}
	return b.String()
}

// formatExplore renders an explore bundle according to its resolved shape.
func formatExplore(r *aggregate.ExploreResult) string {
	switch {
	case r.TableDetails != nil:
		return formatTableDetails(r.TableDetails)
	case r.Mode == aggregate.ModeRelated:
		return formatRelated(r.Related)
	case r.Overview != nil:
		return formatOverview(r.Overview, r.HiddenTables)
	default:
		return "Nothing to show."
	}
}

// formatRelated renders the related-datasets list.
func formatRelated(related []rank.Candidate) string {
	if len(related) == 0 {
		return "No related datasets found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Related datasets (%d):\n", len(related))
	for i, c := range related {
		fmt.Fprintf(&b, "\n%d. %s (%s)\n", i+1, c.Name, c.Slug)
		fmt.Fprintf(&b, "   ID: %s\n", c.ID)
		if len(c.Organizations) > 0 {
			fmt.Fprintf(&b, "   Organization: %s\n", strings.Join(c.Organizations, ", "))
		}
	}
	return b.String()
}

// truncate shortens s to at most limit runes, appending an ellipsis when
// anything was cut.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimRight(string(runes[:limit]), " ") + "..."
}
