package warehouse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basedosdados/mcp-basedosdados/pkg/catalog"
)

func TestReference(t *testing.T) {
	b := NewBuilder("")
	assert.Equal(t, "basedosdados.br_ibge_populacao.municipio",
		b.Reference("br_ibge_populacao", "municipio"))
}

func TestReference_CustomCatalog(t *testing.T) {
	b := NewBuilder("staging-project")
	assert.Equal(t, "staging-project.br_ibge_populacao.municipio",
		b.Reference("br_ibge_populacao", "municipio"))
}

func TestSampleQueries_WithColumns(t *testing.T) {
	b := NewBuilder("")
	columns := []catalog.Column{
		{Name: "ano", BigQueryType: "INT64"},
		{Name: "sigla_uf", BigQueryType: "STRING"},
		{Name: "populacao", BigQueryType: "INT64"},
	}

	queries := b.SampleQueries("br_ibge_populacao", "municipio", columns)
	require.Len(t, queries, 3)

	preview := queries[0]
	assert.Contains(t, preview.SQL, "SELECT ano, sigla_uf, populacao")
	assert.Contains(t, preview.SQL, "`basedosdados.br_ibge_populacao.municipio`")
	assert.Contains(t, preview.SQL, "LIMIT 100")
	assert.NotContains(t, preview.SQL, "*", "with known columns the preview must name them")

	schema := queries[2]
	assert.Contains(t, schema.SQL, "INFORMATION_SCHEMA.COLUMN_FIELD_PATHS")
	assert.Contains(t, schema.SQL, "table_name = 'municipio'")
}

func TestSampleQueries_PreviewCapsColumnList(t *testing.T) {
	b := NewBuilder("")
	columns := make([]catalog.Column, 8)
	for i := range columns {
		columns[i] = catalog.Column{Name: string(rune('a' + i))}
	}

	queries := b.SampleQueries("ds", "tb", columns)
	preview := queries[0]
	assert.True(t, strings.HasPrefix(preview.SQL, "SELECT a, b, c, d, e\n"),
		"preview names at most previewColumns columns: %s", preview.SQL)
}

func TestSampleQueries_NoColumns(t *testing.T) {
	b := NewBuilder("")
	queries := b.SampleQueries("br_ibge_populacao", "municipio", nil)
	require.Len(t, queries, 3)

	assert.Contains(t, queries[0].SQL, "SELECT *")
	assert.Contains(t, queries[0].SQL, "LIMIT 100")
}

func TestSampleQueries_AlwaysRowBounded(t *testing.T) {
	b := NewBuilder("")
	for _, q := range b.SampleQueries("ds", "tb", nil)[:2] {
		assert.Contains(t, q.SQL, "LIMIT", "preview queries must carry a row bound")
	}
}
