package basedosdados

import (
	"context"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basedosdados/mcp-basedosdados/pkg/catalog"
)

// stubClient is a MetadataClient with pluggable behavior per call.
type stubClient struct {
	searchFn     func(ctx context.Context, query string, limit int) ([]catalog.DatasetSummary, error)
	getDatasetFn func(ctx context.Context, id string) (*catalog.Dataset, error)
	getTablesFn  func(ctx context.Context, datasetID string) ([]catalog.Table, error)
	getTableFn   func(ctx context.Context, id string) (*catalog.Table, *catalog.Dataset, error)
	getColumnsFn func(ctx context.Context, tableID string) ([]catalog.Column, error)
}

func (s *stubClient) Search(ctx context.Context, query string, limit int) ([]catalog.DatasetSummary, error) {
	if s.searchFn == nil {
		return []catalog.DatasetSummary{}, nil
	}
	return s.searchFn(ctx, query, limit)
}

func (s *stubClient) GetDataset(ctx context.Context, id string) (*catalog.Dataset, error) {
	if s.getDatasetFn == nil {
		return nil, catalog.ErrNotFound
	}
	return s.getDatasetFn(ctx, id)
}

func (s *stubClient) GetTables(ctx context.Context, datasetID string) ([]catalog.Table, error) {
	if s.getTablesFn == nil {
		return nil, catalog.ErrNotFound
	}
	return s.getTablesFn(ctx, datasetID)
}

func (s *stubClient) GetTable(ctx context.Context, id string) (*catalog.Table, *catalog.Dataset, error) {
	if s.getTableFn == nil {
		return nil, nil, catalog.ErrNotFound
	}
	return s.getTableFn(ctx, id)
}

func (s *stubClient) GetColumns(ctx context.Context, tableID string) ([]catalog.Column, error) {
	if s.getColumnsFn == nil {
		return []catalog.Column{}, nil
	}
	return s.getColumnsFn(ctx, tableID)
}

func newStubToolkit(client *stubClient) *Toolkit {
	return newToolkit("catalog", client, Config{Endpoint: "http://example.invalid/graphql"})
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := New("catalog", Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{Endpoint: "http://api/graphql"}, ""},
		{"missing endpoint", Config{}, "endpoint is required"},
		{"negative default limit", Config{Endpoint: "http://api", DefaultLimit: -1}, "default_limit"},
		{"default exceeds max", Config{Endpoint: "http://api", DefaultLimit: 20, MaxLimit: 10}, "exceeds max_limit"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestToolkitIdentity(t *testing.T) {
	tk := newStubToolkit(&stubClient{})
	assert.Equal(t, "basedosdados", tk.Kind())
	assert.Equal(t, "catalog", tk.Name())
	assert.Equal(t, []string{
		"search_datasets",
		"get_dataset_overview",
		"get_table_details",
		"explore_data",
	}, tk.Tools())
	assert.NoError(t, tk.Close())
}

func TestRegisterTools(t *testing.T) {
	tk := newStubToolkit(&stubClient{})
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "0.0.0"}, nil)
	tk.RegisterTools(server)
}

func TestSearchLimit(t *testing.T) {
	tk := newStubToolkit(&stubClient{})

	tests := []struct {
		name      string
		requested int
		want      int
		wantErr   bool
	}{
		{"omitted uses default", 0, defaultSearchLimit, false},
		{"negative rejected", -1, 0, true},
		{"explicit honored", 7, 7, false},
		{"capped at max", maxSearchLimit + 10, maxSearchLimit, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tk.searchLimit(tc.requested)
			if tc.wantErr {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, "limit", ve.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSearchDatasets_RanksExactSlugFirst(t *testing.T) {
	client := &stubClient{
		searchFn: func(_ context.Context, _ string, _ int) ([]catalog.DatasetSummary, error) {
			return []catalog.DatasetSummary{
				{ID: "DatasetNode:1", Slug: "br_ms_populacao_carceraria", Name: "População carcerária"},
				{ID: "DatasetNode:2", Slug: "populacao", Name: "População do Brasil", Organizations: []string{"IBGE"}},
			}, nil
		},
	}
	tk := newStubToolkit(client)

	result, _, err := tk.handleSearchDatasets(context.Background(), nil, searchDatasetsInput{Query: "populacao"})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, `Found 2 dataset(s) for "populacao"`)
	first := strings.Index(text, "populacao)")
	carceraria := strings.Index(text, "br_ms_populacao_carceraria")
	assert.Less(t, first, carceraria, "exact slug match lists first")
	assert.Contains(t, text, "exact slug match")
}

func TestSearchDatasets_EmptyQuery(t *testing.T) {
	client := &stubClient{
		searchFn: func(_ context.Context, query string, limit int) ([]catalog.DatasetSummary, error) {
			assert.Equal(t, "", query)
			summaries := make([]catalog.DatasetSummary, limit)
			for i := range summaries {
				summaries[i] = catalog.DatasetSummary{ID: "DatasetNode:x", Slug: "s", Name: "n"}
			}
			return summaries, nil
		},
	}
	tk := newStubToolkit(client)

	result, _, err := tk.handleSearchDatasets(context.Background(), nil, searchDatasetsInput{Query: "", Limit: 5})
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Found 5 dataset(s)")
}

func TestSearchDatasets_NoResults(t *testing.T) {
	tk := newStubToolkit(&stubClient{})

	result, _, err := tk.handleSearchDatasets(context.Background(), nil, searchDatasetsInput{Query: "zzz"})
	require.NoError(t, err)
	require.False(t, result.IsError, "no results is a valid outcome, not a tool error")
	assert.Contains(t, resultText(t, result), "No datasets found")
}

func TestSearchDatasets_NegativeLimit(t *testing.T) {
	tk := newStubToolkit(&stubClient{})

	result, _, err := tk.handleSearchDatasets(context.Background(), nil, searchDatasetsInput{Query: "x", Limit: -3})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "invalid limit")
}

func TestSearchDatasets_UpstreamErrorHidesPayload(t *testing.T) {
	client := &stubClient{
		searchFn: func(_ context.Context, _ string, _ int) ([]catalog.DatasetSummary, error) {
			return nil, &catalog.UpstreamError{Kind: catalog.UpstreamRateLimited, Detail: "django traceback: secret internals"}
		},
	}
	tk := newStubToolkit(client)

	result, _, err := tk.handleSearchDatasets(context.Background(), nil, searchDatasetsInput{Query: "x"})
	require.NoError(t, err)
	require.True(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "search_datasets failed")
	assert.Contains(t, text, "rate_limited")
	assert.NotContains(t, text, "traceback", "raw upstream payloads never reach the caller")
}

func TestDatasetOverview_NotFoundMessage(t *testing.T) {
	tk := newStubToolkit(&stubClient{})

	result, _, err := tk.handleDatasetOverview(context.Background(), nil, datasetOverviewInput{DatasetID: "DatasetNode:abc"})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Equal(t, "get_dataset_overview failed: dataset not found: DatasetNode:abc", resultText(t, result))
}

func TestDatasetOverview_Success(t *testing.T) {
	client := &stubClient{
		getDatasetFn: func(_ context.Context, _ string) (*catalog.Dataset, error) {
			return &catalog.Dataset{
				ID:            "DatasetNode:1",
				Slug:          "br_ibge_populacao",
				Name:          "População",
				Organizations: []catalog.Organization{{Name: "IBGE"}},
			}, nil
		},
		getTablesFn: func(_ context.Context, _ string) ([]catalog.Table, error) {
			return []catalog.Table{{ID: "TableNode:1", Name: "Município", Slug: "municipio"}}, nil
		},
		getColumnsFn: func(_ context.Context, _ string) ([]catalog.Column, error) {
			return []catalog.Column{{Name: "ano", BigQueryType: "INT64"}}, nil
		},
	}
	tk := newStubToolkit(client)

	result, _, err := tk.handleDatasetOverview(context.Background(), nil, datasetOverviewInput{DatasetID: "DatasetNode:1"})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Dataset: População (br_ibge_populacao)")
	assert.Contains(t, text, "basedosdados.br_ibge_populacao.municipio")
	assert.Contains(t, text, "get_table_details")
}

func TestDatasetOverview_EmptyID(t *testing.T) {
	tk := newStubToolkit(&stubClient{})

	result, _, err := tk.handleDatasetOverview(context.Background(), nil, datasetOverviewInput{})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "invalid dataset_id")
}

func TestTableDetails_Success(t *testing.T) {
	client := &stubClient{
		getTableFn: func(_ context.Context, _ string) (*catalog.Table, *catalog.Dataset, error) {
			return &catalog.Table{ID: "TableNode:1", Name: "Município", Slug: "municipio"},
				&catalog.Dataset{ID: "DatasetNode:1", Name: "População", Slug: "br_ibge_populacao"}, nil
		},
		getColumnsFn: func(_ context.Context, _ string) ([]catalog.Column, error) {
			return []catalog.Column{{Name: "ano", BigQueryType: "INT64", Description: "Ano"}}, nil
		},
	}
	tk := newStubToolkit(client)

	result, _, err := tk.handleTableDetails(context.Background(), nil, tableDetailsInput{TableID: "TableNode:1"})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "- ano [INT64]: Ano")
	assert.Contains(t, text, "LIMIT")
	assert.Contains(t, text, "basedosdados.br_ibge_populacao.municipio")
}

func TestTableDetails_NotFoundMessage(t *testing.T) {
	tk := newStubToolkit(&stubClient{})

	result, _, err := tk.handleTableDetails(context.Background(), nil, tableDetailsInput{TableID: "TableNode:zzz"})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Equal(t, "get_table_details failed: table not found: TableNode:zzz", resultText(t, result))
}

func TestExploreData_DefaultsToOverview(t *testing.T) {
	client := &stubClient{
		getDatasetFn: func(_ context.Context, _ string) (*catalog.Dataset, error) {
			return &catalog.Dataset{ID: "DatasetNode:1", Slug: "br_ibge_populacao", Name: "População"}, nil
		},
		getTablesFn: func(_ context.Context, _ string) ([]catalog.Table, error) {
			return nil, nil
		},
	}
	tk := newStubToolkit(client)

	result, _, err := tk.handleExploreData(context.Background(), nil, exploreDataInput{TargetID: "DatasetNode:1"})
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Dataset: População")
}

func TestExploreData_InvalidMode(t *testing.T) {
	tk := newStubToolkit(&stubClient{})

	result, _, err := tk.handleExploreData(context.Background(), nil, exploreDataInput{TargetID: "DatasetNode:1", Mode: "bogus"})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "invalid mode")
}

func TestExploreData_UnknownTarget(t *testing.T) {
	tk := newStubToolkit(&stubClient{})

	result, _, err := tk.handleExploreData(context.Background(), nil, exploreDataInput{TargetID: "DatasetNode:zzz"})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Equal(t, "explore_data failed: dataset or table not found: DatasetNode:zzz", resultText(t, result))
}
