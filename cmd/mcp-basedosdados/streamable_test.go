package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	mcpserver "github.com/basedosdados/mcp-basedosdados/internal/server"
	"github.com/basedosdados/mcp-basedosdados/pkg/platform"
)

const (
	fmtConnectFailed  = "Connect failed: %v"
	fmtCallToolFailed = "CallTool failed: %v"
)

// searchResultJSON is what the fake upstream returns for any dataset search.
const searchResultJSON = `{
	"allDataset": {
		"edges": [
			{"node": {
				"id": "DatasetNode:d1",
				"name": "População brasileira",
				"slug": "br_ibge_populacao",
				"description": "População dos municípios brasileiros",
				"organizations": {"edges": [{"node": {"id": "OrgNode:o1", "name": "IBGE", "slug": "ibge"}}]},
				"themes": {"edges": [{"node": {"name": "Demografia"}}]},
				"tags": {"edges": []},
				"tables": {"edges": [{"node": {
					"id": "TableNode:t1",
					"name": "Município",
					"slug": "municipio",
					"columns": {"edges": [{"node": {"id": "ColumnNode:c1"}}]}
				}}]}
			}}
		]
	}
}`

// newFakeUpstream serves the minimal GraphQL surface one search needs.
func newFakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(req.Query, "description_Icontains") {
			fmt.Fprintf(w, `{"data": %s}`, searchResultJSON)
			return
		}
		fmt.Fprint(w, `{"data": {"allDataset": {"edges": []}}}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestStreamableHTTP_SearchDatasets exercises the full path: MCP client over
// the Streamable HTTP transport → server → toolkit → GraphQL upstream.
func TestStreamableHTTP_SearchDatasets(t *testing.T) {
	ctx := context.Background()
	upstream := newFakeUpstream(t)

	cfg := platform.DefaultConfig()
	cfg.Server.Name = "test-catalog"
	cfg.Catalog.Endpoint = upstream.URL

	server, toolkit, err := mcpserver.New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = toolkit.Close() }()

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
	httpServer := httptest.NewServer(handler)
	defer httpServer.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: httpServer.URL}, nil)
	if err != nil {
		t.Fatalf(fmtConnectFailed, err)
	}
	defer func() { _ = session.Close() }()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "search_datasets",
		Arguments: map[string]any{"query": "populacao"},
	})
	if err != nil {
		t.Fatalf(fmtCallToolFailed, err)
	}
	if result.IsError {
		t.Fatalf("tool returned error: %v", result.Content)
	}

	if len(result.Content) == 0 {
		t.Fatal("empty content")
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	if !strings.Contains(tc.Text, "br_ibge_populacao") {
		t.Errorf("result missing expected dataset slug, got:\n%s", tc.Text)
	}
	if !strings.Contains(tc.Text, "IBGE") {
		t.Errorf("result missing organization, got:\n%s", tc.Text)
	}
}

// TestStreamableHTTP_ListTools verifies all four catalog tools register.
func TestStreamableHTTP_ListTools(t *testing.T) {
	ctx := context.Background()
	upstream := newFakeUpstream(t)

	cfg := platform.DefaultConfig()
	cfg.Catalog.Endpoint = upstream.URL

	server, toolkit, err := mcpserver.New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = toolkit.Close() }()

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
	httpServer := httptest.NewServer(handler)
	defer httpServer.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: httpServer.URL}, nil)
	if err != nil {
		t.Fatalf(fmtConnectFailed, err)
	}
	defer func() { _ = session.Close() }()

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}

	want := map[string]bool{
		"search_datasets":      false,
		"get_dataset_overview": false,
		"get_table_details":    false,
		"explore_data":         false,
	}
	for _, tool := range tools.Tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("tool %s not registered", name)
		}
	}
}
