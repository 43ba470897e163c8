// Package basedosdados exposes the public-catalog search and exploration
// operations as an MCP toolkit. It is the only layer that turns internal
// errors into user-facing text; upstream payloads never reach the caller.
package basedosdados

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/basedosdados/mcp-basedosdados/pkg/aggregate"
	"github.com/basedosdados/mcp-basedosdados/pkg/catalog"
	"github.com/basedosdados/mcp-basedosdados/pkg/rank"
	"github.com/basedosdados/mcp-basedosdados/pkg/textnorm"
	"github.com/basedosdados/mcp-basedosdados/pkg/warehouse"
)

// MCP tool names.
const (
	toolSearchDatasets     = "search_datasets"
	toolGetDatasetOverview = "get_dataset_overview"
	toolGetTableDetails    = "get_table_details"
	toolExploreData        = "explore_data"
)

// searchDatasetsInput defines the input schema for the search_datasets tool.
type searchDatasetsInput struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// datasetOverviewInput defines the input schema for get_dataset_overview.
type datasetOverviewInput struct {
	DatasetID string `json:"dataset_id"`
}

// tableDetailsInput defines the input schema for get_table_details.
type tableDetailsInput struct {
	TableID string `json:"table_id"`
}

// exploreDataInput defines the input schema for explore_data.
type exploreDataInput struct {
	TargetID string `json:"target_id"`
	Mode     string `json:"mode,omitempty"`
}

// Toolkit implements dataset search and exploration over the upstream
// metadata catalog.
type Toolkit struct {
	name       string
	client     aggregate.MetadataClient
	aggregator *aggregate.Aggregator
	weights    rank.Weights
	logger     *slog.Logger

	defaultLimit int
	maxLimit     int

	closer func() error
}

// New creates a toolkit backed by a real catalog client.
func New(name string, cfg Config) (*Toolkit, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("basedosdados toolkit config: %w", err)
	}

	client, err := catalog.New(cfg.catalogConfig())
	if err != nil {
		return nil, fmt.Errorf("creating catalog client: %w", err)
	}

	t := newToolkit(name, client, cfg)
	t.closer = client.Close
	return t, nil
}

// newToolkit wires a toolkit around any MetadataClient.
func newToolkit(name string, client aggregate.MetadataClient, cfg Config) *Toolkit {
	cfg = cfg.withDefaults()

	aggregator := aggregate.New(client, warehouse.NewBuilder(cfg.CatalogName), cfg.aggregateConfig())
	aggregator.SetWeights(cfg.Weights)

	return &Toolkit{
		name:         name,
		client:       client,
		aggregator:   aggregator,
		weights:      cfg.Weights,
		logger:       slog.Default().With("component", "basedosdados"),
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
	}
}

// Kind returns the toolkit kind.
func (*Toolkit) Kind() string {
	return "basedosdados"
}

// Name returns the toolkit instance name.
func (t *Toolkit) Name() string {
	return t.name
}

// RegisterTools registers the four catalog tools with the MCP server.
func (t *Toolkit) RegisterTools(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name: toolSearchDatasets,
		Description: "Searches the Base dos Dados public catalog for datasets matching a free-text query. " +
			"Handles Portuguese accents and institutional acronyms (IBGE, RAIS, INEP, ...) automatically, " +
			"so 'populacao' and 'população' find the same datasets. Results are ranked by relevance.",
	}, t.handleSearchDatasets)

	mcp.AddTool(s, &mcp.Tool{
		Name: toolGetDatasetOverview,
		Description: "Returns an overview of one dataset: description, organization, themes, and its tables " +
			"with column counts, sample column names, and warehouse references.",
	}, t.handleDatasetOverview)

	mcp.AddTool(s, &mcp.Tool{
		Name: toolGetTableDetails,
		Description: "Returns the full column list for one table (names, BigQuery types, descriptions), " +
			"its warehouse reference, and ready-to-run sample SQL queries.",
	}, t.handleTableDetails)

	mcp.AddTool(s, &mcp.Tool{
		Name: toolExploreData,
		Description: "Explores a dataset or table by ID. Modes: 'overview' (top tables only), " +
			"'detailed' (every table), 'related' (similar datasets in the catalog). " +
			"A table ID resolves to its full details regardless of mode.",
	}, t.handleExploreData)
}

// Tools returns the list of tool names provided by this toolkit.
func (*Toolkit) Tools() []string {
	return []string{
		toolSearchDatasets,
		toolGetDatasetOverview,
		toolGetTableDetails,
		toolExploreData,
	}
}

// Close releases the underlying catalog client.
func (t *Toolkit) Close() error {
	if t.closer != nil {
		return t.closer()
	}
	return nil
}

// handleSearchDatasets handles the search_datasets tool call.
func (t *Toolkit) handleSearchDatasets(ctx context.Context, _ *mcp.CallToolRequest, input searchDatasetsInput) (*mcp.CallToolResult, any, error) {
	limit, err := t.searchLimit(input.Limit)
	if err != nil {
		return errorResult(err.Error()), nil, nil //nolint:nilerr // MCP protocol: tool errors are returned in CallToolResult.IsError
	}

	summaries, err := t.client.Search(ctx, input.Query, limit)
	if err != nil {
		return t.operationError(toolSearchDatasets, err), nil, nil //nolint:nilerr // MCP protocol: tool errors are returned in CallToolResult.IsError
	}

	ranked := rank.Rank(textnorm.Normalize(input.Query), summaries, t.weights)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return textResult(formatSearchResults(input.Query, ranked)), nil, nil
}

// handleDatasetOverview handles the get_dataset_overview tool call.
func (t *Toolkit) handleDatasetOverview(ctx context.Context, _ *mcp.CallToolRequest, input datasetOverviewInput) (*mcp.CallToolResult, any, error) {
	if input.DatasetID == "" {
		return validationErrorResult("dataset_id", "must not be empty"), nil, nil //nolint:nilerr // MCP protocol: tool errors are returned in CallToolResult.IsError
	}

	overview, err := t.aggregator.DatasetOverview(ctx, input.DatasetID)
	if err != nil {
		return t.operationError(toolGetDatasetOverview, err), nil, nil //nolint:nilerr // MCP protocol: tool errors are returned in CallToolResult.IsError
	}
	return textResult(formatOverview(overview, 0)), nil, nil
}

// handleTableDetails handles the get_table_details tool call.
func (t *Toolkit) handleTableDetails(ctx context.Context, _ *mcp.CallToolRequest, input tableDetailsInput) (*mcp.CallToolResult, any, error) {
	if input.TableID == "" {
		return validationErrorResult("table_id", "must not be empty"), nil, nil //nolint:nilerr // MCP protocol: tool errors are returned in CallToolResult.IsError
	}

	details, err := t.aggregator.TableDetails(ctx, input.TableID)
	if err != nil {
		return t.operationError(toolGetTableDetails, err), nil, nil //nolint:nilerr // MCP protocol: tool errors are returned in CallToolResult.IsError
	}
	return textResult(formatTableDetails(details)), nil, nil
}

// handleExploreData handles the explore_data tool call.
func (t *Toolkit) handleExploreData(ctx context.Context, _ *mcp.CallToolRequest, input exploreDataInput) (*mcp.CallToolResult, any, error) {
	if input.TargetID == "" {
		return validationErrorResult("target_id", "must not be empty"), nil, nil //nolint:nilerr // MCP protocol: tool errors are returned in CallToolResult.IsError
	}

	mode := aggregate.ExploreMode(input.Mode)
	if input.Mode == "" {
		mode = aggregate.ModeOverview
	}
	if !aggregate.ValidMode(mode) {
		return validationErrorResult("mode", `must be one of "overview", "detailed", "related"`), nil, nil //nolint:nilerr // MCP protocol: tool errors are returned in CallToolResult.IsError
	}

	result, err := t.aggregator.Explore(ctx, input.TargetID, mode)
	if err != nil {
		return t.operationError(toolExploreData, err), nil, nil //nolint:nilerr // MCP protocol: tool errors are returned in CallToolResult.IsError
	}
	return textResult(formatExplore(result)), nil, nil
}

// searchLimit resolves the effective result limit for one search call.
func (t *Toolkit) searchLimit(requested int) (int, error) {
	switch {
	case requested < 0:
		return 0, &ValidationError{Field: "limit", Reason: "must be at least 1"}
	case requested == 0:
		return t.defaultLimit, nil
	case requested > t.maxLimit:
		return t.maxLimit, nil
	default:
		return requested, nil
	}
}

// operationError translates an internal error into the user-facing message
// for one failed operation. The message names the operation and the error
// kind only; full details go to the log.
func (t *Toolkit) operationError(operation string, err error) *mcp.CallToolResult {
	t.logger.Error("operation failed", "operation", operation, "error", err)

	var nf *aggregate.NotFoundError
	if errors.As(err, &nf) {
		return errorResult(fmt.Sprintf("%s failed: %s not found: %s", operation, nf.EntityKind, nf.ID))
	}

	var ue *catalog.UpstreamError
	if errors.As(err, &ue) {
		return errorResult(fmt.Sprintf("%s failed: upstream catalog error (%s)", operation, ue.Kind))
	}

	return errorResult(operation + " failed: internal error")
}

// validationErrorResult renders a rejected input as a tool error.
func validationErrorResult(field, reason string) *mcp.CallToolResult {
	return errorResult((&ValidationError{Field: field, Reason: reason}).Error())
}

// errorResult creates an error CallToolResult.
func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// textResult creates a success CallToolResult with one text block.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
