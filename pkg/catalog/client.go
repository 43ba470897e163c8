// Package catalog provides a typed client for the Base dos Dados GraphQL
// metadata API: dataset search plus dataset, table, and column lookups with
// full pagination and a fixed upstream error taxonomy.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// pageSize is the page size used when draining nested connections.
	pageSize = 100

	// retryDelay is the fixed pause before the single timeout retry. This is
	// a best-effort client, not a resilience layer; there is no backoff.
	retryDelay = 500 * time.Millisecond
)

// Config holds catalog client configuration.
type Config struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Client issues queries against the metadata API. It holds no per-call state;
// a single Client is safe for concurrent use.
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a catalog client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("catalog endpoint is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
		logger:     slog.Default().With("component", "catalog"),
	}, nil
}

// Close releases idle upstream connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// GetDataset fetches one dataset without its table collection. Returns
// ErrNotFound when the catalog has no dataset with the given ID.
func (c *Client) GetDataset(ctx context.Context, id string) (*Dataset, error) {
	var data datasetData
	if err := c.execute(ctx, datasetQuery, map[string]any{"id": CleanNodeID(id)}, &data); err != nil {
		return nil, err
	}
	if len(data.AllDataset.Edges) == 0 {
		return nil, ErrNotFound
	}

	n := data.AllDataset.Edges[0].Node
	if n.ID == "" || n.Name == "" {
		return nil, &UpstreamError{Kind: UpstreamMalformed, Detail: "dataset node missing id or name"}
	}
	return &Dataset{
		ID:            n.ID,
		Slug:          n.Slug,
		Name:          n.Name,
		Description:   n.Description,
		Themes:        n.Themes.names(),
		Tags:          n.Tags.names(),
		Organizations: n.Organizations.organizations(),
	}, nil
}

// GetTables fetches every table of a dataset, draining the paginated table
// connection so the returned length is a true total count. Order follows the
// upstream return order. Returns ErrNotFound for an unknown dataset.
func (c *Client) GetTables(ctx context.Context, datasetID string) ([]Table, error) {
	cleanID := CleanNodeID(datasetID)
	tables := []Table{}
	after := ""

	for {
		vars := map[string]any{"id": cleanID, "first": pageSize}
		if after != "" {
			vars["after"] = after
		}

		var data datasetTablesData
		if err := c.execute(ctx, datasetTablesQuery, vars, &data); err != nil {
			return nil, err
		}
		if len(data.AllDataset.Edges) == 0 {
			return nil, ErrNotFound
		}

		conn := data.AllDataset.Edges[0].Node.Tables
		for _, e := range conn.Edges {
			if e.Node.ID == "" {
				return nil, &UpstreamError{Kind: UpstreamMalformed, Detail: "table node missing id"}
			}
			tables = append(tables, Table{
				ID:          e.Node.ID,
				Slug:        e.Node.Slug,
				Name:        e.Node.Name,
				Description: e.Node.Description,
				DatasetID:   datasetID,
			})
		}

		if !conn.PageInfo.HasNextPage {
			return tables, nil
		}
		after = conn.PageInfo.EndCursor
	}
}

// GetTable fetches one table with its parent dataset reference. Returns
// ErrNotFound for an unknown table.
func (c *Client) GetTable(ctx context.Context, id string) (*Table, *Dataset, error) {
	var data tableData
	if err := c.execute(ctx, tableQuery, map[string]any{"id": CleanNodeID(id)}, &data); err != nil {
		return nil, nil, err
	}
	if len(data.AllTable.Edges) == 0 {
		return nil, nil, ErrNotFound
	}

	n := data.AllTable.Edges[0].Node
	if n.ID == "" || n.Name == "" {
		return nil, nil, &UpstreamError{Kind: UpstreamMalformed, Detail: "table node missing id or name"}
	}
	table := &Table{
		ID:          n.ID,
		Slug:        n.Slug,
		Name:        n.Name,
		Description: n.Description,
		DatasetID:   n.Dataset.ID,
	}
	parent := &Dataset{
		ID:   n.Dataset.ID,
		Name: n.Dataset.Name,
		Slug: n.Dataset.Slug,
	}
	return table, parent, nil
}

// GetColumns fetches every column of a table, draining the paginated column
// connection. Order follows the upstream return order. Returns ErrNotFound
// for an unknown table.
func (c *Client) GetColumns(ctx context.Context, tableID string) ([]Column, error) {
	cleanID := CleanNodeID(tableID)
	columns := []Column{}
	after := ""

	for {
		vars := map[string]any{"id": cleanID, "first": pageSize}
		if after != "" {
			vars["after"] = after
		}

		var data tableColumnsData
		if err := c.execute(ctx, tableColumnsQuery, vars, &data); err != nil {
			return nil, err
		}
		if len(data.AllTable.Edges) == 0 {
			return nil, ErrNotFound
		}

		conn := data.AllTable.Edges[0].Node.Columns
		for _, e := range conn.Edges {
			if e.Node.ID == "" {
				return nil, &UpstreamError{Kind: UpstreamMalformed, Detail: "column node missing id"}
			}
			columns = append(columns, Column{
				ID:           e.Node.ID,
				Name:         e.Node.Name,
				BigQueryType: e.Node.BigQueryType.Name,
				Description:  e.Node.Description,
				TableID:      tableID,
			})
		}

		if !conn.PageInfo.HasNextPage {
			return columns, nil
		}
		after = conn.PageInfo.EndCursor
	}
}

// graphQLRequest is the POST body for every upstream call.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// execute issues one GraphQL request and decodes the data payload into out.
// A timed-out attempt is retried exactly once after a fixed delay; all other
// faults fail immediately with a mapped UpstreamError.
func (c *Client) execute(ctx context.Context, query string, variables map[string]any, out any) error {
	requestID := uuid.NewString()

	err := c.executeOnce(ctx, requestID, query, variables, out)
	if err == nil {
		return nil
	}
	if UpstreamKind(err) != UpstreamTimeout || ctx.Err() != nil {
		return err
	}

	c.logger.Debug("retrying timed-out request", "request_id", requestID)
	select {
	case <-ctx.Done():
		return err
	case <-time.After(retryDelay):
	}
	return c.executeOnce(ctx, requestID, query, variables, out)
}

func (c *Client) executeOnce(ctx context.Context, requestID, query string, variables map[string]any, out any) error {
	if variables == nil {
		variables = map[string]any{}
	}
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return &UpstreamError{Kind: UpstreamMalformed, Detail: "encoding request", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return &UpstreamError{Kind: UpstreamUnknown, Detail: "building request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return mapTransportError(err)
	}
	defer resp.Body.Close() //nolint:errcheck // nothing to do with a close error on a read body

	c.logger.Debug("upstream request",
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return mapStatusError(resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return mapTransportError(err)
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return &UpstreamError{Kind: UpstreamMalformed, Detail: "decoding response", Err: err}
	}
	if len(envelope.Errors) > 0 {
		return &UpstreamError{Kind: UpstreamMalformed, Detail: envelope.Errors[0].Message}
	}
	if resp.StatusCode == http.StatusBadRequest {
		return mapStatusError(resp.StatusCode)
	}
	if envelope.Data == nil {
		return &UpstreamError{Kind: UpstreamMalformed, Detail: "response has no data"}
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return &UpstreamError{Kind: UpstreamMalformed, Detail: "decoding data", Err: err}
	}
	return nil
}

// mapTransportError maps network-level failures onto the taxonomy.
func mapTransportError(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &UpstreamError{Kind: UpstreamTimeout, Detail: "request deadline exceeded", Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &UpstreamError{Kind: UpstreamTimeout, Detail: "network timeout", Err: err}
	default:
		return &UpstreamError{Kind: UpstreamUnknown, Detail: "network error", Err: err}
	}
}

// mapStatusError maps non-success HTTP statuses onto the taxonomy.
func mapStatusError(status int) error {
	switch {
	case status == http.StatusNotFound:
		return &UpstreamError{Kind: UpstreamNotFound, Detail: fmt.Sprintf("HTTP %d", status)}
	case status == http.StatusTooManyRequests:
		return &UpstreamError{Kind: UpstreamRateLimited, Detail: fmt.Sprintf("HTTP %d", status)}
	case status == http.StatusBadRequest:
		return &UpstreamError{Kind: UpstreamMalformed, Detail: fmt.Sprintf("HTTP %d", status)}
	case status == http.StatusGatewayTimeout:
		return &UpstreamError{Kind: UpstreamTimeout, Detail: fmt.Sprintf("HTTP %d", status)}
	default:
		return &UpstreamError{Kind: UpstreamUnknown, Detail: fmt.Sprintf("HTTP %d", status)}
	}
}
