package catalog

// Relay envelope decoding. The upstream response graph (edges/node wrappers,
// nested connections) is unwrapped here at the client boundary; nothing above
// this package sees the raw GraphQL shape.

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type nameNode struct {
	Name string `json:"name"`
}

type nameConn struct {
	Edges []struct {
		Node nameNode `json:"node"`
	} `json:"edges"`
}

func (c nameConn) names() []string {
	out := make([]string, 0, len(c.Edges))
	for _, e := range c.Edges {
		out = append(out, e.Node.Name)
	}
	return out
}

type orgNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type orgConn struct {
	Edges []struct {
		Node orgNode `json:"node"`
	} `json:"edges"`
}

func (c orgConn) organizations() []Organization {
	out := make([]Organization, 0, len(c.Edges))
	for _, e := range c.Edges {
		out = append(out, Organization{
			ID:   CleanNodeID(e.Node.ID),
			Name: e.Node.Name,
			Slug: e.Node.Slug,
		})
	}
	return out
}

func (c orgConn) names() []string {
	out := make([]string, 0, len(c.Edges))
	for _, e := range c.Edges {
		out = append(out, e.Node.Name)
	}
	return out
}

// idConn carries column connections fetched only for counting.
type idConn struct {
	Edges []struct {
		Node struct {
			ID string `json:"id"`
		} `json:"node"`
	} `json:"edges"`
}

type searchTableNode struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Columns idConn `json:"columns"`
}

type searchDatasetNode struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Description   string   `json:"description"`
	Organizations orgConn  `json:"organizations"`
	Themes        nameConn `json:"themes"`
	Tags          nameConn `json:"tags"`
	Tables        struct {
		Edges []struct {
			Node searchTableNode `json:"node"`
		} `json:"edges"`
	} `json:"tables"`
}

type searchData struct {
	AllDataset struct {
		Edges []struct {
			Node searchDatasetNode `json:"node"`
		} `json:"edges"`
	} `json:"allDataset"`
}

func (d searchData) summaries() ([]DatasetSummary, error) {
	out := make([]DatasetSummary, 0, len(d.AllDataset.Edges))
	for _, e := range d.AllDataset.Edges {
		n := e.Node
		if n.ID == "" || n.Name == "" {
			return nil, &UpstreamError{Kind: UpstreamMalformed, Detail: "dataset node missing id or name"}
		}
		tables := make([]TableRef, 0, len(n.Tables.Edges))
		for _, te := range n.Tables.Edges {
			tables = append(tables, TableRef{
				ID:          te.Node.ID,
				Name:        te.Node.Name,
				Slug:        te.Node.Slug,
				ColumnCount: len(te.Node.Columns.Edges),
			})
		}
		out = append(out, DatasetSummary{
			ID:            n.ID,
			Slug:          n.Slug,
			Name:          n.Name,
			Description:   n.Description,
			Organizations: n.Organizations.names(),
			Themes:        n.Themes.names(),
			Tags:          n.Tags.names(),
			Tables:        tables,
		})
	}
	return out, nil
}

type datasetNode struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Description   string   `json:"description"`
	Organizations orgConn  `json:"organizations"`
	Themes        nameConn `json:"themes"`
	Tags          nameConn `json:"tags"`
}

type datasetData struct {
	AllDataset struct {
		Edges []struct {
			Node datasetNode `json:"node"`
		} `json:"edges"`
	} `json:"allDataset"`
}

type tableNodePage struct {
	ID     string `json:"id"`
	Tables struct {
		PageInfo pageInfo `json:"pageInfo"`
		Edges    []struct {
			Node struct {
				ID          string `json:"id"`
				Name        string `json:"name"`
				Slug        string `json:"slug"`
				Description string `json:"description"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"tables"`
}

type datasetTablesData struct {
	AllDataset struct {
		Edges []struct {
			Node tableNodePage `json:"node"`
		} `json:"edges"`
	} `json:"allDataset"`
}

type tableData struct {
	AllTable struct {
		Edges []struct {
			Node struct {
				ID          string `json:"id"`
				Name        string `json:"name"`
				Slug        string `json:"slug"`
				Description string `json:"description"`
				Dataset     struct {
					ID   string `json:"id"`
					Name string `json:"name"`
					Slug string `json:"slug"`
				} `json:"dataset"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"allTable"`
}

type tableColumnsData struct {
	AllTable struct {
		Edges []struct {
			Node struct {
				ID      string `json:"id"`
				Columns struct {
					PageInfo pageInfo `json:"pageInfo"`
					Edges    []struct {
						Node struct {
							ID           string   `json:"id"`
							Name         string   `json:"name"`
							Description  string   `json:"description"`
							BigQueryType nameNode `json:"bigqueryType"`
						} `json:"node"`
					} `json:"edges"`
				} `json:"columns"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"allTable"`
}
