package catalog

// GraphQL query documents for the Base dos Dados metadata API. The API is
// Django-GraphQL generated: filter arguments use single-underscore suffixes
// (name_Icontains, not name__icontains), and node IDs must be bare UUIDs.

// searchByDescriptionQuery is the primary search: a case-insensitive contains
// match on dataset descriptions, carrying enough nested structure for counts
// and sample warehouse references.
const searchByDescriptionQuery = `
query SearchDatasetsByDescription($query: String, $first: Int) {
    allDataset(description_Icontains: $query, first: $first) {
        edges {
            node {
                id
                name
                slug
                description
                organizations { edges { node { id name slug } } }
                themes { edges { node { name } } }
                tags { edges { node { name } } }
                tables {
                    edges {
                        node {
                            id
                            name
                            slug
                            columns { edges { node { id } } }
                        }
                    }
                }
            }
        }
    }
}`

// searchByNameQuery is the secondary search over dataset names.
const searchByNameQuery = `
query SearchDatasetsByName($query: String, $first: Int) {
    allDataset(name_Icontains: $query, first: $first) {
        edges {
            node {
                id
                name
                slug
                description
                organizations { edges { node { id name slug } } }
                themes { edges { node { name } } }
                tags { edges { node { name } } }
                tables {
                    edges {
                        node {
                            id
                            name
                            slug
                            columns { edges { node { id } } }
                        }
                    }
                }
            }
        }
    }
}`

// searchBySlugQuery matches a dataset slug exactly. Used for acronym queries,
// where the slug frequently is the acronym.
const searchBySlugQuery = `
query SearchDatasetsBySlug($slug: String, $first: Int) {
    allDataset(slug: $slug, first: $first) {
        edges {
            node {
                id
                name
                slug
                description
                organizations { edges { node { id name slug } } }
                themes { edges { node { name } } }
                tags { edges { node { name } } }
                tables {
                    edges {
                        node {
                            id
                            name
                            slug
                            columns { edges { node { id } } }
                        }
                    }
                }
            }
        }
    }
}`

// datasetQuery fetches a single dataset without its table collection.
const datasetQuery = `
query GetDataset($id: ID!) {
    allDataset(id: $id, first: 1) {
        edges {
            node {
                id
                name
                slug
                description
                organizations { edges { node { id name slug } } }
                themes { edges { node { name } } }
                tags { edges { node { name } } }
            }
        }
    }
}`

// datasetTablesQuery pages through a dataset's table collection. The page
// cursor walks the nested tables connection so the full table list (and thus
// a true total count) is always drained.
const datasetTablesQuery = `
query GetDatasetTables($id: ID!, $first: Int, $after: String) {
    allDataset(id: $id, first: 1) {
        edges {
            node {
                id
                tables(first: $first, after: $after) {
                    pageInfo { hasNextPage endCursor }
                    edges {
                        node {
                            id
                            name
                            slug
                            description
                        }
                    }
                }
            }
        }
    }
}`

// tableQuery fetches a single table with its parent dataset reference.
const tableQuery = `
query GetTable($id: ID!) {
    allTable(id: $id, first: 1) {
        edges {
            node {
                id
                name
                slug
                description
                dataset { id name slug }
            }
        }
    }
}`

// tableColumnsQuery pages through a table's column collection.
const tableColumnsQuery = `
query GetTableColumns($id: ID!, $first: Int, $after: String) {
    allTable(id: $id, first: 1) {
        edges {
            node {
                id
                columns(first: $first, after: $after) {
                    pageInfo { hasNextPage endCursor }
                    edges {
                        node {
                            id
                            name
                            description
                            bigqueryType { name }
                        }
                    }
                }
            }
        }
    }
}`
