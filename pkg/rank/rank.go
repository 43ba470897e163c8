// Package rank orders dataset search candidates against a normalized query
// using an additive multi-signal heuristic. The absolute weights are tuning
// data, not contracts; only the relative ordering between signal classes is
// load-bearing: exact match > acronym match > prose match > no match.
package rank

import (
	"sort"
	"strings"

	"github.com/basedosdados/mcp-basedosdados/pkg/catalog"
	"github.com/basedosdados/mcp-basedosdados/pkg/textnorm"
)

// Weights holds the scoring constants. Zero-value fields are replaced by the
// defaults in Rank, so a caller can override a single weight without
// restating the rest.
type Weights struct {
	// ExactSlug scores a query that equals the dataset slug exactly.
	ExactSlug float64 `yaml:"exact_slug"`
	// ExactName scores a query that equals the dataset name exactly.
	ExactName float64 `yaml:"exact_name"`
	// Acronym scores a known institutional acronym whose expansion matches
	// the dataset. Strictly below the exact weights and strictly above any
	// prose-match total.
	Acronym float64 `yaml:"acronym"`
	// NameContains scores the query appearing inside the dataset name.
	NameContains float64 `yaml:"name_contains"`
	// WordPosition is the maximum positional bonus; a match in the first
	// word of the name earns it in full, later words progressively less.
	WordPosition float64 `yaml:"word_position"`
	// DescriptionContains scores the query appearing in the description.
	DescriptionContains float64 `yaml:"description_contains"`
	// OfficialOrg is the additive bonus for designated official government
	// sources.
	OfficialOrg float64 `yaml:"official_org"`
}

// DefaultWeights mirror the relative ordering the catalog search was tuned
// for. Exact 200 > acronym 150 > best possible prose total (50+20+15 = 85).
var DefaultWeights = Weights{
	ExactSlug:           200,
	ExactName:           180,
	Acronym:             150,
	NameContains:        50,
	WordPosition:        20,
	DescriptionContains: 15,
	OfficialOrg:         10,
}

// officialOrgs marks publishers whose datasets get the official-source
// bonus over equally-matching candidates.
var officialOrgs = []string{
	"ibge",
	"ipea",
	"inep",
	"ministério",
	"secretaria",
	"agência nacional",
	"tribunal superior eleitoral",
}

// Candidate is a scored projection of a dataset summary. It exists only for
// the duration of one search call.
type Candidate struct {
	catalog.DatasetSummary

	Score        float64
	MatchReasons []string
}

// Rank scores candidates against a normalized query and returns them in
// descending score order. The sort is stable: candidates with equal scores
// keep their upstream order. An empty query yields zero scores and the
// original order.
func Rank(normalizedQuery string, summaries []catalog.DatasetSummary, weights Weights) []Candidate {
	weights = weights.withDefaults()

	candidates := make([]Candidate, len(summaries))
	for i, s := range summaries {
		candidates[i] = score(normalizedQuery, s, weights)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

func (w Weights) withDefaults() Weights {
	d := DefaultWeights
	if w.ExactSlug == 0 {
		w.ExactSlug = d.ExactSlug
	}
	if w.ExactName == 0 {
		w.ExactName = d.ExactName
	}
	if w.Acronym == 0 {
		w.Acronym = d.Acronym
	}
	if w.NameContains == 0 {
		w.NameContains = d.NameContains
	}
	if w.WordPosition == 0 {
		w.WordPosition = d.WordPosition
	}
	if w.DescriptionContains == 0 {
		w.DescriptionContains = d.DescriptionContains
	}
	if w.OfficialOrg == 0 {
		w.OfficialOrg = d.OfficialOrg
	}
	return w
}

// score computes the additive relevance of one candidate. Pure function over
// the candidate and the fixed lookup tables.
func score(query string, s catalog.DatasetSummary, w Weights) Candidate {
	c := Candidate{DatasetSummary: s}
	if query == "" {
		return c
	}

	name := textnorm.Normalize(s.Name)
	slug := strings.ToLower(s.Slug)
	description := textnorm.Normalize(s.Description)

	// Slugs are stored unaccented with underscores; compare them both raw
	// and as a normalized phrase so "br ibge populacao" still matches the
	// slug br_ibge_populacao.
	slugAsPhrase := textnorm.Normalize(strings.ReplaceAll(slug, "_", " "))

	switch {
	case query == slug || query == slugAsPhrase:
		c.add(w.ExactSlug, "exact slug match")
	case query == name:
		c.add(w.ExactName, "exact name match")
	case acronymMatches(query, name, description):
		c.add(w.Acronym, "acronym match: "+query)
	default:
		c.scoreProse(query, name, description, w)
	}

	for _, org := range s.Organizations {
		if isOfficialOrg(org) {
			c.add(w.OfficialOrg, "official source: "+org)
			break
		}
	}

	return c
}

// scoreProse applies the substring and word-position signals.
func (c *Candidate) scoreProse(query, name, description string, w Weights) {
	if idx := wordIndex(name, query); idx >= 0 {
		c.add(w.NameContains, "name contains query")
		// Earlier words contribute more; the bonus decays per word and
		// bottoms out at a quarter of the full positional weight.
		bonus := w.WordPosition - float64(idx)*2
		if floor := w.WordPosition / 4; bonus < floor {
			bonus = floor
		}
		c.add(bonus, "match position in name")
	}
	if strings.Contains(description, query) {
		c.add(w.DescriptionContains, "description contains query")
	}
}

// acronymMatches reports whether query is a known acronym whose expansion
// overlaps the candidate's name or description, or whose upper-case form
// appears verbatim in the name. A dataset merely containing the acronym
// letters inside an unrelated longer word does not match.
func acronymMatches(query, name, description string) bool {
	full, ok := textnorm.AcronymExpansion(query)
	if !ok {
		return false
	}
	if containsWord(name, query) {
		return true
	}
	for _, w := range strings.Split(full, " ") {
		if len([]rune(w)) <= 2 {
			continue
		}
		if containsWord(name, w) || containsWord(description, w) {
			return true
		}
	}
	return false
}

// containsWord reports whether text contains query as a complete word. The
// acronym signal requires whole-word matches so "ibge" inside an unrelated
// longer word never counts as an acronym hit.
func containsWord(text, query string) bool {
	for _, w := range strings.Split(text, " ") {
		if w == query {
			return true
		}
	}
	return false
}

// wordIndex returns the word position of the first word in text containing
// query as a whole word or leading substring, or -1 when absent. Matching on
// word boundaries keeps "ibge" from matching inside unrelated longer words.
func wordIndex(text, query string) int {
	if text == "" || query == "" {
		return -1
	}
	queryWords := strings.Split(query, " ")
	first := queryWords[0]
	for i, w := range strings.Split(text, " ") {
		if w == first || (len(queryWords) == 1 && strings.HasPrefix(w, first) && len(first) >= 4) {
			return i
		}
	}
	return -1
}

func (c *Candidate) add(points float64, reason string) {
	c.Score += points
	c.MatchReasons = append(c.MatchReasons, reason)
}

func isOfficialOrg(org string) bool {
	normalized := textnorm.Normalize(org)
	for _, official := range officialOrgs {
		if strings.Contains(normalized, official) {
			return true
		}
	}
	return false
}
