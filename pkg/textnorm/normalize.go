// Package textnorm canonicalizes free-text search queries for the Base dos
// Dados catalog. Users routinely type Portuguese without accents ("populacao",
// "saude") while the catalog stores accented forms, and institutional acronyms
// (IBGE, RAIS) stand in for full organization names. The package maps both
// cases onto search inputs the upstream API can match.
package textnorm

import (
	"regexp"
	"strings"
)

// accentForms maps unaccented Portuguese words to their accented canonical
// forms. Only words that actually occur in catalog names and descriptions are
// listed; anything else passes through unchanged.
var accentForms = map[string]string{
	"populacao":     "população",
	"educacao":      "educação",
	"saude":         "saúde",
	"inflacao":      "inflação",
	"violencia":     "violência",
	"ciencia":       "ciência",
	"experiencia":   "experiência",
	"situacao":      "situação",
	"informacao":    "informação",
	"comunicacao":   "comunicação",
	"administracao": "administração",
	"organizacao":   "organização",
	"producao":      "produção",
	"construcao":    "construção",
	"operacao":      "operação",
	"participacao":  "participação",
	"avaliacao":     "avaliação",
	"aplicacao":     "aplicação",
	"investigacao":  "investigação",
	"observacao":    "observação",
	"conservacao":   "conservação",
	"preservacao":   "preservação",
	"transformacao": "transformação",
	"democratica":   "democrática",
	"economica":     "econômica",
	"publica":       "pública",
	"politica":      "política",
	"historica":     "histórica",
	"geografica":    "geográfica",
	"demografica":   "demográfica",
	"academica":     "acadêmica",
	"medica":        "médica",
	"tecnica":       "técnica",
	"biologica":     "biológica",
	"matematica":    "matemática",
	"familia":       "família",
	"historia":      "história",
	"memoria":       "memória",
	"area":          "área",
	"materia":       "matéria",
	"territorio":    "território",
	"relatorio":     "relatório",
	"brasilia":      "brasília",
	"agua":          "água",
	"orgao":         "órgão",
	"orgaos":        "órgãos",
	"opcao":         "opção",
	"opcoes":        "opções",
	"acao":          "ação",
	"acoes":         "ações",
	"regiao":        "região",
	"regioes":       "regiões",
	"municipio":     "município",
	"municipios":    "municípios",
}

// acronyms maps Brazilian institutional acronyms to the full names they expand
// to in catalog metadata. Matched case-insensitively.
var acronyms = map[string]string{
	"ibge":   "instituto brasileiro de geografia e estatística",
	"rais":   "relação anual de informações sociais",
	"ipea":   "instituto de pesquisa econômica aplicada",
	"inep":   "instituto nacional de estudos e pesquisas educacionais",
	"tse":    "tribunal superior eleitoral",
	"sus":    "sistema único de saúde",
	"pnad":   "pesquisa nacional por amostra de domicílios",
	"pof":    "pesquisa de orçamentos familiares",
	"censo":  "censo demográfico",
	"caged":  "cadastro geral de empregados e desempregados",
	"sinasc": "sistema de informações sobre nascidos vivos",
	"sim":    "sistema de informações sobre mortalidade",
}

// stopWords are dropped when deriving fallback keywords; they carry no search
// value against the catalog's contains-style filters.
var stopWords = map[string]struct{}{
	"de": {}, "da": {}, "do": {}, "das": {}, "dos": {},
	"e": {}, "em": {}, "na": {}, "no": {}, "nas": {}, "nos": {},
	"para": {}, "por": {}, "com": {}, "sem": {}, "sobre": {}, "entre": {},
	"the": {}, "and": {}, "or": {}, "of": {}, "in": {}, "to": {},
}

var (
	// allowedChars keeps letters (including accented Portuguese forms),
	// digits, spaces, underscores, and hyphens. Everything else breaks the
	// upstream Django-GraphQL contains filters.
	allowedChars = regexp.MustCompile(`[^\p{L}\p{N}\s_\-]`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

// maxKeywords caps fallback keywords so a miss does not fan out into an
// unbounded series of upstream retries.
const maxKeywords = 4

// Normalize canonicalizes a query for accent-insensitive comparison: it
// case-folds, strips characters the upstream filters reject, collapses
// whitespace, and rewrites each unaccented dictionary word to its accented
// form. Unknown input is returned case-folded but otherwise unchanged.
// Normalize is idempotent.
func Normalize(text string) string {
	cleaned := allowedChars.ReplaceAllString(text, " ")
	cleaned = multiSpace.ReplaceAllString(cleaned, " ")
	cleaned = strings.ToLower(strings.TrimSpace(cleaned))
	if cleaned == "" {
		return ""
	}

	words := strings.Split(cleaned, " ")
	for i, w := range words {
		if accented, ok := accentForms[w]; ok {
			words[i] = accented
		}
	}
	return strings.Join(words, " ")
}

// Expansion is one alternative search input derived from an acronym.
type Expansion struct {
	// Acronym is the matched acronym in lower case.
	Acronym string
	// FullName is the institution or survey name the acronym stands for.
	FullName string
	// Exact reports whether the whole query was the acronym, as opposed to
	// the acronym appearing inside a longer phrase. Exact matches are
	// higher-priority fallback candidates.
	Exact bool
}

// ExpandAcronyms returns the acronym expansions found in text, exact
// whole-query matches first. Text that contains no known acronym yields nil.
func ExpandAcronyms(text string) []Expansion {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}

	var exact, partial []Expansion
	if full, ok := acronyms[normalized]; ok {
		exact = append(exact, Expansion{Acronym: normalized, FullName: full, Exact: true})
	}
	for _, w := range strings.Split(normalized, " ") {
		if w == normalized {
			continue // already handled as an exact match
		}
		if full, ok := acronyms[w]; ok {
			partial = append(partial, Expansion{Acronym: w, FullName: full})
		}
	}
	return append(exact, partial...)
}

// IsAcronym reports whether word (in any case) is a known institutional
// acronym.
func IsAcronym(word string) bool {
	_, ok := acronyms[strings.ToLower(strings.TrimSpace(word))]
	return ok
}

// AcronymExpansion returns the full name for a known acronym and whether the
// word was recognized.
func AcronymExpansion(word string) (string, bool) {
	full, ok := acronyms[strings.ToLower(strings.TrimSpace(word))]
	return full, ok
}

// Keywords splits a normalized query into fallback search keywords: stop
// words and tokens shorter than three runes are dropped, and at most
// maxKeywords are returned in query order.
func Keywords(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}

	var keywords []string
	for _, w := range strings.Split(normalized, " ") {
		if len([]rune(w)) <= 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		keywords = append(keywords, w)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}
