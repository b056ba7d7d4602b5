package cleanse

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Degree labels produced by ClassifyDegree.
const (
	DegreeBachelors = "bachelors"
	DegreeMasters   = "masters"
	DegreePhD       = "phd"
)

// Expansions applied on word boundaries, case-insensitively. Trailing
// periods become spaces later, so "Univ." collapses the same as "Univ".
var abbreviations = []struct {
	pattern *regexp.Regexp
	full    string
}{
	{regexp.MustCompile(`(?i)\bUniv\b`), "University"},
	{regexp.MustCompile(`(?i)\bInst\b`), "Institute"},
	{regexp.MustCompile(`(?i)\bTech\b`), "Technology"},
	{regexp.MustCompile(`(?i)\bColl\b`), "College"},
	{regexp.MustCompile(`(?i)\bDept\b`), "Department"},
	{regexp.MustCompile(`(?i)\bSch\b`), "School"},
	{regexp.MustCompile(`(?i)\bCtr\b`), "Center"},
	{regexp.MustCompile(`(?i)\bIntl\b`), "International"},
	{regexp.MustCompile(`(?i)\bSci\b`), "Science"},
	{regexp.MustCompile(`(?i)\bMgmt\b`), "Management"},
}

var (
	articleRe   = regexp.MustCompile(`(?i)\bthe\b`)
	quoteRe     = regexp.MustCompile(`['"]`)
	separatorRe = regexp.MustCompile(`[-,.]`)
	parenRe     = regexp.MustCompile(`[()]`)
	slashRe     = regexp.MustCompile(`[\\/]`)
)

// CleanName normalizes a raw university name: accents folded to ASCII,
// common abbreviations expanded, the article "the" dropped, quotes and
// brackets stripped, hyphens, commas, and periods turned into spaces,
// whitespace collapsed, and the result title-cased.
func CleanName(name string) string {
	name = removeAccents(name)
	for _, abbr := range abbreviations {
		name = abbr.pattern.ReplaceAllString(name, abbr.full)
	}
	name = articleRe.ReplaceAllString(name, "")
	name = quoteRe.ReplaceAllString(name, "")
	name = separatorRe.ReplaceAllString(name, " ")
	name = parenRe.ReplaceAllString(name, "")
	name = slashRe.ReplaceAllString(name, "")
	name = strings.Join(strings.Fields(name), " ")
	return cases.Title(language.Und).String(name)
}

func removeAccents(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	folded, _, err := transform.String(t, name)
	if err != nil {
		return name
	}
	return folded
}

var bachelorKeywords = []string{
	"bachelor", "bachelors", "undergrad", "bsc", "ba",
	"baccalaureate", "baccalaureat",
	"grado", "licenciatura", "licence",
	"laurea triennale", "bacharelado",
}

var mastersKeywords = []string{
	"master", "masters", "msc", "ma", "mba",
	"máster", "masterado",
	"maestria", "maestría",
	"mastere", "mastère",
	"magister", "magistère",
	"laurea magistrale",
	"mestrado",
}

var phdKeywords = []string{
	"phd", "doctoral", "dphil", "doctorate",
	"doctor",
	"doctorado",
	"doctorat", "docteur",
	"doktor",
	"promotion",
	"dottorato",
	"doutorado",
}

// ClassifyDegree maps a free-form role title onto phd, masters, or
// bachelors, in that precedence. Matching is plain substring containment
// against multilingual keyword lists, so short keywords like "ma" cast a
// wide net. Returns the empty string when no keyword matches.
func ClassifyDegree(roleTitle string) string {
	cleaned := normalizeRole(roleTitle)
	for _, keyword := range phdKeywords {
		if strings.Contains(cleaned, keyword) {
			return DegreePhD
		}
	}
	for _, keyword := range mastersKeywords {
		if strings.Contains(cleaned, keyword) {
			return DegreeMasters
		}
	}
	for _, keyword := range bachelorKeywords {
		if strings.Contains(cleaned, keyword) {
			return DegreeBachelors
		}
	}
	return ""
}

// normalizeRole lowercases and keeps only letters, digits, underscores,
// and whitespace. Accented letters survive; several keywords rely on them.
func normalizeRole(roleTitle string) string {
	lowered := strings.ToLower(roleTitle)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
