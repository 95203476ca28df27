// Package venue defines the tracked publication venues and the rules
// for matching Crossref container titles against them.
package venue

import (
	"fmt"
	"strings"
)

// Venue is a tracked publication outlet.
type Venue struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// defaultVenues are the top software-engineering venues tracked by
// default. FSE is resolved per year, see ContainerTitle.
var defaultVenues = []Venue{
	{Code: "ICSE", Name: "International Conference on Software Engineering"},
	{Code: "TSE", Name: "IEEE Transactions on Software Engineering"},
	{Code: "JSS", Name: "Journal of Systems and Software"},
	{Code: "IST", Name: "Information and Software Technology"},
	{Code: "EMSE", Name: "Empirical Software Engineering"},
	{Code: "FSE", Name: "Foundations of Software Engineering"},
	{Code: "ASE", Name: "International Conference on Automated Software Engineering"},
	{Code: "TOSEM", Name: "ACM Transactions on Software Engineering and Methodology"},
}

// Defaults returns the default venue list.
func Defaults() []Venue {
	venues := make([]Venue, len(defaultVenues))
	copy(venues, defaultVenues)
	return venues
}

// Lookup resolves venue codes to venues. Unknown codes are an error so
// a typo in the configuration fails before any network activity.
func Lookup(codes []string) ([]Venue, error) {
	byCode := make(map[string]Venue, len(defaultVenues))
	for _, v := range defaultVenues {
		byCode[v.Code] = v
	}

	venues := make([]Venue, 0, len(codes))
	for _, code := range codes {
		v, ok := byCode[strings.ToUpper(strings.TrimSpace(code))]
		if !ok {
			return nil, fmt.Errorf("unknown venue code: %s", code)
		}
		venues = append(venues, v)
	}
	return venues, nil
}

// ContainerTitle returns the Crossref container title to query for this
// venue in a given year. Most venues are stable; FSE changed names over
// time and alternates between FSE and ESEC/FSE formats by year parity.
func (v Venue) ContainerTitle(year int) string {
	if v.Code == "FSE" {
		return fseName(year)
	}
	return v.Name
}

// fseName returns the FSE proceedings title for a year. Even years are
// the symposium; odd years the joint meeting, which was renamed in 2018.
func fseName(year int) string {
	if year%2 == 0 {
		if year < 2018 {
			return "Symposium on Foundations of Software Engineering"
		}
		return "Symposium on the Foundations of Software Engineering"
	}
	if year < 2018 {
		return "Meeting on Foundations of Software Engineering"
	}
	return "European Software Engineering Conference and Symposium on the Foundations of Software Engineering"
}

// NormalizeTitle normalizes a Crossref container title for matching:
// a trailing parenthesized qualifier (e.g. the venue acronym) is
// stripped and surrounding whitespace trimmed.
func NormalizeTitle(title string) string {
	if i := strings.Index(title, "("); i >= 0 {
		title = title[:i]
	}
	return strings.TrimSpace(title)
}

// rejectedSubstrings filters container titles that slip through the
// Crossref query but do not belong to the queried venue: companion and
// workshop volumes, proceedings breaker pages, and the ESEM proceedings
// which match "Software Engineering" queries.
var rejectedSubstrings = []string{
	"companion",
	"breaker page",
	"measurement",
}

// Accepts reports whether a normalized container title belongs to the
// queried venue title. Crossref container-title queries are fuzzy, so
// listings mix in neighboring venues and companion volumes.
func Accepts(queried, containerTitle string) bool {
	title := strings.ToLower(NormalizeTitle(containerTitle))
	if title == "" {
		return false
	}
	if title == "software engineering" {
		return false
	}
	for _, reject := range rejectedSubstrings {
		if strings.Contains(title, reject) {
			return false
		}
	}
	return strings.HasSuffix(title, strings.ToLower(queried))
}
