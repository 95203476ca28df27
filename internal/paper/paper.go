// Package paper defines the paper domain model shared across the
// collection pipeline.
package paper

import "strings"

// Paper is a single publication record. Papers are created by the
// metadata fetcher with an unknown citation count and enriched by the
// citation fetcher before ranking.
type Paper struct {
	ID        string        `json:"id"`
	DOI       string        `json:"doi"`
	Title     string        `json:"title"`
	Authors   []string      `json:"authors,omitempty"`
	Venue     string        `json:"venue"`
	Year      int           `json:"year"`
	Citations CitationCount `json:"citations"`
	Source    string        `json:"source,omitempty"`
}

// CitationCount distinguishes "zero citations" from "the citation
// service has no record for this paper".
type CitationCount struct {
	Count int  `json:"count"`
	Known bool `json:"known"`
}

// Known returns a resolved citation count.
func Known(n int) CitationCount {
	return CitationCount{Count: n, Known: true}
}

// Unknown returns the sentinel for papers the citation service does not
// know about. Unknown counts sort after every known count.
func Unknown() CitationCount {
	return CitationCount{}
}

// CanonicalID derives the canonical paper identifier from a DOI.
// Format: "doi:" + lowercased DOI with URL prefixes stripped.
func CanonicalID(doi string) string {
	return "doi:" + NormalizeDOI(doi)
}

// NormalizeDOI normalizes a DOI to a consistent format for comparison.
// It removes common URL prefixes (https://doi.org/, DOI:) and converts
// to lowercase.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(doi)
}
