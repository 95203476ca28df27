package paper

// Merge combines two records for the same paper identifier, keeping the
// more complete value of each field. Some venues and years overlap in
// upstream listings, so the same DOI can arrive from two collection
// targets with differing completeness.
func Merge(a, b Paper) Paper {
	merged := a

	if merged.ID == "" {
		merged.ID = b.ID
	}
	if merged.DOI == "" {
		merged.DOI = b.DOI
	}
	if merged.Title == "" {
		merged.Title = b.Title
	}
	if len(merged.Authors) == 0 {
		merged.Authors = b.Authors
	}
	if merged.Venue == "" {
		merged.Venue = b.Venue
	}
	if merged.Year == 0 {
		merged.Year = b.Year
	}
	if merged.Source == "" {
		merged.Source = b.Source
	}
	if !merged.Citations.Known {
		merged.Citations = b.Citations
	}

	return merged
}
