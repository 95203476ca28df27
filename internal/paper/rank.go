package paper

import "sort"

// Rank returns a new slice sorted by citation count descending. Papers
// with unknown counts sort after every paper with a known count, zero
// included. Ties break by identifier ascending so the ordering is
// reproducible across runs.
func Rank(papers []Paper) []Paper {
	ranked := make([]Paper, len(papers))
	copy(ranked, papers)

	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i], ranked[j])
	})

	return ranked
}

func less(a, b Paper) bool {
	if a.Citations.Known != b.Citations.Known {
		return a.Citations.Known
	}
	if a.Citations.Known && a.Citations.Count != b.Citations.Count {
		return a.Citations.Count > b.Citations.Count
	}
	return a.ID < b.ID
}
