package crossref

import "encoding/json"

// worksResponse is one page of the Crossref works listing.
type worksResponse struct {
	Message struct {
		NextCursor   string            `json:"next-cursor"`
		TotalResults int               `json:"total-results"`
		Items        []json.RawMessage `json:"items"`
	} `json:"message"`
}

// listing is the combined, fully-paginated payload stored in the cache.
// Items stay raw so the cache holds what the API returned, not a lossy
// re-encoding.
type listing struct {
	Items []json.RawMessage `json:"items"`
}

// workItem is the subset of a Crossref work record the pipeline uses.
type workItem struct {
	DOI            string       `json:"DOI"`
	Title          []string     `json:"title"`
	ContainerTitle []string     `json:"container-title"`
	Type           string       `json:"type"`
	Author         []workAuthor `json:"author"`
	Issued         partedDate   `json:"issued"`
}

type workAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

// partedDate is Crossref's date-parts encoding: [[year, month, day]].
type partedDate struct {
	DateParts [][]int `json:"date-parts"`
}

// Year returns the year component, or 0 when absent.
func (d partedDate) Year() int {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return 0
	}
	return d.DateParts[0][0]
}
