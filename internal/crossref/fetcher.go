// Package crossref implements the publication-metadata fetcher backed
// by the Crossref works API.
package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/ASSERT-KTH/most-cited-se-papers/internal/cache"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/paper"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/venue"
)

const (
	// APIName identifies this upstream in cache keys and errors.
	APIName = "crossref"

	// BaseURL is the Crossref REST API base URL.
	BaseURL = "https://api.crossref.org"

	worksEndpoint = "/works"

	// DefaultRows is the page size for works listings.
	DefaultRows = 1000

	// DefaultMaxPages caps cursor-following so a malformed or looping
	// pagination cursor cannot hang a target.
	DefaultMaxPages = 20
)

// Getter performs rate-limited HTTP GETs. Satisfied by *fetch.Channel.
type Getter interface {
	Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error)
}

// Fetcher retrieves venue/year paper listings read-through the cache.
type Fetcher struct {
	channel  Getter
	store    *cache.Store
	baseURL  string
	rows     int
	maxPages int
	logf     func(format string, args ...any)
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) FetcherOption {
	return func(f *Fetcher) {
		f.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithRows sets the listing page size.
func WithRows(rows int) FetcherOption {
	return func(f *Fetcher) {
		if rows > 0 {
			f.rows = rows
		}
	}
}

// WithMaxPages sets the pagination safety cap.
func WithMaxPages(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxPages = n
		}
	}
}

// WithLogf sets the diagnostic logger.
func WithLogf(logf func(format string, args ...any)) FetcherOption {
	return func(f *Fetcher) {
		f.logf = logf
	}
}

// NewFetcher creates a metadata fetcher. The channel performs network
// I/O; the fetcher owns all cache traffic.
func NewFetcher(channel Getter, store *cache.Store, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		channel:  channel,
		store:    store,
		baseURL:  BaseURL,
		rows:     DefaultRows,
		maxPages: DefaultMaxPages,
		logf:     log.Printf,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Papers returns the papers published in a venue during a year, with
// citation counts left unknown. On a cache hit the cached listing is
// parsed directly; on a miss the paginated listing is followed to
// exhaustion and cached as one unit, so a cached entry always
// represents a complete listing.
func (f *Fetcher) Papers(ctx context.Context, v venue.Venue, year int) ([]paper.Paper, error) {
	title := v.ContainerTitle(year)
	key := cache.Fingerprint(APIName, worksEndpoint, map[string]string{
		"container-title": title,
		"year":            strconv.Itoa(year),
	})

	if payload, ok, err := f.store.Get(cache.NamespaceCrossref, key); err != nil {
		return nil, fmt.Errorf("reading %s cache: %w", APIName, err)
	} else if ok {
		var cached listing
		if err := json.Unmarshal(payload, &cached); err != nil {
			return nil, fmt.Errorf("parsing cached listing for %s %d: %w", v.Code, year, err)
		}
		return f.parse(title, v, year, cached.Items), nil
	}

	items, err := f.fetchAllPages(ctx, title, year)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(listing{Items: items})
	if err != nil {
		return nil, fmt.Errorf("encoding listing for %s %d: %w", v.Code, year, err)
	}
	if err := f.store.Put(cache.NamespaceCrossref, key, payload); err != nil {
		return nil, fmt.Errorf("caching listing for %s %d: %w", v.Code, year, err)
	}

	return f.parse(title, v, year, items), nil
}

// fetchAllPages follows the works listing cursor until exhausted and
// returns the accumulated raw items.
func (f *Fetcher) fetchAllPages(ctx context.Context, title string, year int) ([]json.RawMessage, error) {
	filter := fmt.Sprintf("from-issued-date:%d,until-issued-date:%d", year, year)

	var items []json.RawMessage
	cursor := "*"

	for page := 1; ; page++ {
		if page > f.maxPages {
			return nil, fmt.Errorf("%s: pagination for %q %d exceeded %d pages; refusing to cache a partial listing", APIName, title, year, f.maxPages)
		}

		params := url.Values{
			"query.container-title": {title},
			"filter":                {filter},
			"rows":                  {strconv.Itoa(f.rows)},
			"cursor":                {cursor},
		}

		payload, err := f.channel.Get(ctx, f.baseURL+worksEndpoint, params)
		if err != nil {
			return nil, err
		}

		var resp worksResponse
		if err := json.Unmarshal(payload, &resp); err != nil {
			return nil, fmt.Errorf("%s: parsing page %d for %q %d: %w", APIName, page, title, year, err)
		}

		items = append(items, resp.Message.Items...)

		if len(resp.Message.Items) == 0 || resp.Message.NextCursor == "" {
			return items, nil
		}
		cursor = resp.Message.NextCursor
	}
}

// parse converts raw work items to papers, skipping records that are
// malformed or belong to a different container title.
func (f *Fetcher) parse(title string, v venue.Venue, year int, items []json.RawMessage) []paper.Paper {
	var papers []paper.Paper

	for _, raw := range items {
		var item workItem
		if err := json.Unmarshal(raw, &item); err != nil {
			f.logf("crossref: skipping malformed record for %s %d: %v", v.Code, year, err)
			continue
		}
		if item.DOI == "" || len(item.Title) == 0 {
			// Crossref sometimes returns bare {"DOI": ...} stubs.
			f.logf("crossref: skipping record without DOI or title in %s %d", v.Code, year)
			continue
		}

		container := ""
		if len(item.ContainerTitle) > 0 {
			container = item.ContainerTitle[0]
		}
		if !venue.Accepts(title, container) {
			continue
		}

		if issued := item.Issued.Year(); issued != 0 && issued != year {
			f.logf("crossref: skipping %s, issued %d but listed under %d", item.DOI, issued, year)
			continue
		}

		papers = append(papers, paper.Paper{
			ID:        paper.CanonicalID(item.DOI),
			DOI:       item.DOI,
			Title:     item.Title[0],
			Authors:   authorNames(item.Author),
			Venue:     venue.NormalizeTitle(container),
			Year:      year,
			Citations: paper.Unknown(),
			Source:    APIName,
		})
	}

	return papers
}

func authorNames(authors []workAuthor) []string {
	if len(authors) == 0 {
		return nil
	}
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
