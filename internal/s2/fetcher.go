// Package s2 implements the citation-count fetcher backed by the
// Semantic Scholar graph API.
package s2

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/ASSERT-KTH/most-cited-se-papers/internal/cache"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/fetch"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/paper"
)

const (
	// APIName identifies this upstream in cache keys and errors.
	APIName = "semanticscholar"

	// BaseURL is the Semantic Scholar graph API base URL.
	BaseURL = "https://api.semanticscholar.org"

	paperEndpoint = "/graph/v1/paper"

	// citationFields is the field list requested per paper.
	citationFields = "citationCount"
)

// Getter performs rate-limited HTTP GETs. Satisfied by *fetch.Channel.
type Getter interface {
	Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error)
}

// paperResponse is the subset of the graph API paper record we use.
// CitationCount stays a pointer so "field absent" is distinguishable
// from "zero citations".
type paperResponse struct {
	PaperID       string `json:"paperId"`
	CitationCount *int   `json:"citationCount"`
	Error         string `json:"error,omitempty"`
}

// Fetcher retrieves per-paper citation counts read-through the cache.
type Fetcher struct {
	channel Getter
	store   *cache.Store
	baseURL string
	logf    func(format string, args ...any)
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) FetcherOption {
	return func(f *Fetcher) {
		f.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithLogf sets the diagnostic logger.
func WithLogf(logf func(format string, args ...any)) FetcherOption {
	return func(f *Fetcher) {
		f.logf = logf
	}
}

// NewFetcher creates a citation fetcher. The channel performs network
// I/O; the fetcher owns all cache traffic.
func NewFetcher(channel Getter, store *cache.Store, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		channel: channel,
		store:   store,
		baseURL: BaseURL,
		logf:    log.Printf,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CitationCount returns the citation count for a paper. A paper the
// citation service has no record of yields the unknown sentinel, not an
// error, so one unresolvable identifier never aborts a run; because the
// miss is not cached, a later run can retry it. The cache key is
// derived from the paper identifier alone.
func (f *Fetcher) CitationCount(ctx context.Context, p paper.Paper) (paper.CitationCount, error) {
	key := cache.Fingerprint(APIName, paperEndpoint, map[string]string{"id": p.ID})

	if payload, ok, err := f.store.Get(cache.NamespaceCitations, key); err != nil {
		return paper.Unknown(), fmt.Errorf("reading %s cache: %w", APIName, err)
	} else if ok {
		return f.parse(p.ID, payload), nil
	}

	payload, err := f.channel.Get(ctx, f.baseURL+paperEndpoint+"/"+p.ID, url.Values{
		"fields": {citationFields},
	})
	if err != nil {
		if fetch.IsNotFound(err) {
			f.logf("s2: no record for %s", p.ID)
			return paper.Unknown(), nil
		}
		return paper.Unknown(), err
	}

	if err := f.store.Put(cache.NamespaceCitations, key, payload); err != nil {
		return paper.Unknown(), fmt.Errorf("caching citation count for %s: %w", p.ID, err)
	}

	return f.parse(p.ID, payload), nil
}

// parse extracts the citation count from a raw payload. Payloads with
// an error body or without the citationCount field degrade to unknown.
func (f *Fetcher) parse(id string, payload []byte) paper.CitationCount {
	var resp paperResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		f.logf("s2: malformed payload for %s: %v", id, err)
		return paper.Unknown()
	}
	if resp.Error != "" {
		f.logf("s2: error payload for %s: %s", id, resp.Error)
		return paper.Unknown()
	}
	if resp.CitationCount == nil {
		f.logf("s2: no citationCount for %s", id)
		return paper.Unknown()
	}
	return paper.Known(*resp.CitationCount)
}
