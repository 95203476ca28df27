package crossref

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ASSERT-KTH/most-cited-se-papers/internal/cache"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/venue"
)

var icse = venue.Venue{Code: "ICSE", Name: "International Conference on Software Engineering"}

// fakeChannel replays canned responses keyed by cursor and counts calls.
type fakeChannel struct {
	pages map[string]string
	calls int
	err   error
}

func (f *fakeChannel) Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	page, ok := f.pages[params.Get("cursor")]
	if !ok {
		return nil, fmt.Errorf("unexpected cursor %q", params.Get("cursor"))
	}
	return []byte(page), nil
}

func testStore(t *testing.T) *cache.Store {
	t.Helper()
	s, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func item(doi, title, container string) string {
	return fmt.Sprintf(`{"DOI":%q,"title":[%q],"container-title":[%q],"type":"proceedings-article","author":[{"given":"Ada","family":"Lovelace"}],"issued":{"date-parts":[[2020]]}}`, doi, title, container)
}

func page(next string, items ...string) string {
	return fmt.Sprintf(`{"message":{"next-cursor":%q,"total-results":%d,"items":[%s]}}`, next, len(items), strings.Join(items, ","))
}

func TestPapersFollowsPagination(t *testing.T) {
	ch := &fakeChannel{pages: map[string]string{
		"*":  page("c2", item("10.1145/1", "Paper One", "International Conference on Software Engineering")),
		"c2": page("c3", item("10.1145/2", "Paper Two", "Proceedings of the International Conference on Software Engineering")),
		"c3": page("c4"),
	}}
	f := NewFetcher(ch, testStore(t), WithLogf(t.Logf))

	papers, err := f.Papers(context.Background(), icse, 2020)
	if err != nil {
		t.Fatalf("Papers: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}
	if papers[0].ID != "doi:10.1145/1" {
		t.Errorf("ID = %q", papers[0].ID)
	}
	if papers[0].Title != "Paper One" {
		t.Errorf("Title = %q", papers[0].Title)
	}
	if papers[0].Venue != "International Conference on Software Engineering" {
		t.Errorf("Venue = %q", papers[0].Venue)
	}
	if papers[0].Citations.Known {
		t.Error("metadata fetch should leave citations unknown")
	}
	if ch.calls != 3 {
		t.Errorf("API calls = %d, want 3 (all pages)", ch.calls)
	}
}

func TestPapersCachesCompleteListing(t *testing.T) {
	store := testStore(t)
	ch := &fakeChannel{pages: map[string]string{
		"*":  page("c2", item("10.1145/1", "Paper One", "International Conference on Software Engineering")),
		"c2": page(""),
	}}
	f := NewFetcher(ch, store, WithLogf(t.Logf))

	first, err := f.Papers(context.Background(), icse, 2020)
	if err != nil {
		t.Fatalf("first Papers: %v", err)
	}
	callsAfterFirst := ch.calls

	second, err := f.Papers(context.Background(), icse, 2020)
	if err != nil {
		t.Fatalf("second Papers: %v", err)
	}
	if ch.calls != callsAfterFirst {
		t.Errorf("cache hit still made %d network calls", ch.calls-callsAfterFirst)
	}
	if len(first) != len(second) || !reflect.DeepEqual(first[0], second[0]) {
		t.Errorf("cached parse differs: %v vs %v", first, second)
	}
}

func TestPapersSkipsMalformedRecords(t *testing.T) {
	ch := &fakeChannel{pages: map[string]string{
		"*": page("",
			`{"DOI":"10.1145/stub"}`,
			item("", "No DOI", "International Conference on Software Engineering"),
			item("10.1145/good", "Good Paper", "International Conference on Software Engineering"),
		),
	}}
	f := NewFetcher(ch, testStore(t), WithLogf(t.Logf))

	papers, err := f.Papers(context.Background(), icse, 2020)
	if err != nil {
		t.Fatalf("Papers: %v", err)
	}
	if len(papers) != 1 || papers[0].ID != "doi:10.1145/good" {
		t.Errorf("papers = %v, want only the good record", papers)
	}
}

func TestPapersFiltersForeignContainerTitles(t *testing.T) {
	ch := &fakeChannel{pages: map[string]string{
		"*": page("",
			item("10.1145/a", "Companion Paper", "International Conference on Software Engineering Companion"),
			item("10.1145/b", "Other Venue", "International Conference on Program Comprehension"),
			item("10.1145/c", "Real Paper", "International Conference on Software Engineering (ICSE)"),
		),
	}}
	f := NewFetcher(ch, testStore(t), WithLogf(t.Logf))

	papers, err := f.Papers(context.Background(), icse, 2020)
	if err != nil {
		t.Fatalf("Papers: %v", err)
	}
	if len(papers) != 1 || papers[0].ID != "doi:10.1145/c" {
		t.Errorf("papers = %v, want only the matching container title", papers)
	}
}

func TestPapersSkipsYearMismatch(t *testing.T) {
	wrongYear := `{"DOI":"10.1145/old","title":["Old Paper"],"container-title":["International Conference on Software Engineering"],"issued":{"date-parts":[[2019]]}}`
	ch := &fakeChannel{pages: map[string]string{
		"*": page("", wrongYear, item("10.1145/new", "New Paper", "International Conference on Software Engineering")),
	}}
	f := NewFetcher(ch, testStore(t), WithLogf(t.Logf))

	papers, err := f.Papers(context.Background(), icse, 2020)
	if err != nil {
		t.Fatalf("Papers: %v", err)
	}
	if len(papers) != 1 || papers[0].ID != "doi:10.1145/new" {
		t.Errorf("papers = %v, want only the 2020 record", papers)
	}
}

func TestPaginationCapTerminates(t *testing.T) {
	// Every page points back at itself: a looping cursor.
	looping := page("loop", item("10.1145/x", "Looping", "International Conference on Software Engineering"))
	ch := &fakeChannel{pages: map[string]string{"*": looping, "loop": looping}}
	store := testStore(t)
	f := NewFetcher(ch, store, WithMaxPages(5), WithLogf(t.Logf))

	_, err := f.Papers(context.Background(), icse, 2020)
	if err == nil {
		t.Fatal("expected error from pagination cap")
	}
	if ch.calls != 5 {
		t.Errorf("API calls = %d, want 5 (the cap)", ch.calls)
	}

	// A partial listing must never be cached.
	count, err := store.Count(cache.NamespaceCrossref)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("partial listing was cached (%d entries)", count)
	}
}

func TestChannelErrorPropagates(t *testing.T) {
	wantErr := errors.New("boom")
	f := NewFetcher(&fakeChannel{err: wantErr}, testStore(t), WithLogf(t.Logf))

	_, err := f.Papers(context.Background(), icse, 2020)
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want wrapped %v", err, wantErr)
	}
}
