package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ASSERT-KTH/most-cited-se-papers/internal/cache"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/collect"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/paper"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/venue"
)

func TestFileName(t *testing.T) {
	got := FileName(3, "International Conference on Software Engineering", 2020)
	want := "003-International-Conference-on-Software-Engineering-2020.json"
	if got != want {
		t.Errorf("FileName = %q, want %q", got, want)
	}
}

func testResult() *collect.Result {
	icse := venue.Venue{Code: "ICSE", Name: "International Conference on Software Engineering"}
	ranking := []paper.Paper{
		{ID: "doi:p1", Title: "One", Venue: "ICSE", Year: 2020, Citations: paper.Known(50)},
		{ID: "doi:p2", Title: "Two", Venue: "ICSE", Year: 2020, Citations: paper.Known(10)},
	}
	return &collect.Result{
		Targets: []collect.TargetResult{
			{Target: collect.Target{Venue: icse, Year: 2020}, Ranking: ranking},
		},
		Ranking: ranking,
	}
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	store, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	defer store.Close()

	w := NewWriter(dir, store)
	paths, err := w.WriteAll(testResult())
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("len(paths) = %d, want 2 (target + overall)", len(paths))
	}

	payload, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}

	var ranked []RankedPaper
	if err := json.Unmarshal(payload, &ranked); err != nil {
		t.Fatalf("parsing report: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("len(ranked) = %d, want 2", len(ranked))
	}
	if ranked[0].Rank != 1 || ranked[0].ID != "doi:p1" {
		t.Errorf("ranked[0] = %+v, want rank 1 doi:p1", ranked[0])
	}
	if ranked[1].Rank != 2 || ranked[1].ID != "doi:p2" {
		t.Errorf("ranked[1] = %+v, want rank 2 doi:p2", ranked[1])
	}

	count, err := store.Count(cache.NamespaceRanks)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("ranks namespace entries = %d, want 1", count)
	}
}

func TestWriteAllWithoutStore(t *testing.T) {
	w := NewWriter(t.TempDir(), nil)
	if _, err := w.WriteAll(testResult()); err != nil {
		t.Fatalf("WriteAll without cache store: %v", err)
	}
}

func TestReportsSurviveRewrite(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)

	if _, err := w.WriteAll(testResult()); err != nil {
		t.Fatalf("first WriteAll: %v", err)
	}
	paths, err := w.WriteAll(testResult())
	if err != nil {
		t.Fatalf("second WriteAll: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != len(paths) {
		t.Errorf("report files = %d, want %d (stable names overwrite)", len(entries), len(paths))
	}
}
