// Package report emits ranked collection results to durable storage.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ASSERT-KTH/most-cited-se-papers/internal/cache"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/collect"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/paper"
)

// RankedPaper pairs a paper with its 1-based rank.
type RankedPaper struct {
	Rank int `json:"rank"`
	paper.Paper
}

// Writer writes per-target and overall ranking files, mirroring each
// ranking into the cache's ranks namespace. Rankings are a derived
// view; the raw API payloads in the other namespaces stay authoritative.
type Writer struct {
	dir   string
	store *cache.Store
}

// NewWriter creates a report writer. The cache store is optional; when
// nil, rankings are only written to disk.
func NewWriter(dir string, store *cache.Store) *Writer {
	return &Writer{dir: dir, store: store}
}

// WriteAll writes one ranking file per target plus an overall ranking,
// and returns the written paths. File names are numbered in target
// order so they stay stable across runs.
func (w *Writer) WriteAll(res *collect.Result) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}

	var paths []string
	for i, tr := range res.Targets {
		name := FileName(i+1, tr.Target.Venue.Name, tr.Target.Year)
		path, err := w.write(name, tr.Ranking)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)

		if w.store != nil {
			key := cache.Fingerprint("ranks", "target", map[string]string{
				"venue": tr.Target.Venue.Code,
				"year":  fmt.Sprintf("%d", tr.Target.Year),
			})
			payload, err := encode(tr.Ranking)
			if err != nil {
				return paths, err
			}
			if err := w.store.Put(cache.NamespaceRanks, key, payload); err != nil {
				return paths, err
			}
		}
	}

	path, err := w.write("overall.json", res.Ranking)
	if err != nil {
		return paths, err
	}
	paths = append(paths, path)

	return paths, nil
}

func (w *Writer) write(name string, ranking []paper.Paper) (string, error) {
	payload, err := encode(ranking)
	if err != nil {
		return "", err
	}
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return "", fmt.Errorf("writing report %s: %w", name, err)
	}
	return path, nil
}

func encode(ranking []paper.Paper) ([]byte, error) {
	ranked := make([]RankedPaper, len(ranking))
	for i, p := range ranking {
		ranked[i] = RankedPaper{Rank: i + 1, Paper: p}
	}
	payload, err := json.MarshalIndent(ranked, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding ranking: %w", err)
	}
	return payload, nil
}

// FileName builds a stable report file name: zero-padded index, venue
// name, and year, with spaces replaced by dashes.
func FileName(n int, venueName string, year int) string {
	name := fmt.Sprintf("%03d %s %d.json", n, venueName, year)
	return strings.ReplaceAll(name, " ", "-")
}
