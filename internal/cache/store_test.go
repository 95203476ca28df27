package cache

import (
	"bytes"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestGetMissIsNotAnError(t *testing.T) {
	s, _ := openTestStore(t)

	payload, ok, err := s.Get(NamespaceCrossref, "nope")
	if err != nil {
		t.Fatalf("Get on miss returned error: %v", err)
	}
	if ok {
		t.Error("Get on miss reported a hit")
	}
	if payload != nil {
		t.Errorf("Get on miss returned payload %q", payload)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s, _ := openTestStore(t)

	if err := s.Put(NamespaceCitations, "k1", []byte(`{"citationCount":5}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	payload, ok, err := s.Get(NamespaceCitations, "k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("Get reported a miss after Put")
	}
	if !bytes.Equal(payload, []byte(`{"citationCount":5}`)) {
		t.Errorf("payload = %q", payload)
	}
}

func TestPutOverwrites(t *testing.T) {
	s, _ := openTestStore(t)

	if err := s.Put(NamespaceCrossref, "k", []byte("old")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(NamespaceCrossref, "k", []byte("new")); err != nil {
		t.Fatalf("Put (overwrite): %v", err)
	}

	payload, ok, err := s.Get(NamespaceCrossref, "k")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(payload) != "new" {
		t.Errorf("payload = %q, want %q", payload, "new")
	}

	count, err := s.Count(NamespaceCrossref)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %d, want 1 (a key maps to at most one value)", count)
	}
}

func TestNamespacesAreIsolated(t *testing.T) {
	s, _ := openTestStore(t)

	if err := s.Put(NamespaceCrossref, "k", []byte("meta")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	_, ok, err := s.Get(NamespaceCitations, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("key leaked across namespaces")
	}
}

func TestEntriesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Put(NamespaceRanks, "r1", []byte("[1,2,3]")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	payload, ok, err := reopened.Get(NamespaceRanks, "r1")
	if err != nil || !ok {
		t.Fatalf("Get after reopen: ok=%v err=%v", ok, err)
	}
	if string(payload) != "[1,2,3]" {
		t.Errorf("payload = %q", payload)
	}
}

func TestClear(t *testing.T) {
	s, _ := openTestStore(t)

	s.Put(NamespaceCrossref, "a", []byte("1"))
	s.Put(NamespaceCrossref, "b", []byte("2"))
	s.Put(NamespaceCitations, "c", []byte("3"))

	removed, err := s.Clear(NamespaceCrossref)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	count, _ := s.Count(NamespaceCitations)
	if count != 1 {
		t.Errorf("Clear touched another namespace, count = %d", count)
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("crossref", "/works", map[string]string{"rows": "100", "filter": "from-issued-date:2020"})
	b := Fingerprint("crossref", "/works", map[string]string{"filter": "from-issued-date:2020", "rows": "100"})
	if a != b {
		t.Errorf("fingerprint depends on parameter order: %q vs %q", a, b)
	}
}

func TestFingerprintDistinguishesRequests(t *testing.T) {
	base := Fingerprint("crossref", "/works", map[string]string{"rows": "100"})

	variants := []string{
		Fingerprint("semanticscholar", "/works", map[string]string{"rows": "100"}),
		Fingerprint("crossref", "/members", map[string]string{"rows": "100"}),
		Fingerprint("crossref", "/works", map[string]string{"rows": "200"}),
		Fingerprint("crossref", "/works", nil),
	}

	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base fingerprint", i)
		}
	}
}
