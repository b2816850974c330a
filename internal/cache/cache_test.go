package cache

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

func setupTestCache(t *testing.T) *Cache {
	t.Helper()

	cache, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCacheOpenClose(t *testing.T) {
	dir := t.TempDir()

	cache, err := Open(dir)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	if cache.Path() != filepath.Join(dir, "cache.db") {
		t.Errorf("Path() = %q", cache.Path())
	}
	if _, err := os.Stat(cache.Path()); os.IsNotExist(err) {
		t.Error("cache.db was not created")
	}
	if err := cache.SetMatch("/ws/a.h", "/ws/a.cpp"); err != nil {
		t.Fatal(err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("close cache: %v", err)
	}

	// Reopen: data persists
	cache, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen cache: %v", err)
	}
	defer cache.Close()
	match, ok, err := cache.GetMatch("/ws/a.cpp")
	if err != nil || !ok || match != "/ws/a.h" {
		t.Errorf("GetMatch() after reopen = %q, %v, %v", match, ok, err)
	}
}

func TestMatches(t *testing.T) {
	cache := setupTestCache(t)

	if err := cache.SetMatch("/ws/a.h", "/ws/src/a.cpp"); err != nil {
		t.Fatalf("set match: %v", err)
	}

	tests := []struct {
		path  string
		want  string
		found bool
	}{
		{"/ws/a.h", "/ws/src/a.cpp", true},
		{"/ws/src/a.cpp", "/ws/a.h", true},
		{"/ws/b.h", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok, err := cache.GetMatch(tt.path)
			if err != nil {
				t.Fatalf("get match: %v", err)
			}
			if got != tt.want || ok != tt.found {
				t.Errorf("GetMatch() = %q, %v, want %q, %v", got, ok, tt.want, tt.found)
			}
		})
	}

	// A new pair replaces the header's old partner
	if err := cache.SetMatch("/ws/a.h", "/ws/a.cpp"); err != nil {
		t.Fatal(err)
	}
	if got, _, _ := cache.GetMatch("/ws/a.h"); got != "/ws/a.cpp" {
		t.Errorf("GetMatch(a.h) = %q after re-pairing", got)
	}
}

func TestDeleteMatch(t *testing.T) {
	cache := setupTestCache(t)

	cache.SetMatch("/ws/a.h", "/ws/a.cpp")
	cache.SetMatch("/ws/b.h", "/ws/b.cpp")

	if err := cache.DeleteMatch("/ws/a.cpp"); err != nil {
		t.Fatalf("delete match: %v", err)
	}

	all, err := cache.AllMatches()
	if err != nil {
		t.Fatalf("all matches: %v", err)
	}
	want := map[string]string{"/ws/b.h": "/ws/b.cpp", "/ws/b.cpp": "/ws/b.h"}
	if !reflect.DeepEqual(all, want) {
		t.Errorf("AllMatches() = %v, want %v", all, want)
	}
}

func testSymbols() []protocol.DocumentSymbol {
	detail := "void (int)"
	return []protocol.DocumentSymbol{{
		Name: "Widget",
		Kind: protocol.SymbolKindClass,
		Range: protocol.Range{
			Start: protocol.Position{Line: 0},
			End:   protocol.Position{Line: 3, Character: 1},
		},
		SelectionRange: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 6},
			End:   protocol.Position{Line: 0, Character: 12},
		},
		Children: []protocol.DocumentSymbol{{
			Name:   "resize",
			Detail: &detail,
			Kind:   protocol.SymbolKindMethod,
		}},
	}}
}

func saveSymbols(c *Cache, path, hash string, symbols []protocol.DocumentSymbol) error {
	return c.SaveBulkSymbols([]SymbolEntry{{FilePath: path, ScanHash: hash, Symbols: symbols}})
}

func TestSymbols(t *testing.T) {
	cache := setupTestCache(t)

	path := "/ws/widget.h"
	if err := saveSymbols(cache, path, "hash1", testSymbols()); err != nil {
		t.Fatalf("save symbols: %v", err)
	}

	got, ok, err := cache.LoadSymbols(path, "hash1")
	if err != nil {
		t.Fatalf("load symbols: %v", err)
	}
	if !ok {
		t.Fatal("symbols not found")
	}
	if !reflect.DeepEqual(got, testSymbols()) {
		t.Errorf("LoadSymbols() = %+v", got)
	}

	// Stale hash
	if _, ok, err := cache.LoadSymbols(path, "hash2"); ok || err != nil {
		t.Errorf("LoadSymbols(stale) = %v, %v", ok, err)
	}
	if _, ok, err := cache.LoadSymbols("/ws/other.h", "hash1"); ok || err != nil {
		t.Errorf("LoadSymbols(missing) = %v, %v", ok, err)
	}
}

func TestIsFileChanged(t *testing.T) {
	cache := setupTestCache(t)

	changed, err := cache.IsFileChanged("a.cpp", "hash1")
	if err != nil {
		t.Fatalf("is file changed (new): %v", err)
	}
	if !changed {
		t.Error("new file should be reported as changed")
	}

	saveSymbols(cache, "a.cpp", "hash1", nil)

	if changed, _ := cache.IsFileChanged("a.cpp", "hash1"); changed {
		t.Error("same hash should not be reported as changed")
	}
	if changed, _ := cache.IsFileChanged("a.cpp", "hash2"); !changed {
		t.Error("different hash should be reported as changed")
	}
}

func TestGetChangedFiles(t *testing.T) {
	cache := setupTestCache(t)

	err := cache.SaveBulkSymbols([]SymbolEntry{
		{FilePath: "a.cpp", ScanHash: "hash_a"},
		{FilePath: "b.cpp", ScanHash: "hash_b"},
	})
	if err != nil {
		t.Fatalf("bulk save: %v", err)
	}

	changed, err := cache.GetChangedFiles(map[string]string{
		"a.cpp": "hash_a",     // unchanged
		"b.cpp": "hash_b_new", // changed
		"c.cpp": "hash_c",     // new
	})
	if err != nil {
		t.Fatalf("get changed files: %v", err)
	}

	changedSet := make(map[string]bool)
	for _, p := range changed {
		changedSet[p] = true
	}
	if len(changed) != 2 || !changedSet["b.cpp"] || !changedSet["c.cpp"] {
		t.Errorf("expected b.cpp and c.cpp to be changed, got %v", changed)
	}
}

func TestPruneStaleEntries(t *testing.T) {
	cache := setupTestCache(t)

	saveSymbols(cache, "keep.h", "hash1", nil)
	saveSymbols(cache, "gone.h", "hash2", nil)
	cache.SetMatch("keep.h", "gone.cpp")

	pruned, err := cache.PruneStaleEntries(map[string]bool{"keep.h": true})
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if pruned != 2 {
		t.Errorf("expected 2 pruned, got %d", pruned)
	}

	stats, err := cache.GetStats()
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.Symbols != 1 || stats.Pairs != 0 {
		t.Errorf("stats after prune = %+v", stats)
	}
}

func TestClear(t *testing.T) {
	cache := setupTestCache(t)

	saveSymbols(cache, "a.h", "hash", nil)
	cache.SetMatch("a.h", "a.cpp")

	if err := cache.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	stats, _ := cache.GetStats()
	if stats.Pairs != 0 || stats.Symbols != 0 {
		t.Errorf("stats after clear = %+v", stats)
	}
}
