package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hurstaa/landlab/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("empty cache should miss")
	}
	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || string(data) != "value" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("deleted key should miss")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	if err := c.Set(ctx, "key", []byte("value"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("expired entry should miss")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("key")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("%d entries left in %s", len(entries), dir)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestHashSurface(t *testing.T) {
	status := []int{1, 1, 1, 1, 0, 1, 1, 1, 1}
	z := []float64{9, 9, 9, 9, 2, 9, 9, 9, 9}
	base := HashSurface(3, 3, 1, status, z)

	tests := []struct {
		name string
		hash string
	}{
		{"spacing", HashSurface(3, 3, 2, status, z)},
		{"status", HashSurface(3, 3, 1, []int{4, 1, 1, 1, 0, 1, 1, 1, 1}, z)},
		{"elevation", HashSurface(3, 3, 1, status, []float64{9, 9, 9, 9, 3, 9, 9, 9, 9})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.hash == base {
				t.Errorf("changing %s did not change the hash", tt.name)
			}
		})
	}
	if HashSurface(3, 3, 1, status, z) != base {
		t.Error("HashSurface should be deterministic")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	fk1 := k.FillKey("hash123", FillKeyOpts{Field: "topographic__elevation", Slope: 0})
	fk2 := k.FillKey("hash123", FillKeyOpts{Field: "topographic__elevation", Slope: 1e-5})
	if fk1 == fk2 {
		t.Error("Different FillKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(fk1, "fill:") {
		t.Errorf("FillKey unexpected: %s", fk1)
	}

	pk1 := k.PitsKey("hash123", "topographic__elevation")
	pk2 := k.PitsKey("hash123", "Elevation")
	if pk1 == pk2 {
		t.Error("Different fields should produce different keys")
	}
	if !strings.HasPrefix(pk1, "pits:") {
		t.Errorf("PitsKey unexpected: %s", pk1)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "v1:")
	plain := NewDefaultKeyer().FillKey("h", FillKeyOpts{})
	if got := scoped.FillKey("h", FillKeyOpts{}); got != "v1:"+plain {
		t.Errorf("ScopedKeyer FillKey = %s, want v1:%s", got, plain)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	want := "prefix:" + NewDefaultKeyer().PitsKey("h", "f")
	if key := scoped.PitsKey("h", "f"); key != want {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

type cacheRecorder struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (r *cacheRecorder) OnCacheHit(context.Context, string)      { r.hits++ }
func (r *cacheRecorder) OnCacheMiss(context.Context, string)     { r.misses++ }
func (r *cacheRecorder) OnCacheSet(context.Context, string, int) { r.sets++ }

func TestLoadStore(t *testing.T) {
	rec := &cacheRecorder{}
	observability.SetCacheHooks(rec)
	defer observability.Reset()

	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	var got FillResult
	if ok, err := Load(ctx, c, KeyTypeFill, "k", &got); ok || err != nil {
		t.Fatalf("Load on empty cache = %v, %v", ok, err)
	}

	want := FillResult{Field: "topographic__elevation", Slope: 1e-5, Elevation: []float64{1, 2}, Depth: []float64{0, 1}}
	if err := Store(ctx, c, KeyTypeFill, "k", want, time.Hour); err != nil {
		t.Fatal(err)
	}
	ok, err := Load(ctx, c, KeyTypeFill, "k", &got)
	if !ok || err != nil {
		t.Fatalf("Load = %v, %v", ok, err)
	}
	if got.Slope != want.Slope || len(got.Depth) != 2 || got.Depth[1] != 1 {
		t.Errorf("Load = %+v, want %+v", got, want)
	}

	if rec.hits != 1 || rec.misses != 1 || rec.sets != 1 {
		t.Errorf("hooks = %d hits, %d misses, %d sets", rec.hits, rec.misses, rec.sets)
	}
}
