package cache

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

var errFlaky = errors.New("connection reset")

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always return a nil miss")
	}
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if _, hit, err := c.Get(ctx, "doc:1"); hit || err != nil {
		t.Fatalf("Get(empty) = hit %v, err %v; want miss", hit, err)
	}
	if err := c.Set(ctx, "doc:1", []byte("SLTB payload"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "doc:1")
	if err != nil || !hit || string(data) != "SLTB payload" {
		t.Errorf("Get = %q, %v, %v; want hit with payload", data, hit, err)
	}

	if err := c.Delete(ctx, "doc:1"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "doc:1"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "doc:1"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !errors.Is(err, os.ErrNotExist) {
		t.Error("expired entry should be removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "k", []byte("v"), 0)

	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v; want silent miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}

	if entries, size, err := c.Usage(); err != nil || entries != 3 || size == 0 {
		t.Errorf("Usage() = %d, %d, %v; want 3 entries", entries, size, err)
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after Clear, want 0", len(entries))
	}
	if entries, _, _ := c.Usage(); entries != 0 {
		t.Errorf("Usage() after Clear = %d entries", entries)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	k1 := k.DocKey("/models/a.slx", "simulink/systems/system_root.xml", DocKeyOpts{Version: 1})
	k2 := k.DocKey("/models/a.slx", "simulink/systems/system_root.xml", DocKeyOpts{Version: 1, InferPorts: true})
	k3 := k.DocKey("/models/b.slx", "simulink/systems/system_root.xml", DocKeyOpts{Version: 1})

	if k1 == k2 {
		t.Error("different options should produce different keys")
	}
	if k1 == k3 {
		t.Error("different inputs should produce different keys")
	}
	if k1[:4] != "doc:" {
		t.Errorf("DocKey should be prefixed with doc: %s", k1)
	}

	a1 := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "svg"})
	a2 := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "dot"})
	a3 := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "svg", System: "Ctrl"})
	if a1 == a2 || a1 == a3 {
		t.Error("different render options should produce different keys")
	}
	if a1[:9] != "artifact:" {
		t.Errorf("ArtifactKey should be prefixed with artifact: %s", a1)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "ci:")
	key := scoped.DocKey("in", "root.xml", DocKeyOpts{})
	want := "ci:" + NewDefaultKeyer().DocKey("in", "root.xml", DocKeyOpts{})
	if key != want {
		t.Errorf("ScopedKeyer DocKey = %s, want %s", key, want)
	}
	art := scoped.ArtifactKey("abc", ArtifactKeyOpts{Format: "svg"})
	if art[:3] != "ci:" {
		t.Errorf("ScopedKeyer ArtifactKey should be prefixed: %s", art)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(errFlaky)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != errFlaky.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if !errors.Is(err, errFlaky) {
		t.Error("errors.Is should see through RetryableError")
	}
	if IsRetryable(errFlaky) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	retryDelay = time.Millisecond
	defer func() { retryDelay = 100 * time.Millisecond }()

	calls := 0
	if err := RetryWithBackoff(ctx, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("success: err %v, calls %d; want nil, 1", err, calls)
	}

	calls = 0
	err := RetryWithBackoff(ctx, func() error { calls++; return errFlaky })
	if err != errFlaky || calls != 1 {
		t.Errorf("non-retryable: err %v, calls %d; want errFlaky, 1", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(errFlaky)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retryable: err %v, calls %d; want nil, 2", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error { calls++; return Retryable(errFlaky) })
	if !IsRetryable(err) || calls != 3 {
		t.Errorf("exhausted: err %v, calls %d; want retryable error after 3 calls", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error { return Retryable(errFlaky) })
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	if IsRetryable(classify(redis.Nil)) {
		t.Error("redis.Nil is a miss, not a retryable failure")
	}
	netErr := &net.OpError{Op: "dial", Err: errFlaky}
	if !IsRetryable(classify(netErr)) {
		t.Error("network errors should be retryable")
	}
	if IsRetryable(classify(errFlaky)) {
		t.Error("plain errors should not be retryable")
	}
}

// TestRedisCache runs against a live server when SLINKTREE_TEST_REDIS_URL is set.
func TestRedisCache(t *testing.T) {
	url := os.Getenv("SLINKTREE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SLINKTREE_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url, "slinktree-test:")
	if err != nil {
		t.Fatalf("NewRedisCache error: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = hit %v, err %v; want miss", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if data, hit, err := c.Get(ctx, "k"); !hit || err != nil || string(data) != "v" {
		t.Errorf("Get(k) = %q, %v, %v", data, hit, err)
	}
	_ = c.Delete(ctx, "k")
}
