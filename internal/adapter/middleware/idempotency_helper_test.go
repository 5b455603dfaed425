package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// --- small helpers ---

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func Test_bodyHash(t *testing.T) {
	data := []byte("hello world")
	sum := sha256.Sum256(data)
	if got, want := bodyHash(data), hex.EncodeToString(sum[:]); got != want {
		t.Fatalf("bodyHash mismatch: got %s want %s", got, want)
	}
}

func Test_nowUTC(t *testing.T) {
	u := nowUTC()
	if u.Location() != time.UTC {
		t.Fatalf("nowUTC must be UTC, got %v", u.Location())
	}
	if d := time.Since(u); d < 0 || d > 2*time.Second {
		t.Fatalf("nowUTC too far from now: %v", d)
	}
}

func Test_buildKey(t *testing.T) {
	k := buildKey("POST", "/loan/create-request", "7", strings.Repeat("a", 32))
	want := "idemp:post:/loan/create-request:7:" + strings.Repeat("a", 32)
	if k != want {
		t.Fatalf("buildKey: got %q want %q", k, want)
	}
	if buildKey("POST", "/x", anonymous, "k") == buildKey("POST", "/x", "1", "k") {
		t.Fatalf("different subjects must produce different keys")
	}
}

func Test_normalizeKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"3F2504E0-4F89-41D3-9A0C-0305E82C3301", "3f2504e0-4f89-41d3-9a0c-0305e82c3301", true},
		{"  3f2504e0-4f89-41d3-9a0c-0305e82c3301 ", "3f2504e0-4f89-41d3-9a0c-0305e82c3301", true},
		{"urn:uuid:3f2504e0-4f89-41d3-9a0c-0305e82c3301", "3f2504e0-4f89-41d3-9a0c-0305e82c3301", true},
		{strings.Repeat("AB", 16), strings.Repeat("ab", 16), true},
		{strings.Repeat("g", 32), "", false},
		{"deadbeef", "", false},
		{"not-a-key", "", false},
	}
	for _, tc := range cases {
		got, ok := normalizeKey(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("normalizeKey(%q) = %q,%v; want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func Test_provisionalSet_loadEntry_saveFinal(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	ctx := context.Background()
	key := buildKey("POST", "/loan/create-request", "1", strings.Repeat("c", 32))

	first := idempEntry{InProgress: true, BodySHA256: "h1", RequestKey: "r"}
	ok, err := provisionalSet(ctx, rdb, key, first)
	if err != nil || !ok {
		t.Fatalf("first provisionalSet = %v, %v", ok, err)
	}
	if ttl := mr.TTL(key); ttl != provisionalLockTTL {
		t.Fatalf("provisional TTL = %v, want %v", ttl, provisionalLockTTL)
	}

	ok, err = provisionalSet(ctx, rdb, key, idempEntry{InProgress: true, BodySHA256: "h2"})
	if err != nil || ok {
		t.Fatalf("second provisionalSet must not overwrite: %v, %v", ok, err)
	}

	got, err := loadEntry(ctx, rdb, key)
	if err != nil {
		t.Fatalf("loadEntry: %v", err)
	}
	if !got.InProgress || got.BodySHA256 != "h1" {
		t.Fatalf("unexpected entry %+v", got)
	}

	final := idempEntry{Code: 201, Body: []byte(`{"ok":true}`), BodySHA256: "h1"}
	if err := saveFinal(ctx, rdb, key, final, 5*time.Minute); err != nil {
		t.Fatalf("saveFinal: %v", err)
	}
	if ttl := mr.TTL(key); ttl != 5*time.Minute {
		t.Fatalf("final TTL = %v", ttl)
	}
	got, _ = loadEntry(ctx, rdb, key)
	if got.InProgress || got.Code != 201 || string(got.Body) != `{"ok":true}` {
		t.Fatalf("unexpected final entry %+v", got)
	}

	if err := release(ctx, rdb, key); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := loadEntry(ctx, rdb, key); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected redis.Nil after release, got %v", err)
	}
}

func Test_loadEntry_Corrupt(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	_ = mr.Set("k", "{not json")
	if _, err := loadEntry(context.Background(), rdb, "k"); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}
