package namespace

import (
	"context"
	"errors"
	"sync"
	"testing"

	goBindToken "github.com/MrEthical07/goBindToken"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func TestProvisionGeneratesOnce(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, "")
	ctx := context.Background()

	first, err := Provision(ctx, store)
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if _, err := goBindToken.ParseNamespace(first); err != nil {
		t.Fatalf("provisioned value does not parse: %v", err)
	}
	if got, _ := mr.Get(defaultKey); got != first {
		t.Fatalf("expected %q stored under %s, got %q", first, defaultKey, got)
	}
	if ttl := mr.TTL(defaultKey); ttl != 0 {
		t.Fatalf("expected no expiry, got %v", ttl)
	}

	second, err := Provision(ctx, store)
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if second != first {
		t.Fatalf("expected stable namespace, got %q then %q", first, second)
	}
}

func TestProvisionConcurrentConverges(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	const workers = 16
	results := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Provision(ctx, NewRedisStore(rdb, "ns:shared"))
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Fatalf("workers disagree: %q vs %q", results[i], results[0])
		}
	}
}

func TestStoreIfAbsentKeepsExisting(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, "ns")
	ctx := context.Background()

	const a = "3f2a6c1e-8b7d-4e1a-9c5f-2d4b6a8e0f13"
	const b = "9b2d7c64-1f3e-4a5b-8c6d-7e8f9a0b1c2d"

	got, err := store.StoreIfAbsent(ctx, a)
	if err != nil || got != a {
		t.Fatalf("expected %q, got %q (%v)", a, got, err)
	}
	got, err = store.StoreIfAbsent(ctx, b)
	if err != nil || got != a {
		t.Fatalf("expected existing %q to win, got %q (%v)", a, got, err)
	}

	if _, err := store.StoreIfAbsent(ctx, "bogus"); !errors.Is(err, goBindToken.ErrNamespaceInvalid) {
		t.Fatalf("expected ErrNamespaceInvalid, got %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, "ns")
	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mr.Set("ns", "not-a-uuid"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if _, err := Provision(ctx, store); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected Provision to surface corruption, got %v", err)
	}

	mr.Close()
	if _, err := store.Load(ctx); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}

func TestProvisionNilStore(t *testing.T) {
	if _, err := Provision(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestProvisionedNamespaceSharedAcrossCodecs(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	nsA, err := Provision(ctx, NewRedisStore(rdb, ""))
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	nsB, err := Provision(ctx, NewRedisStore(rdb, ""))
	if err != nil {
		t.Fatalf("provision: %v", err)
	}

	cfg := goBindToken.DefaultConfig()
	cfg.SigningKey = []byte("s3cret")
	cfg.Algorithm = "HS256"

	cfg.Namespace = nsA
	issuer := goBindToken.NewCodec(cfg)
	cfg.Namespace = nsB
	verifier := goBindToken.NewCodec(cfg)

	cc := goBindToken.ClientContext{UserAgent: "agentA", IP: "10.0.0.1"}
	token := issuer.Encode(cc, goBindToken.Claims{"uid": 1})
	if got := verifier.Decode(cc, token); got["uid"] != int64(1) {
		t.Fatalf("expected the second instance to accept the token, got %v", got)
	}
}
