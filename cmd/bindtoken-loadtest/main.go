package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goBindToken "github.com/MrEthical07/goBindToken"
	"github.com/MrEthical07/goBindToken/namespace"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type clientState struct {
	cc    goBindToken.ClientContext
	token string
}

func main() {
	var (
		clients     = flag.Int("clients", 10000, "number of distinct clients to issue tokens for")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase")
		alg         = flag.String("alg", "HS256", "signing algorithm (HMAC only)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *clients <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "clients, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	ns, err := namespace.Provision(ctx, namespace.NewRedisStore(client, ""))
	if err != nil {
		fmt.Fprintf(os.Stderr, "provision namespace: %v\n", err)
		os.Exit(1)
	}

	cfg := goBindToken.DefaultConfig()
	cfg.SigningKey = []byte("loadtest-signing-key-0123456789abcdef")
	cfg.Algorithm = *alg
	cfg.Namespace = ns
	cfg.Metrics.EnableLatencyHistograms = true
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	codec := goBindToken.NewCodec(cfg)
	defer codec.Close()

	states := make([]clientState, *clients)
	for i := range states {
		states[i].cc = clientFor(i)
	}

	encodeStats := runPhase(*ops, *concurrency, len(states), func(idx int) bool {
		token := codec.Encode(states[idx].cc, goBindToken.Claims{"uid": idx, "exp": time.Now().Add(time.Hour).Unix()})
		if token == "" {
			return false
		}
		states[idx].token = token
		return true
	}, true)

	// Every client needs a token before the decode phases.
	for i := range states {
		if states[i].token == "" {
			states[i].token = codec.Encode(states[i].cc, goBindToken.Claims{"uid": i})
		}
	}

	decodeStats := runPhase(*ops, *concurrency, len(states), func(idx int) bool {
		return len(codec.Decode(states[idx].cc, states[idx].token)) > 0
	}, false)

	mismatchStats := runPhase(*ops, *concurrency, len(states), func(idx int) bool {
		other := clientFor(idx + len(states))
		return len(codec.Decode(other, states[idx].token)) == 0
	}, false)

	fmt.Println("---- results ----")
	printStats("encode", encodeStats)
	printStats("decode", decodeStats)
	printStats("decode-mismatch", mismatchStats)

	snap := codec.MetricsSnapshot()
	fmt.Printf("accepted=%d rejected_context=%d latency_buckets=%v\n",
		snap.Counters[goBindToken.MetricDecodeAccepted],
		snap.Counters[goBindToken.MetricDecodeRejectedContext],
		snap.Histograms[goBindToken.MetricDecodeLatency],
	)
}

func clientFor(i int) goBindToken.ClientContext {
	return goBindToken.ClientContext{
		UserAgent: fmt.Sprintf("loadtest-agent/%d", i%97),
		IP:        fmt.Sprintf("10.%d.%d.%d", (i>>16)&0xFF, (i>>8)&0xFF, i&0xFF),
	}
}

// runPhase runs op against random client indexes. With serialize set, ops on the
// same index never overlap.
func runPhase(ops, concurrency, n int, op func(idx int) bool, serialize bool) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
		locks     []sync.Mutex
	)
	if serialize {
		locks = make([]sync.Mutex, n)
	}

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(n)
				if locks != nil {
					locks[idx].Lock()
				}
				t0 := time.Now()
				ok := op(idx)
				d := time.Since(t0)
				if locks != nil {
					locks[idx].Unlock()
				}
				if !ok {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
