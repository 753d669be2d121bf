// Command bindtoken issues and checks client-bound tokens from the shell.
//
//	bindtoken namespace [-redis-addr addr]
//	bindtoken encode -ua UA -ip IP [-claims JSON]
//	bindtoken decode -ua UA -ip IP -token TOKEN
//
// The signing key, algorithm and namespace come from BINDTOKEN_KEY, BINDTOKEN_ALG
// and BINDTOKEN_NAMESPACE. When the namespace is unset and a Redis address is given
// (flag or REDIS_ADDR) the shared namespace is provisioned there.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	goBindToken "github.com/MrEthical07/goBindToken"
	"github.com/MrEthical07/goBindToken/namespace"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const usage = `usage:
  bindtoken namespace [-redis-addr addr] [-key name]
  bindtoken encode -ua UA -ip IP [-claims JSON] [-redis-addr addr]
  bindtoken decode -ua UA -ip IP -token TOKEN [-redis-addr addr]`

func main() {
	os.Exit(run(os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

type env func(string) string

func run(args []string, getenv env, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage)
		return 2
	}

	ctx := context.Background()
	switch args[0] {
	case "namespace":
		return runNamespace(ctx, args[1:], getenv, stdout, stderr)
	case "encode":
		return runEncode(ctx, args[1:], getenv, stdout, stderr)
	case "decode":
		return runDecode(ctx, args[1:], getenv, stdout, stderr)
	default:
		fmt.Fprintln(stderr, usage)
		return 2
	}
}

type commonFlags struct {
	redisAddr string
	redisKey  string
	verbose   bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.redisAddr, "redis-addr", "", "redis address holding the shared namespace; falls back to REDIS_ADDR")
	fs.StringVar(&c.redisKey, "key", "", "redis key of the shared namespace")
	fs.BoolVar(&c.verbose, "v", false, "log codec audit events and rejection reasons to stderr")
}

func runNamespace(ctx context.Context, args []string, getenv env, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("namespace", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ns, err := resolveNamespace(ctx, "", common, getenv, true)
	if err != nil {
		fmt.Fprintf(stderr, "namespace: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, ns)
	return 0
}

func runEncode(ctx context.Context, args []string, getenv env, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		common commonFlags
		ua     = fs.String("ua", "", "client user agent")
		ip     = fs.String("ip", "", "client ip address")
		raw    = fs.String("claims", "{}", "claims as a JSON object")
		ttl    = fs.Duration("ttl", 0, "set exp to now+ttl when positive")
	)
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var claims goBindToken.Claims
	if err := json.Unmarshal([]byte(*raw), &claims); err != nil {
		fmt.Fprintf(stderr, "encode: claims must be a JSON object: %v\n", err)
		return 2
	}

	codec, logger, err := buildCodec(ctx, common, getenv, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "encode: %v\n", err)
		return 1
	}
	defer logger.Sync()
	defer codec.Close()

	now := time.Now()
	if *ttl > 0 {
		if claims == nil {
			claims = goBindToken.Claims{}
		}
		claims[goBindToken.ClaimExpiry] = now.Add(*ttl).Unix()
	}

	token := codec.Encode(goBindToken.ClientContext{UserAgent: *ua, IP: *ip, Now: now}, claims)
	if token == "" {
		fmt.Fprintln(stderr, "encode: no token issued")
		return 1
	}
	fmt.Fprintln(stdout, token)
	return 0
}

func runDecode(ctx context.Context, args []string, getenv env, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		common commonFlags
		ua     = fs.String("ua", "", "client user agent")
		ip     = fs.String("ip", "", "client ip address")
		token  = fs.String("token", "", "token to check")
	)
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	codec, logger, err := buildCodec(ctx, common, getenv, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "decode: %v\n", err)
		return 1
	}
	defer logger.Sync()
	defer codec.Close()

	claims := codec.Decode(goBindToken.ClientContext{UserAgent: *ua, IP: *ip}, *token)
	out, err := json.Marshal(claims)
	if err != nil {
		fmt.Fprintf(stderr, "decode: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, string(out))
	if len(claims) == 0 {
		return 1
	}
	return 0
}

func buildCodec(ctx context.Context, common commonFlags, getenv env, stderr io.Writer) (*goBindToken.Codec, *zap.Logger, error) {
	logger := newLogger(common.verbose, stderr)

	ns, err := resolveNamespace(ctx, getenv("BINDTOKEN_NAMESPACE"), common, getenv, false)
	if err != nil {
		return nil, nil, err
	}

	cfg := goBindToken.DefaultConfig()
	cfg.SigningKey = []byte(getenv("BINDTOKEN_KEY"))
	cfg.Algorithm = getenv("BINDTOKEN_ALG")
	if cfg.Algorithm == "" {
		cfg.Algorithm = "HS256"
	}
	cfg.Namespace = ns

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	for _, w := range cfg.Lint() {
		logger.Warn("config lint", zap.String("code", w.Code), zap.String("message", w.Message))
	}

	codec := goBindToken.NewCodec(cfg, goBindToken.WithAuditSink(goBindToken.NewZapSink(logger)))
	return codec, logger, nil
}

// resolveNamespace prefers an explicit value, then the shared Redis value. With
// generate set and no Redis it mints a fresh namespace.
func resolveNamespace(ctx context.Context, explicit string, common commonFlags, getenv env, generate bool) (string, error) {
	if explicit != "" {
		return goBindToken.ParseNamespace(explicit)
	}

	addr := common.redisAddr
	if addr == "" {
		addr = getenv("REDIS_ADDR")
	}
	if addr == "" {
		if generate {
			return goBindToken.GenerateNamespace()
		}
		return "", nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ns, err := namespace.Provision(ctx, namespace.NewRedisStore(client, common.redisKey))
	if err != nil {
		return "", fmt.Errorf("provision namespace at %s: %w", addr, err)
	}
	return ns, nil
}

func newLogger(verbose bool, stderr io.Writer) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewProductionEncoderConfig())
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(stderr), level))
}
