package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

const testNamespace = "3f2a6c1e-8b7d-4e1a-9c5f-2d4b6a8e0f13"

func fakeEnv(values map[string]string) env {
	return func(k string) string { return values[k] }
}

func runCmd(t *testing.T, getenv env, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, getenv, &stdout, &stderr)
	return code, strings.TrimSpace(stdout.String()), stderr.String()
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	getenv := fakeEnv(map[string]string{
		"BINDTOKEN_KEY":       "s3cret",
		"BINDTOKEN_ALG":       "HS256",
		"BINDTOKEN_NAMESPACE": testNamespace,
	})

	code, token, stderr := runCmd(t, getenv, "encode", "-ua", "agentA", "-ip", "10.0.0.1", "-claims", `{"uid":42}`)
	if code != 0 || token == "" {
		t.Fatalf("encode failed: code=%d stderr=%s", code, stderr)
	}
	if !strings.Contains(stderr, "hmac_key_short") {
		t.Fatalf("expected lint warning on stderr, got %q", stderr)
	}

	code, out, _ := runCmd(t, getenv, "decode", "-ua", "agentA", "-ip", "10.0.0.1", "-token", token)
	if code != 0 || out != `{"uid":42}` {
		t.Fatalf("decode: code=%d out=%s", code, out)
	}

	code, out, stderr = runCmd(t, getenv, "decode", "-v", "-ua", "agentB", "-ip", "10.0.0.1", "-token", token)
	if code != 1 || out != "{}" {
		t.Fatalf("expected rejection, got code=%d out=%s", code, out)
	}
	if !strings.Contains(stderr, "context_mismatch") {
		t.Fatalf("expected verbose rejection reason, got %q", stderr)
	}
}

func TestEncodeWithTTL(t *testing.T) {
	getenv := fakeEnv(map[string]string{
		"BINDTOKEN_KEY":       "s3cret",
		"BINDTOKEN_NAMESPACE": testNamespace,
	})

	code, token, _ := runCmd(t, getenv, "encode", "-ua", "a", "-ip", "10.0.0.1", "-ttl", "1h")
	if code != 0 {
		t.Fatalf("encode failed: %d", code)
	}
	code, out, _ := runCmd(t, getenv, "decode", "-ua", "a", "-ip", "10.0.0.1", "-token", token)
	if code != 0 || !strings.Contains(out, `"exp":`) {
		t.Fatalf("expected exp in decoded claims, got code=%d out=%s", code, out)
	}
}

func TestEncodeWithoutKeyIssuesNothing(t *testing.T) {
	code, out, stderr := runCmd(t, fakeEnv(nil), "encode", "-ua", "a", "-ip", "10.0.0.1")
	if code != 1 || out != "" {
		t.Fatalf("expected failure, got code=%d out=%s", code, out)
	}
	if !strings.Contains(stderr, "signing_disabled") {
		t.Fatalf("expected signing_disabled lint, got %q", stderr)
	}
}

func TestInvalidInputs(t *testing.T) {
	getenv := fakeEnv(map[string]string{"BINDTOKEN_KEY": "k", "BINDTOKEN_ALG": "none"})

	if code, _, _ := runCmd(t, getenv); code != 2 {
		t.Fatalf("expected usage error, got %d", code)
	}
	if code, _, _ := runCmd(t, getenv, "bogus"); code != 2 {
		t.Fatalf("expected usage error, got %d", code)
	}
	if code, _, _ := runCmd(t, getenv, "encode", "-claims", "[1]"); code != 2 {
		t.Fatalf("expected claims error, got %d", code)
	}
	if code, _, stderr := runCmd(t, getenv, "encode"); code != 1 || !strings.Contains(stderr, "unsupported algorithm") {
		t.Fatalf("expected config error, got %d %q", code, stderr)
	}
}

func TestNamespaceGenerateAndProvision(t *testing.T) {
	code, ns, _ := runCmd(t, fakeEnv(nil), "namespace")
	if code != 0 || len(ns) != 36 {
		t.Fatalf("expected a generated namespace, got code=%d %q", code, ns)
	}

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	defer mr.Close()

	code, first, _ := runCmd(t, fakeEnv(nil), "namespace", "-redis-addr", mr.Addr())
	if code != 0 {
		t.Fatalf("provision failed: %d", code)
	}
	code, second, _ := runCmd(t, fakeEnv(map[string]string{"REDIS_ADDR": mr.Addr()}), "namespace")
	if code != 0 || second != first {
		t.Fatalf("expected stable provisioned namespace, got %q then %q", first, second)
	}

	getenv := fakeEnv(map[string]string{"BINDTOKEN_KEY": "s3cret", "REDIS_ADDR": mr.Addr()})
	_, token, _ := runCmd(t, getenv, "encode", "-ua", "a", "-ip", "10.0.0.1")
	explicit := fakeEnv(map[string]string{"BINDTOKEN_KEY": "s3cret", "BINDTOKEN_NAMESPACE": first})
	if code, _, _ := runCmd(t, explicit, "decode", "-ua", "a", "-ip", "10.0.0.1", "-token", token); code != 0 {
		t.Fatal("expected a token issued with the provisioned namespace to decode")
	}
}
