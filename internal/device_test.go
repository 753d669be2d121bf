package internal

import "testing"

func TestValidIP(t *testing.T) {
	cases := map[string]bool{
		"10.0.0.1":         true,
		"2001:db8::1":      true,
		"::ffff:192.0.2.1": true,
		"":                 false,
		"10.0.0.1:8080":    false,
		"fe80::1%eth0":     false,
		"for=10.0.0.1":     false,
		"unknown":          false,
		"999.1.1.1":        false,
	}
	for in, want := range cases {
		if got := ValidIP(in); got != want {
			t.Errorf("ValidIP(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFirstValidIPSkipsInvalidEntries(t *testing.T) {
	ip, ok := FirstValidIP("", "unknown, 203.0.113.7 ,10.0.0.1", "192.0.2.1")
	if !ok || ip != "203.0.113.7" {
		t.Fatalf("expected 203.0.113.7, got %q (ok=%v)", ip, ok)
	}

	if _, ok := FirstValidIP("garbage", "also, garbage"); ok {
		t.Fatal("expected no valid ip")
	}
}

func TestUnreproducibleValue(t *testing.T) {
	a := UnreproducibleValue(1700000000)
	b := UnreproducibleValue(1700000000)
	c := UnreproducibleValue(1700000001)
	if a != b {
		t.Fatal("expected identical ticks to hash identically")
	}
	if a == c {
		t.Fatal("expected different ticks to hash differently")
	}
	if len(a) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(a))
	}
}
