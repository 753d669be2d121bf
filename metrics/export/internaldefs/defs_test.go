package internaldefs

import (
	"strings"
	"testing"
)

func TestDefinitionsAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	ids := make(map[uint16]struct{})
	for _, def := range CounterDefs {
		if !strings.HasPrefix(def.Name, "bindtoken_") || !strings.HasSuffix(def.Name, "_total") {
			t.Fatalf("unexpected counter name %q", def.Name)
		}
		if _, dup := seen[def.Name]; dup {
			t.Fatalf("duplicate name %q", def.Name)
		}
		if _, dup := ids[uint16(def.ID)]; dup {
			t.Fatalf("duplicate id %d", def.ID)
		}
		seen[def.Name] = struct{}{}
		ids[uint16(def.ID)] = struct{}{}
	}
	if len(HistogramBounds) != len(HistogramBoundSuffix) || len(HistogramBounds) != 8 {
		t.Fatal("bucket bounds and suffixes must both have 8 entries")
	}
}

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [8]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if NormalizeBuckets(nil) != ([8]uint64{}) {
		t.Fatal("expected zero buckets for nil input")
	}
}
