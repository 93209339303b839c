package util

import (
	"strings"
	"testing"
)

func TestNewID(t *testing.T) {
	plain := NewID("")
	if len(plain) != 32 || strings.Contains(plain, "-") {
		t.Fatalf("unexpected id %q", plain)
	}
	prefixed := NewID("req")
	if !strings.HasPrefix(prefixed, "req_") || len(prefixed) != 36 {
		t.Fatalf("unexpected prefixed id %q", prefixed)
	}
	if NewID("req") == prefixed {
		t.Fatal("expected unique ids")
	}
}
