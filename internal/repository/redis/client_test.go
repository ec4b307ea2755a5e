package redis

import (
	"context"
	"testing"
)

func TestNewClientWithoutAddress(t *testing.T) {
	if client := NewClient(context.Background(), "", "", 0); client != nil {
		t.Fatalf("expected cache to be disabled without an address")
	}
}

func TestNewClientUnreachable(t *testing.T) {
	// Nothing listens on port 1; the ping fails and the cache stays disabled.
	if client := NewClient(context.Background(), "127.0.0.1:1", "", 0); client != nil {
		t.Fatalf("expected nil client for an unreachable server")
	}
}
