package netutil

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestListening(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	open := ln.Addr().String()

	closedLn, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	closed := closedLn.Addr().String()
	if err := closedLn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	tests := map[string]struct {
		addr string
		want bool
	}{
		"open port":   {addr: open, want: true},
		"closed port": {addr: closed, want: false},
		"bad address": {addr: "not-an-address", want: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := Listening(context.Background(), tc.addr, 500*time.Millisecond, nil); got != tc.want {
				t.Errorf("Listening(%q) = %v, want %v", tc.addr, got, tc.want)
			}
		})
	}
}

func TestLoopbackAddr(t *testing.T) {
	t.Parallel()

	if got := LoopbackAddr(2181); got != "127.0.0.1:2181" {
		t.Errorf("LoopbackAddr(2181) = %q", got)
	}
}
