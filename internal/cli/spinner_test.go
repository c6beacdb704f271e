package cli

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerBasic(t *testing.T) {
	var w syncBuffer
	s := newSpinner(context.Background(), &w, "Connecting...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !bytes.Contains([]byte(w.String()), []byte("Connecting...")) {
		t.Errorf("spinner output %q does not contain the message", w.String())
	}
	if !s.Cancelled() {
		t.Error("Cancelled() = false after Stop")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinner(ctx, &syncBuffer{}, "Testing with context...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), &syncBuffer{}, "Testing idempotent stop...")
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestWithSpinner(t *testing.T) {
	tests := []struct {
		name        string
		interactive bool
		wantOutput  bool
	}{
		{"interactive", true, true},
		{"quiet", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w syncBuffer
			got, err := withSpinner(context.Background(), &w, tt.interactive, "wait", func() (int, error) {
				time.Sleep(150 * time.Millisecond)
				return 42, nil
			})
			if err != nil || got != 42 {
				t.Fatalf("withSpinner() = %d, %v", got, err)
			}
			if (w.String() != "") != tt.wantOutput {
				t.Errorf("output = %q, want output %v", w.String(), tt.wantOutput)
			}
		})
	}
}

func TestWithSpinnerError(t *testing.T) {
	want := errors.New("boom")
	_, err := withSpinner(context.Background(), &syncBuffer{}, true, "wait", func() (string, error) {
		return "", want
	})
	if !errors.Is(err, want) {
		t.Errorf("withSpinner() error = %v, want %v", err, want)
	}
}
