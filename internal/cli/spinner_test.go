package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
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

func TestSpinnerDrawsMessage(t *testing.T) {
	var out syncBuffer
	s := newSpinner(&out, "Loading pale-ale.xml")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(out.String(), "Loading pale-ale.xml") {
		t.Errorf("output = %q, want message", out.String())
	}
	if s.Cancelled() {
		t.Error("Cancelled() = true after Stop, want false")
	}
}

func TestSpinnerUpdate(t *testing.T) {
	var out syncBuffer
	s := newSpinner(&out, "Loading 2 document(s)...")
	s.Start()
	s.Update("Loaded 1/2 documents...")
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(out.String(), "Loaded 1/2 documents...") {
		t.Errorf("output = %q, want updated message", out.String())
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, &syncBuffer{}, "Testing with context...")
	s.Start()
	cancel()

	if !s.Cancelled() {
		t.Error("Cancelled() = false after context cancellation")
	}
	s.Stop()
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, &syncBuffer{}, "Testing with timeout...")
	s.Start()
	<-ctx.Done()

	if !s.Cancelled() {
		t.Error("Cancelled() = false after context timeout")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(&syncBuffer{}, "Testing idempotent stop...")
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithStatus(t *testing.T) {
	var status bytes.Buffer
	restore := statusOut
	statusOut = &status
	t.Cleanup(func() { statusOut = restore })

	s := newSpinner(&syncBuffer{}, "Testing...")
	s.Start()
	s.StopWithSuccess("Done!")

	s = newSpinner(&syncBuffer{}, "Testing...")
	s.Start()
	s.StopWithError("Failed!")

	got := status.String()
	for _, want := range []string{"Done!", "Failed!"} {
		if !strings.Contains(got, want) {
			t.Errorf("status output = %q, want %q", got, want)
		}
	}
}
