package widget

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/novavoice/nova-voice/pkg/logging"
)

type fakeHost struct {
	mu           sync.Mutex
	rendered     bool
	inContainer  bool
	strays       int
	relocations  int
	cleanups     int
	inspectErr   error
	lastSelector string
}

func (h *fakeHost) Inspect(ctx context.Context, selector string) (bool, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastSelector = selector
	if h.inspectErr != nil {
		return false, false, h.inspectErr
	}
	return h.rendered, h.inContainer, nil
}

func (h *fakeHost) Relocate(ctx context.Context, selector string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.relocations++
	h.inContainer = true
	return nil
}

func (h *fakeHost) RemoveStrays(ctx context.Context) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cleanups++
	n := h.strays
	h.strays = 0
	return n, nil
}

func (h *fakeHost) snapshot() (relocations, cleanups int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.relocations, h.cleanups
}

func TestRelocatorTick_WaitsForWidget(t *testing.T) {
	host := &fakeHost{}
	r := NewRelocator(host, NewEmbedConfig("agent", "", 0), logging.Default())

	if got := r.Tick(context.Background()); got != TickWaiting {
		t.Fatalf("expected waiting, got %s", got)
	}
	if host.lastSelector != DefaultContainerSelector {
		t.Fatalf("expected default selector, got %q", host.lastSelector)
	}
}

func TestRelocatorTick_IsIdempotent(t *testing.T) {
	host := &fakeHost{rendered: true, strays: 2}
	r := NewRelocator(host, NewEmbedConfig("agent", "#slot", time.Second), logging.Default())

	if got := r.Tick(context.Background()); got != TickRelocated {
		t.Fatalf("first tick = %s, want relocated", got)
	}
	host.strays = 1
	if got := r.Tick(context.Background()); got != TickIdle {
		t.Fatalf("second tick = %s, want idle", got)
	}

	relocations, cleanups := host.snapshot()
	if relocations != 1 {
		t.Fatalf("relocated %d times, want 1", relocations)
	}
	if cleanups != 2 {
		t.Fatalf("stray cleanup ran %d times, want every tick", cleanups)
	}
}

func TestRelocatorTick_InspectError(t *testing.T) {
	host := &fakeHost{inspectErr: errors.New("sidecar down")}
	r := NewRelocator(host, NewEmbedConfig("agent", "", 0), logging.Default())
	if got := r.Tick(context.Background()); got != TickError {
		t.Fatalf("expected error tick, got %s", got)
	}
}

func TestRelocatorRun_StopsOnStop(t *testing.T) {
	host := &fakeHost{rendered: true}
	r := NewRelocator(host, NewEmbedConfig("agent", "", 5*time.Millisecond), logging.Default())

	go r.Run(context.Background())
	time.Sleep(25 * time.Millisecond)
	r.Stop()
	r.Stop()

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("relocator did not stop")
	}

	relocations, cleanups := host.snapshot()
	if relocations != 1 {
		t.Fatalf("relocated %d times, want 1", relocations)
	}
	if cleanups < 2 {
		t.Fatalf("expected repeated ticks, got %d", cleanups)
	}
}

func TestRelocatorRun_StopsOnContextCancel(t *testing.T) {
	r := NewRelocator(&fakeHost{}, NewEmbedConfig("agent", "", 5*time.Millisecond), nil)
	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)
	cancel()

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("relocator did not stop on cancel")
	}
}

func TestRelocatorRun_SecondCallReturns(t *testing.T) {
	host := &fakeHost{}
	r := NewRelocator(host, NewEmbedConfig("agent", "", 5*time.Millisecond), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	deadline := time.Now().Add(time.Second)
	for {
		if _, cleanups := host.snapshot(); cleanups > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first Run never ticked")
		}
		time.Sleep(time.Millisecond)
	}

	returned := make(chan struct{})
	go func() {
		defer close(returned)
		r.Run(ctx)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("second Run did not return")
	}

	r.Stop()
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("relocator did not stop")
	}
}

func TestEmbedConfigDefaults(t *testing.T) {
	cfg := NewEmbedConfig("", "", 0)
	if cfg.Enabled() {
		t.Fatal("config without agent id should be disabled")
	}
	if cfg.PollIntervalMS != 1000 || cfg.ContainerSelector != DefaultContainerSelector {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}
