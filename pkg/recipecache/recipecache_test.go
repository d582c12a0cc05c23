package recipecache

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/beerxml/pkg/cache"
	"github.com/matzehuels/beerxml/pkg/errors"
	"github.com/matzehuels/beerxml/pkg/observability"
	"github.com/matzehuels/beerxml/pkg/recipe"
)

var paleAle = []recipe.Recipe{{
	Name:         "Pale Ale",
	Fermentables: []recipe.Fermentable{{Name: "Pale Malt", Amount: 4.5}},
	Hops:         []recipe.Hop{{Name: "Cascade", Amount: 0.028, Time: 60, Use: "Boil", Form: "Pellet", Alpha: 5.5}},
	Yeasts:       []recipe.Yeast{{Name: "US-05", Laboratory: "Fermentis", Attenuation: 78, MinTemperature: 15, MaxTemperature: 22}},
}}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// countingLoader returns its results in order, repeating the last one.
type countingLoader struct {
	calls   atomic.Int32
	results []loadResult
}

type loadResult struct {
	recipes []recipe.Recipe
	err     error
}

func (l *countingLoader) Load(context.Context) ([]recipe.Recipe, error) {
	n := int(l.calls.Add(1)) - 1
	r := l.results[min(n, len(l.results)-1)]
	return r.recipes, r.err
}

func newTestCache() (*Cache, *cache.MemoryCache, *testClock) {
	clock := &testClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := cache.NewMemoryCache(clock.Now)
	return New(store, WithClock(clock.Now)), store, clock
}

func TestGetOrLoadCachesWithinTTL(t *testing.T) {
	ctx := context.Background()
	c, _, clock := newTestCache()
	loader := &countingLoader{results: []loadResult{{recipes: paleAle}}}

	got, err := c.GetOrLoad(ctx, "pale", time.Hour, loader.Load)
	if err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}
	if !reflect.DeepEqual(got, paleAle) {
		t.Errorf("GetOrLoad = %+v, want %+v", got, paleAle)
	}

	clock.Advance(59 * time.Minute)
	got, err = c.GetOrLoad(ctx, "pale", time.Hour, loader.Load)
	if err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}
	if !reflect.DeepEqual(got, paleAle) {
		t.Errorf("cached value = %+v, want %+v", got, paleAle)
	}
	if n := loader.calls.Load(); n != 1 {
		t.Errorf("loader called %d times within TTL, want 1", n)
	}
}

func TestGetOrLoadReloadsAfterTTL(t *testing.T) {
	ctx := context.Background()
	c, _, clock := newTestCache()
	loader := &countingLoader{results: []loadResult{{recipes: paleAle}}}

	_, _ = c.GetOrLoad(ctx, "pale", time.Hour, loader.Load)
	clock.Advance(time.Hour)
	_, _ = c.GetOrLoad(ctx, "pale", time.Hour, loader.Load)

	if n := loader.calls.Load(); n != 2 {
		t.Errorf("loader called %d times, want 2 (expired at exactly storedAt+ttl)", n)
	}
}

func TestGetOrLoadTTLZeroBypasses(t *testing.T) {
	ctx := context.Background()
	c, store, _ := newTestCache()
	loader := &countingLoader{results: []loadResult{{recipes: paleAle}}}

	// A live entry exists but must not be read.
	_, _ = c.GetOrLoad(ctx, "pale", time.Hour, loader.Load)

	for range 3 {
		if _, err := c.GetOrLoad(ctx, "pale", 0, loader.Load); err != nil {
			t.Fatalf("GetOrLoad: %v", err)
		}
	}
	if n := loader.calls.Load(); n != 4 {
		t.Errorf("loader called %d times, want 4", n)
	}

	// And ttl 0 never writes.
	other := &countingLoader{results: []loadResult{{recipes: paleAle}}}
	_, _ = c.GetOrLoad(ctx, "stout", 0, other.Load)
	if store.Len() != 1 {
		t.Errorf("store has %d entries, want 1", store.Len())
	}
}

func TestGetOrLoadNegativeTTLInvalidates(t *testing.T) {
	ctx := context.Background()
	c, store, _ := newTestCache()
	loader := &countingLoader{results: []loadResult{{recipes: paleAle}}}

	_, _ = c.GetOrLoad(ctx, "pale", time.Hour, loader.Load)
	if store.Len() != 1 {
		t.Fatalf("store has %d entries, want 1", store.Len())
	}

	got, err := c.GetOrLoad(ctx, "pale", -1, loader.Load)
	if err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}
	if !reflect.DeepEqual(got, paleAle) {
		t.Errorf("GetOrLoad = %+v", got)
	}
	if n := loader.calls.Load(); n != 2 {
		t.Errorf("loader called %d times, want 2", n)
	}
	if store.Len() != 0 {
		t.Errorf("store has %d entries after ttl -1, want 0", store.Len())
	}

	// The next positive-ttl call is a miss.
	_, _ = c.GetOrLoad(ctx, "pale", time.Hour, loader.Load)
	if n := loader.calls.Load(); n != 3 {
		t.Errorf("loader called %d times, want 3", n)
	}
}

func TestGetOrLoadNeverCachesFailures(t *testing.T) {
	ctx := context.Background()
	c, store, _ := newTestCache()
	fetchErr := errors.New(errors.ErrCodeSourceUnavailable, "connection refused")
	loader := &countingLoader{results: []loadResult{
		{err: fetchErr},
		{recipes: paleAle},
	}}

	_, err := c.GetOrLoad(ctx, "pale", time.Hour, loader.Load)
	if err != fetchErr {
		t.Fatalf("err = %v, want loader error unchanged", err)
	}
	if store.Len() != 0 {
		t.Fatal("failed load was cached")
	}

	got, err := c.GetOrLoad(ctx, "pale", time.Hour, loader.Load)
	if err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d recipes, want 1", len(got))
	}
	if n := loader.calls.Load(); n != 2 {
		t.Errorf("loader called %d times, want 2", n)
	}
}

func TestGetOrLoadNeverCachesEmpty(t *testing.T) {
	ctx := context.Background()
	c, store, _ := newTestCache()
	loader := &countingLoader{results: []loadResult{
		{recipes: []recipe.Recipe{}},
		{recipes: nil},
		{recipes: paleAle},
	}}

	for i := range 2 {
		got, err := c.GetOrLoad(ctx, "pale", time.Hour, loader.Load)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if len(got) != 0 {
			t.Errorf("call %d: got %d recipes, want 0", i, len(got))
		}
	}
	if store.Len() != 0 {
		t.Fatal("empty load was cached")
	}

	_, _ = c.GetOrLoad(ctx, "pale", time.Hour, loader.Load)
	if n := loader.calls.Load(); n != 3 {
		t.Errorf("loader called %d times, want 3", n)
	}
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	c, _, clock := newTestCache()
	loader := &countingLoader{results: []loadResult{{recipes: paleAle}}}
	storedAt := clock.Now()

	miss, err := c.Lookup(ctx, "pale", time.Hour, loader.Load)
	if err != nil {
		t.Fatal(err)
	}
	if miss.Hit || !miss.Stored || !miss.StoredAt.Equal(storedAt) {
		t.Errorf("first Lookup = %+v, want stored miss at %v", miss, storedAt)
	}

	clock.Advance(10 * time.Minute)
	hit, err := c.Lookup(ctx, "pale", time.Hour, loader.Load)
	if err != nil {
		t.Fatal(err)
	}
	if !hit.Hit || hit.Stored || !hit.StoredAt.Equal(storedAt) {
		t.Errorf("second Lookup = %+v, want hit stored at %v", hit, storedAt)
	}
}

func TestCachedValuesAreIndependent(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache()
	loader := &countingLoader{results: []loadResult{{recipes: paleAle}}}

	_, _ = c.GetOrLoad(ctx, "pale", time.Hour, loader.Load)
	first, _ := c.GetOrLoad(ctx, "pale", time.Hour, loader.Load)
	first[0].Fermentables[0].Amount = 9.92

	second, _ := c.GetOrLoad(ctx, "pale", time.Hour, loader.Load)
	if got := second[0].Fermentables[0].Amount; got != 4.5 {
		t.Errorf("cached amount = %v after caller mutation, want 4.5", got)
	}
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache()
	loader := &countingLoader{results: []loadResult{{recipes: paleAle}}}

	_, _ = c.GetOrLoad(ctx, "pale", time.Hour, loader.Load)
	if err := c.Invalidate(ctx, "pale"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	_, _ = c.GetOrLoad(ctx, "pale", time.Hour, loader.Load)
	if n := loader.calls.Load(); n != 2 {
		t.Errorf("loader called %d times, want 2", n)
	}
}

func TestUndecodableEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, store, _ := newTestCache()
	_ = store.Set(ctx, "pale", []byte("not json"), time.Hour)
	loader := &countingLoader{results: []loadResult{{recipes: paleAle}}}

	got, err := c.GetOrLoad(ctx, "pale", time.Hour, loader.Load)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || loader.calls.Load() != 1 {
		t.Errorf("got %d recipes with %d loads, want a fresh load", len(got), loader.calls.Load())
	}
}

// failingStore fails every operation.
type failingStore struct{}

var errBackend = fmt.Errorf("dial tcp: connection refused")

func (failingStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errBackend }
func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errBackend
}
func (failingStore) Delete(context.Context, string) error { return errBackend }
func (failingStore) Close() error                         { return nil }

type recordingHooks struct {
	observability.NoopCacheHooks
	mu     sync.Mutex
	errors []string
}

func (h *recordingHooks) OnCacheError(_ context.Context, _, op string, _ error) {
	h.mu.Lock()
	h.errors = append(h.errors, op)
	h.mu.Unlock()
}

func TestBackendFailureDegradesToLoader(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	c := New(failingStore{})
	loader := &countingLoader{results: []loadResult{{recipes: paleAle}}}

	for _, ttl := range []time.Duration{time.Hour, -1} {
		got, err := c.GetOrLoad(ctx, "pale", ttl, loader.Load)
		if err != nil {
			t.Fatalf("ttl %v: backend error surfaced: %v", ttl, err)
		}
		if !reflect.DeepEqual(got, paleAle) {
			t.Errorf("ttl %v: got %+v", ttl, got)
		}
	}

	want := []string{"get", "set", "delete"}
	if !reflect.DeepEqual(hooks.errors, want) {
		t.Errorf("hook ops = %v, want %v", hooks.errors, want)
	}

	if err := c.Invalidate(ctx, "pale"); err == nil {
		t.Error("Invalidate should report backend failure")
	}
}

func TestConcurrentGetOrLoad(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCache()
	loader := &countingLoader{results: []loadResult{{recipes: paleAle}}}

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("source-%d", i%4)
			got, err := c.GetOrLoad(ctx, key, time.Hour, loader.Load)
			if err != nil || len(got) != 1 {
				t.Errorf("GetOrLoad(%s) = %d recipes, %v", key, len(got), err)
			}
		}()
	}
	wg.Wait()

	if n := loader.calls.Load(); n < 4 || n > 32 {
		t.Errorf("loader called %d times, want between 4 and 32", n)
	}
}

func TestNilStore(t *testing.T) {
	c := New(nil)
	if c.Backend() != cache.BackendNone {
		t.Errorf("Backend() = %q, want %q", c.Backend(), cache.BackendNone)
	}
	loader := &countingLoader{results: []loadResult{{recipes: paleAle}}}
	_, _ = c.GetOrLoad(context.Background(), "k", time.Hour, loader.Load)
	_, _ = c.GetOrLoad(context.Background(), "k", time.Hour, loader.Load)
	if n := loader.calls.Load(); n != 2 {
		t.Errorf("loader called %d times, want 2", n)
	}
}
