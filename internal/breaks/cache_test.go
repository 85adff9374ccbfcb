package breaks

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestFingerprint(t *testing.T) {
	a := Event{ID: "a", Start: at(9, 0), End: at(9, 30)}
	b := Event{ID: "b", Start: at(10, 0), End: at(10, 30)}

	t.Run("empty set", func(t *testing.T) {
		assert.Equal(t, "no_events", Fingerprint(nil))
	})

	t.Run("short and deterministic", func(t *testing.T) {
		fp := Fingerprint([]Event{a, b})
		assert.Len(t, fp, 16)
		assert.Equal(t, fp, Fingerprint([]Event{a, b}))
	})

	t.Run("permutation invariant", func(t *testing.T) {
		assert.Equal(t, Fingerprint([]Event{a, b}), Fingerprint([]Event{b, a}))
	})

	t.Run("changes with id start or end", func(t *testing.T) {
		base := Fingerprint([]Event{a, b})

		renamed := a
		renamed.ID = "a2"
		assert.NotEqual(t, base, Fingerprint([]Event{renamed, b}))

		moved := a
		moved.Start = at(9, 5)
		assert.NotEqual(t, base, Fingerprint([]Event{moved, b}))

		extended := b
		extended.End = at(10, 45)
		assert.NotEqual(t, base, Fingerprint([]Event{a, extended}))
	})

	t.Run("ignores title", func(t *testing.T) {
		retitled := a
		retitled.Title = "Renamed"
		assert.Equal(t, Fingerprint([]Event{a, b}), Fingerprint([]Event{retitled, b}))
	})

	t.Run("caps to the soonest events", func(t *testing.T) {
		var events []Event
		for i := 0; i < MaxFingerprintEvents; i++ {
			start := at(9, 0).Add(time.Duration(i) * time.Hour)
			events = append(events, Event{ID: fmt.Sprintf("e%02d", i), Start: start, End: start.Add(30 * time.Minute)})
		}
		base := Fingerprint(events)

		far := at(9, 0).Add(1000 * time.Hour)
		withExtra := append(append([]Event{}, events...), Event{ID: "far", Start: far, End: far.Add(time.Hour)})
		assert.Equal(t, base, Fingerprint(withExtra))
	})
}

func TestMemoryCache(t *testing.T) {
	clock := &fakeClock{now: testNow}
	stored := []Break{candidate("a->b", 9, 32, 11)}

	t.Run("miss on empty cache", func(t *testing.T) {
		c := NewMemoryCache(time.Hour).WithClock(clock.Now)
		_, ok := c.Get("user:breaks", "fp")
		assert.False(t, ok)
	})

	t.Run("hit with matching fingerprint", func(t *testing.T) {
		c := NewMemoryCache(time.Hour).WithClock(clock.Now)
		c.Set("user:breaks", stored, "fp")

		got, ok := c.Get("user:breaks", "fp")
		require.True(t, ok)
		assert.Equal(t, stored, got)
	})

	t.Run("empty list is a hit", func(t *testing.T) {
		c := NewMemoryCache(time.Hour).WithClock(clock.Now)
		c.Set("user:breaks", nil, "fp")

		got, ok := c.Get("user:breaks", "fp")
		require.True(t, ok)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("fingerprint mismatch evicts", func(t *testing.T) {
		c := NewMemoryCache(time.Hour).WithClock(clock.Now)
		c.Set("user:breaks", stored, "old")

		_, ok := c.Get("user:breaks", "new")
		assert.False(t, ok)
		assert.Equal(t, 0, c.Len())

		_, ok = c.Get("user:breaks", "old")
		assert.False(t, ok, "stale entry must not come back")
	})

	t.Run("expires after ttl", func(t *testing.T) {
		local := &fakeClock{now: testNow}
		c := NewMemoryCache(time.Hour).WithClock(local.Now)
		c.Set("user:breaks", stored, "fp")

		local.Advance(59 * time.Minute)
		_, ok := c.Get("user:breaks", "fp")
		assert.True(t, ok)

		local.Advance(time.Minute)
		_, ok = c.Get("user:breaks", "fp")
		assert.False(t, ok)
	})

	t.Run("set overwrites", func(t *testing.T) {
		c := NewMemoryCache(time.Hour).WithClock(clock.Now)
		c.Set("user:breaks", stored, "fp1")
		c.Set("user:breaks", nil, "fp2")

		got, ok := c.Get("user:breaks", "fp2")
		require.True(t, ok)
		assert.Empty(t, got)
	})

	t.Run("returned slices are copies", func(t *testing.T) {
		c := NewMemoryCache(time.Hour).WithClock(clock.Now)
		input := []Break{candidate("a->b", 9, 32, 11)}
		c.Set("k", input, "fp")
		input[0].Activity = ActivityRest

		got, _ := c.Get("k", "fp")
		got[0].Activity = ActivitySnack

		again, _ := c.Get("k", "fp")
		assert.Equal(t, ActivityStretch, again[0].Activity)
	})

	t.Run("keys are independent", func(t *testing.T) {
		c := NewMemoryCache(time.Hour).WithClock(clock.Now)
		c.Set("alice", stored, "fp")
		_, ok := c.Get("bob", "fp")
		assert.False(t, ok)
	})

	t.Run("purge and clear", func(t *testing.T) {
		local := &fakeClock{now: testNow}
		c := NewMemoryCache(time.Hour).WithClock(local.Now)
		c.Set("old", stored, "fp")
		local.Advance(2 * time.Hour)
		c.Set("fresh", stored, "fp")

		assert.Equal(t, 1, c.PurgeExpired())
		assert.Equal(t, 1, c.Len())

		c.Clear()
		assert.Equal(t, 0, c.Len())
	})

	t.Run("default ttl", func(t *testing.T) {
		assert.Equal(t, DefaultCacheTTL, NewMemoryCache(0).TTL())
	})
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	stored := []Break{candidate("a->b", 9, 32, 11)}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("user-%d", i%5)
			if _, ok := c.Get(key, "fp"); !ok {
				c.Set(key, stored, "fp")
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		got, ok := c.Get(fmt.Sprintf("user-%d", i), "fp")
		require.True(t, ok)
		assert.Equal(t, stored, got)
	}
}
