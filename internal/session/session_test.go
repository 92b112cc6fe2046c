package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/food-storefront/internal/cart"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRegistry(idle time.Duration) (*Registry, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	r := NewRegistry(idle)
	r.now = clock.Now
	return r, clock
}

func TestAcquire(t *testing.T) {
	r, _ := newTestRegistry(time.Hour)

	s, created := r.Acquire("")
	require.True(t, created)
	require.NotEmpty(t, s.ID)

	again, created := r.Acquire(s.ID)
	assert.False(t, created)
	assert.Same(t, s, again)

	other, created := r.Acquire("no-such-session")
	assert.True(t, created)
	assert.NotEqual(t, s.ID, other.ID)
	assert.Equal(t, 2, r.Len())
}

func TestGetUnknown(t *testing.T) {
	r, _ := newTestRegistry(time.Hour)
	_, err := r.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartsAreIsolated(t *testing.T) {
	r, _ := newTestRegistry(time.Hour)
	a := r.Create()
	b := r.Create()

	require.NoError(t, a.Do(func(c *cart.Store) error {
		c.AddItem("1")
		return nil
	}))

	var countB int
	require.NoError(t, b.Do(func(c *cart.Store) error {
		countB = c.TotalItemCount()
		return nil
	}))
	assert.Zero(t, countB)
}

func TestSweepRemovesIdleSessions(t *testing.T) {
	r, clock := newTestRegistry(30 * time.Minute)
	stale := r.Create()
	clock.Advance(20 * time.Minute)
	fresh := r.Create()

	clock.Advance(15 * time.Minute)
	assert.Equal(t, 1, r.Sweep())

	_, err := r.Get(stale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestGetRefreshesLastSeen(t *testing.T) {
	r, clock := newTestRegistry(30 * time.Minute)
	s := r.Create()

	clock.Advance(25 * time.Minute)
	_, err := r.Get(s.ID)
	require.NoError(t, err)

	clock.Advance(25 * time.Minute)
	assert.Zero(t, r.Sweep())
}

func TestSweepDisabled(t *testing.T) {
	r, clock := newTestRegistry(0)
	r.Create()
	clock.Advance(1000 * time.Hour)
	assert.Zero(t, r.Sweep())
	assert.Equal(t, 1, r.Len())
}

func TestDoSerializesConcurrentMutations(t *testing.T) {
	r := NewRegistry(time.Hour)
	s := r.Create()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = s.Do(func(c *cart.Store) error {
					c.AddItem("1")
					return nil
				})
			}
		}()
	}
	wg.Wait()

	_ = s.Do(func(c *cart.Store) error {
		assert.Equal(t, 1000, c.Quantity("1"))
		return nil
	})
}

func TestSweepAndGetDoNotWaitOnBusyCart(t *testing.T) {
	r, clock := newTestRegistry(30 * time.Minute)
	busy := r.Create()
	idle := r.Create()
	other := r.Create()
	clock.Advance(time.Hour)
	_, err := r.Get(other.ID)
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = busy.Do(func(*cart.Store) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered
	defer close(release)

	done := make(chan int)
	go func() {
		n := r.Sweep()
		_, _ = r.Get(other.ID)
		r.Create()
		done <- n
	}()

	select {
	case n := <-done:
		assert.Equal(t, 2, n, "busy and idle sessions were both stale")
	case <-time.After(2 * time.Second):
		t.Fatal("sweep blocked behind a session holding its cart")
	}
	_, err = r.Get(idle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
