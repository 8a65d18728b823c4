package simulator

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualScheduler_OrderAndTies(t *testing.T) {
	start := time.Unix(1700000000, 0)
	s := NewManualScheduler(start)

	var fired []string
	s.Every(time.Second, func() { fired = append(fired, "track@"+s.Now().Sub(start).String()) })
	s.Every(2*time.Second, func() { fired = append(fired, "vital@"+s.Now().Sub(start).String()) })
	s.After(1500*time.Millisecond, func() { fired = append(fired, "once@"+s.Now().Sub(start).String()) })

	s.Advance(4 * time.Second)

	assert.Equal(t, []string{
		"track@1s",
		"once@1.5s",
		"track@2s",
		"vital@2s",
		"track@3s",
		"track@4s",
		"vital@4s",
	}, fired)
	assert.Equal(t, start.Add(4*time.Second), s.Now())
}

func TestManualScheduler_Cancel(t *testing.T) {
	s := NewManualScheduler(time.Unix(0, 0))

	count := 0
	cancel := s.Every(time.Second, func() { count++ })
	s.Advance(3 * time.Second)
	cancel()
	cancel()
	s.Advance(3 * time.Second)

	assert.Equal(t, 3, count)
	assert.Equal(t, 0, s.Pending())
}

func TestManualScheduler_ChainedAfter(t *testing.T) {
	s := NewManualScheduler(time.Unix(0, 0))

	var at []int64
	var next func()
	next = func() {
		at = append(at, s.Now().UnixMilli())
		s.After(300*time.Millisecond, next)
	}
	s.After(300*time.Millisecond, next)

	s.Advance(time.Second)
	assert.Equal(t, []int64{300, 600, 900}, at)
	assert.Equal(t, 1, s.Pending())
}

func TestTickerScheduler_EveryAndCancel(t *testing.T) {
	s := NewTickerScheduler()

	var count atomic.Int32
	cancel := s.Every(5*time.Millisecond, func() { count.Add(1) })

	assert.Eventually(t, func() bool { return count.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	stopped := count.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, count.Load())
	cancel()
}

func TestTickerScheduler_SerializesCallbacks(t *testing.T) {
	s := NewTickerScheduler()

	var (
		mu      sync.Mutex
		running int
		overlap bool
		calls   atomic.Int32
	)
	work := func() {
		mu.Lock()
		running++
		if running > 1 {
			overlap = true
		}
		mu.Unlock()

		time.Sleep(2 * time.Millisecond)
		calls.Add(1)

		mu.Lock()
		running--
		mu.Unlock()
	}

	c1 := s.Every(time.Millisecond, work)
	c2 := s.Every(time.Millisecond, work)
	assert.Eventually(t, func() bool { return calls.Load() >= 10 }, time.Second, time.Millisecond)
	c1()
	c2()

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, overlap)
}

func TestTickerScheduler_AfterCancelledBeforeFire(t *testing.T) {
	s := NewTickerScheduler()

	var fired atomic.Bool
	cancel := s.After(50*time.Millisecond, func() { fired.Store(true) })
	cancel()
	time.Sleep(80 * time.Millisecond)
	assert.False(t, fired.Load())
}
