package assignment

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimerRegistry_ArmFires(t *testing.T) {
	t.Parallel()

	reg := NewTimers()
	fired := make(chan struct{})
	reg.Arm("ord-1", time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestTimerRegistry_RearmReplacesOldTimer(t *testing.T) {
	t.Parallel()

	reg := NewTimers()
	var first, second atomic.Int32
	fired := make(chan struct{})

	reg.Arm("ord-1", 20*time.Millisecond, func() { first.Add(1) })
	reg.Arm("ord-1", time.Millisecond, func() {
		second.Add(1)
		close(fired)
	})

	<-fired
	time.Sleep(50 * time.Millisecond)
	require.EqualValues(t, 0, first.Load())
	require.EqualValues(t, 1, second.Load())
}

func TestTimerRegistry_CancelStopsTimer(t *testing.T) {
	t.Parallel()

	reg := NewTimers()
	var fired atomic.Int32
	reg.Arm("ord-1", 10*time.Millisecond, func() { fired.Add(1) })
	reg.Cancel("ord-1")

	time.Sleep(50 * time.Millisecond)
	require.EqualValues(t, 0, fired.Load())
}

func TestTimerRegistry_CancelUnknownIsNoOp(t *testing.T) {
	t.Parallel()

	NewTimers().Cancel("missing")
}

func TestKeyedLocks_SerializesSameKey(t *testing.T) {
	t.Parallel()

	locks := newKeyedLocks()
	var active, maxActive atomic.Int32
	done := make(chan struct{})

	for i := 0; i < 16; i++ {
		go func() {
			unlock := locks.Lock("ord-1")
			defer unlock()
			defer func() { done <- struct{}{} }()

			cur := active.Add(1)
			if cur > maxActive.Load() {
				maxActive.Store(cur)
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
		}()
	}
	for i := 0; i < 16; i++ {
		<-done
	}
	require.EqualValues(t, 1, maxActive.Load())
}

func TestKeyedLocks_DropsUnusedEntries(t *testing.T) {
	t.Parallel()

	locks := newKeyedLocks()
	unlock := locks.Lock("ord-1")
	unlock()

	locks.mu.Lock()
	defer locks.mu.Unlock()
	require.Empty(t, locks.locks)
}

func TestKeyedLocks_IndependentKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	locks := newKeyedLocks()
	unlock1 := locks.Lock("ord-1")
	defer unlock1()

	acquired := make(chan struct{})
	go func() {
		unlock2 := locks.Lock("ord-2")
		unlock2()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("independent key blocked")
	}
}
