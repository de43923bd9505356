package keymutex

import (
	"sync"
	"testing"
)

func TestLock_SerializesSameKey(t *testing.T) {
	locks := New()

	const workers = 32
	counter := 0
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			unlock := locks.Lock("user-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("expected %d increments, got %d", workers, counter)
	}
}

func TestLock_IndependentKeysDoNotBlock(t *testing.T) {
	locks := New()

	unlockA := locks.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock("b")
		unlockB()
		close(done)
	}()

	// A held lock on "a" must not block "b".
	<-done
}

func TestLock_ReentryAfterUnlock(t *testing.T) {
	locks := New()

	unlock := locks.Lock("key")
	unlock()

	unlock = locks.Lock("key")
	unlock()
}
