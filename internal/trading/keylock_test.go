package trading

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerializesPerKey(t *testing.T) {
	locks := NewKeyedMutex()

	// Lost-update counters: each is only ever touched under its key's
	// lock, so any overlap would show up as a short count (or under -race).
	counters := map[string]*int{"AAPL": new(int), "MSFT": new(int)}
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		for key := range counters {
			wg.Add(1)
			go func(key string) {
				defer wg.Done()
				unlock := locks.Lock(key)
				defer unlock()
				*counters[key]++
			}(key)
		}
	}
	wg.Wait()

	assert.Equal(t, 100, *counters["AAPL"])
	assert.Equal(t, 100, *counters["MSFT"])
}

func TestKeyedMutex_BlocksWhileHeld(t *testing.T) {
	locks := NewKeyedMutex()

	unlock := locks.Lock("AAPL")
	acquired := make(chan struct{})
	go func() {
		u := locks.Lock("AAPL")
		u()
		close(acquired)
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-acquired:
		t.Fatal("second Lock on the same key acquired while held")
	default:
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Lock never acquired after unlock")
	}
}
