package application

import (
	"sync"
	"testing"
)

func TestKeyedMutex(t *testing.T) {
	locks := newKeyedMutex()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  = map[string]int{}
		maxSeen = map[string]int{}
	)
	for i := 0; i < 40; i++ {
		key := []string{"a", "b"}[i%2]
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(key)
			mu.Lock()
			active[key]++
			if active[key] > maxSeen[key] {
				maxSeen[key] = active[key]
			}
			mu.Unlock()

			mu.Lock()
			active[key]--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	for key, seen := range maxSeen {
		if seen != 1 {
			t.Fatalf("expected exclusive access for %s, saw %d holders", key, seen)
		}
	}
	if locks.size() != 0 {
		t.Fatalf("expected idle entries to be released, got %d", locks.size())
	}

	unlock := locks.LockPair("b", "a")
	if locks.size() != 2 {
		t.Fatalf("expected both keys held, got %d", locks.size())
	}
	unlock()
	unlock = locks.LockPair("a", "a")
	if locks.size() != 1 {
		t.Fatalf("expected single key held, got %d", locks.size())
	}
	unlock()
}
