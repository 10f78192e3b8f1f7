package randutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	a, b := New(42), New(42)
	for range 100 {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}

func TestNewDifferentSeeds(t *testing.T) {
	a, b := New(1), New(2)
	same := 0
	for range 100 {
		if a.IntN(1<<30) == b.IntN(1<<30) {
			same++
		}
	}
	assert.Less(t, same, 5)
}

func TestLockedConcurrentUse(t *testing.T) {
	l := NewLocked(7)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1000 {
				n := l.IntN(52)
				if n < 0 || n >= 52 {
					t.Errorf("IntN out of range: %d", n)
				}
			}
		}()
	}
	wg.Wait()
}
