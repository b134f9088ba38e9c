package engine

import (
	"math/rand"
	"sync"
	"time"
)

// lockedRand is a goroutine-safe random source shared by concurrent
// pipeline runs. A fixed seed makes simulated outcomes reproducible.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// newLockedRand seeds the source; seed 0 means time-seeded.
func newLockedRand(seed int64) *lockedRand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 {
		return 0
	}
	return l.r.Intn(n)
}

// Between returns a duration uniformly distributed in [min, max].
func (l *lockedRand) Between(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return min + time.Duration(l.r.Int63n(int64(max-min)+1))
}
