package race

import (
	mathrand "math/rand"
	"sync"
	"time"
)

// Rand is the engine's single randomness source. Every randomized pass
// (overtakes, pits, telemetry, settlement jitter) draws from it, so a fixed
// seed reproduces a whole race.
type Rand struct {
	mu sync.Mutex
	r  *mathrand.Rand
}

// NewRand seeds the source; seed 0 falls back to wall-clock.
func NewRand(seed int64) *Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Rand{r: mathrand.New(mathrand.NewSource(seed))}
}

func (r *Rand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Float64()
}

func (r *Rand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Intn(n)
}
