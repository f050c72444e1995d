package sim

import (
	"math/rand"
)

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// NewRand returns the run-wide random source for this key.
//
// Every component that needs randomness draws from the one generator held by
// the Context. Creating additional generators breaks reproducibility because
// their draw order would no longer be fixed by the event order.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
func (k SimulationKey) NewRand() *rand.Rand {
	return rand.New(rand.NewSource(int64(k)))
}

// Seed returns the underlying seed value.
func (k SimulationKey) Seed() int64 {
	return int64(k)
}
