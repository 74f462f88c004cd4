package predict

import (
	"math/rand"
	"time"
)

// NormalSource produces standard-normal variates. *rand.Rand satisfies it.
//
// Implementations are not required to be goroutine-safe; concurrent callers
// must use one source each (see DeriveSource).
type NormalSource interface {
	NormFloat64() float64
}

// NewSource returns a deterministic generator for seed. A zero seed is taken
// verbatim, so callers wanting fresh entropy should use NewEntropySource.
func NewSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NewEntropySource returns a generator seeded from the wall clock.
func NewEntropySource() *rand.Rand {
	return NewSource(time.Now().UnixNano())
}

// DeriveSeed mixes a parent seed and a stream id into a new seed using the
// SplitMix64 finalizer, so neighbouring streams are uncorrelated.
func DeriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// DeriveSource returns an independent deterministic stream for (seed, stream).
func DeriveSource(seed int64, stream uint64) *rand.Rand {
	return NewSource(DeriveSeed(seed, stream))
}
