// Package entropy derives the deterministic random streams a run consumes.
// Every stream is keyed by a seed plus a counter, so any step of any run can
// be replayed without the others. Falls back to crypto/rand only when no
// base seed is configured.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
)

// golden is the splitmix64 increment.
const golden = 0x9e3779b97f4a7c15

// mix is the splitmix64 finalizer.
func mix(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// RunSeed derives the seed of one (parameter point, repetition) run.
func RunSeed(base int64, paramIndex, repetition int) int64 {
	z := mix(uint64(base) + golden)
	z = mix(z + uint64(paramIndex)*golden)
	z = mix(z + uint64(repetition)*golden + 1)
	return int64(z)
}

// NewRand returns a PCG stream for (seed, stream). Streams with different
// counters are independent.
func NewRand(seed int64, stream uint64) *mrand.Rand {
	return mrand.New(mrand.NewPCG(uint64(seed), mix(stream+golden)))
}

// StreamPlacement is the stream of initial placement. Steps use their own
// index, far below it.
const StreamPlacement uint64 = 1 << 62

// StepRand returns the stream consumed by step number step of a run.
func StepRand(seed int64, step uint64) *mrand.Rand {
	return NewRand(seed, step)
}

// RandomSeed returns a non-zero seed from crypto/rand.
func RandomSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; fall back to a fixed seed.
		return 42
	}
	s := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if s == 0 {
		return 1
	}
	return s
}
