// Package atomicfloat provides a lock-free float64 for counters shared
// between the solver's worker goroutine and the progress-reporting
// goroutines that poll it (session manager, websocket publisher).
package atomicfloat

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// Float64 encapsulates a float64 for non-locking atomic operations.
// The pheromone tensor itself is never touched concurrently (the solver
// core is single-threaded per the concurrency model), but the best-known
// fitness is read by a UI-facing goroutine while the solver goroutine
// keeps iterating, so it needs this.
type Float64 struct {
	val float64
}

// New wraps an initial value for atomic access.
func New(val float64) *Float64 {
	return &Float64{val: val}
}

// Load atomically reads the float64.
func (af *Float64) Load() float64 {
	bits := atomic.LoadUint64((*uint64)(unsafe.Pointer(&af.val)))
	return math.Float64frombits(bits)
}

// Store atomically overwrites the float64.
func (af *Float64) Store(newVal float64) {
	atomic.StoreUint64((*uint64)(unsafe.Pointer(&af.val)), math.Float64bits(newVal))
}

// CompareAndSwap performs a CAS on the underlying bits.
func (af *Float64) CompareAndSwap(old, newVal float64) bool {
	return atomic.CompareAndSwapUint64(
		(*uint64)(unsafe.Pointer(&af.val)),
		math.Float64bits(old),
		math.Float64bits(newVal))
}
