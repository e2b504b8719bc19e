// Package pending provides the busy flag that keeps a screen from issuing a
// second request of the same kind while one is outstanding.
package pending

import (
	"errors"
	"sync/atomic"
)

// ErrBusy is returned by Acquire while a request is already in flight.
var ErrBusy = errors.New("request already in flight")

// Gate is a single-slot busy flag. The zero value is an idle gate.
type Gate struct {
	busy atomic.Bool
}

// Acquire marks the gate busy. The returned release must be called on every
// exit path, typically with defer; calling it more than once is harmless.
func (g *Gate) Acquire() (release func(), err error) {
	if !g.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			g.busy.Store(false)
		}
	}, nil
}

// Busy reports whether a request is in flight
func (g *Gate) Busy() bool {
	return g.busy.Load()
}
