package gpuparticles

import "sync/atomic"

// atomicBool is the "culled" flag's storage: the one piece of emitter
// state touched from outside its owning bucket's lock (the renderer calls
// SetDrawCallVisible from any thread, any time), per spec §4.3's
// Design Note on callback-style visibility notification.
type atomicBool struct {
	v atomic.Bool
}

// swap stores val and returns the previous value.
func (b *atomicBool) swap(val bool) bool { return b.v.Swap(val) }

func (b *atomicBool) store(val bool) { b.v.Store(val) }

func (b *atomicBool) load() bool { return b.v.Load() }
