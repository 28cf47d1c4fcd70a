// Package registry implements the bucketed emitter registry of spec §4.2:
// BucketCount independent shards, each a dense sparse-set keyed by a
// 64-bit UID, routed by hashing the UID's high bits (the odd-UID
// invariant lets a single shift stand in for a hash). It generalizes
// gekko's archetype row-recycling idiom from ecs.go (a dense slice plus a
// stack of recycled indices) to the particle engine's single fixed
// "emitter" shape — no archetype graph is needed because every entry in a
// bucket has the same shape.
package registry

import "sync"

// BucketCount is the number of independent shards. Fixed per spec §4.2.
const BucketCount = 8

// Handle is a bucket-local dense index. It is only meaningful alongside
// the bucket it was issued from.
type Handle uint32

// Aliver lets the registry ask a stored value whether it is still alive,
// for Modify's "only invoke if alive" contract (spec §4.2).
type Aliver interface {
	IsAlive() bool
}

// ShardIndex computes the bucket a UID routes to: (uid >> 1) mod
// BucketCount, exploiting the invariant that UIDs are always odd.
func ShardIndex(uid uint64) int {
	return int((uid >> 1) % BucketCount)
}

type slot[T Aliver] struct {
	value    T
	uid      uint64
	occupied bool
}

// Bucket is one shard: a dense sparse-set plus its own reader-writer lock.
type Bucket[T Aliver] struct {
	mu       sync.RWMutex
	dense    []slot[T]
	recycled []Handle
	byUID    map[uint64]Handle
}

func newBucket[T Aliver]() *Bucket[T] {
	return &Bucket[T]{byUID: make(map[uint64]Handle)}
}

// CreateOrGet inserts a new value for uid if none is currently occupying
// a slot for it (including one whose liveness has been cleared by
// Destroy but not yet physically removed by Collect), or returns the
// existing value. created is false when an existing slot was reused.
//
// This is what makes the reactivation contract in spec §4.7 work:
// destroy_emitter only clears the alive flag and leaves the UID mapping
// in place until the next Collect, so a create/destroy/create sequence
// within the same frame resurrects the original record instead of
// constructing a second one.
func (b *Bucket[T]) CreateOrGet(uid uint64, makeValue func() T) (value T, created bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if h, ok := b.byUID[uid]; ok && b.dense[h].occupied {
		return b.dense[h].value, false
	}

	v := makeValue()
	var h Handle
	if n := len(b.recycled); n > 0 {
		h = b.recycled[n-1]
		b.recycled = b.recycled[:n-1]
		b.dense[h] = slot[T]{value: v, uid: uid, occupied: true}
	} else {
		h = Handle(len(b.dense))
		b.dense = append(b.dense, slot[T]{value: v, uid: uid, occupied: true})
	}
	b.byUID[uid] = h
	return v, true
}

// Lookup returns the value stored for uid, regardless of liveness.
func (b *Bucket[T]) Lookup(uid uint64) (value T, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	h, found := b.byUID[uid]
	if !found || !b.dense[h].occupied {
		var zero T
		return zero, false
	}
	return b.dense[h].value, true
}

// Modify resolves uid under a read lock and invokes fn only if a live
// (IsAlive) entry exists for it. Returns false if there was nothing to
// modify, matching the UnknownEmitter no-op contract of spec §7.
func (b *Bucket[T]) Modify(uid uint64, fn func(T)) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	h, found := b.byUID[uid]
	if !found || !b.dense[h].occupied {
		return false
	}
	v := b.dense[h].value
	if !v.IsAlive() {
		return false
	}
	fn(v)
	return true
}

// Collect takes the write lock and removes every slot whose value's
// shouldRemove predicate returns true, invoking onRemove for each before
// it is physically dropped. This is the FreeEmitters phase of spec §4.6.
func (b *Bucket[T]) Collect(shouldRemove func(T) bool, onRemove func(uid uint64, value T)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for h := range b.dense {
		s := &b.dense[h]
		if !s.occupied || !shouldRemove(s.value) {
			continue
		}
		onRemove(s.uid, s.value)
		delete(b.byUID, s.uid)
		var zero T
		s.value = zero
		s.occupied = false
		b.recycled = append(b.recycled, Handle(h))
	}
}

// Tick takes the write lock for the duration of fn and invokes it once
// per occupied slot. Per spec §5, each bucket's tick job holds its own
// write lock so public façade calls on other buckets are never blocked.
func (b *Bucket[T]) Tick(fn func(uid uint64, value T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.dense {
		if b.dense[i].occupied {
			fn(b.dense[i].uid, b.dense[i].value)
		}
	}
}

// Snapshot takes a read lock and returns a copy of every occupied
// (uid, value) pair. Used by the single-threaded AllocateEmitters gather
// phase (spec §4.6), which must not hold any bucket lock while mutating
// the allocator.
func (b *Bucket[T]) Snapshot() []struct {
	UID   uint64
	Value T
} {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]struct {
		UID   uint64
		Value T
	}, 0, len(b.dense))
	for _, s := range b.dense {
		if s.occupied {
			out = append(out, struct {
				UID   uint64
				Value T
			}{UID: s.uid, Value: s.value})
		}
	}
	return out
}

// Len reports the number of occupied slots (read-locked).
func (b *Bucket[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, s := range b.dense {
		if s.occupied {
			n++
		}
	}
	return n
}

// Registry is the full set of BucketCount shards.
type Registry[T Aliver] struct {
	buckets [BucketCount]*Bucket[T]
}

func New[T Aliver]() *Registry[T] {
	r := &Registry[T]{}
	for i := range r.buckets {
		r.buckets[i] = newBucket[T]()
	}
	return r
}

// Bucket returns the shard at index i (0..BucketCount).
func (r *Registry[T]) Bucket(i int) *Bucket[T] { return r.buckets[i] }

// BucketFor returns the shard uid routes to.
func (r *Registry[T]) BucketFor(uid uint64) *Bucket[T] { return r.buckets[ShardIndex(uid)] }

// CreateOrGet delegates to the owning bucket's CreateOrGet.
func (r *Registry[T]) CreateOrGet(uid uint64, makeValue func() T) (T, bool) {
	return r.BucketFor(uid).CreateOrGet(uid, makeValue)
}

// Lookup delegates to the owning bucket's Lookup.
func (r *Registry[T]) Lookup(uid uint64) (T, bool) {
	return r.BucketFor(uid).Lookup(uid)
}

// Modify delegates to the owning bucket's Modify.
func (r *Registry[T]) Modify(uid uint64, fn func(T)) bool {
	return r.BucketFor(uid).Modify(uid, fn)
}

// Len sums the occupied-slot count across every bucket.
func (r *Registry[T]) Len() int {
	n := 0
	for _, b := range r.buckets {
		n += b.Len()
	}
	return n
}
