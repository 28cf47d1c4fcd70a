package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmitter struct {
	uid   uint64
	alive bool
}

func (f *fakeEmitter) IsAlive() bool { return f.alive }

func TestBucketRoutingMatchesShardIndex(t *testing.T) {
	for k := 0; k < BucketCount; k++ {
		uid := uint64(2*k + 1)
		assert.Equal(t, k, ShardIndex(uid))
	}
}

func TestCreateOrGetIsIdempotentForLiveEntry(t *testing.T) {
	r := New[*fakeEmitter]()
	calls := 0
	mk := func() *fakeEmitter {
		calls++
		return &fakeEmitter{uid: 3, alive: true}
	}

	v1, created1 := r.CreateOrGet(3, mk)
	v2, created2 := r.CreateOrGet(3, mk)

	require.True(t, created1)
	require.False(t, created2)
	assert.Same(t, v1, v2)
	assert.Equal(t, 1, calls)
}

func TestModifySkipsDeadEntries(t *testing.T) {
	r := New[*fakeEmitter]()
	r.CreateOrGet(5, func() *fakeEmitter { return &fakeEmitter{uid: 5, alive: false} })

	invoked := false
	ok := r.Modify(5, func(f *fakeEmitter) { invoked = true })

	assert.False(t, ok)
	assert.False(t, invoked)
}

func TestModifyUnknownUIDIsNoop(t *testing.T) {
	r := New[*fakeEmitter]()
	ok := r.Modify(99, func(f *fakeEmitter) {})
	assert.False(t, ok)
}

func TestOnceDeadAlwaysDead(t *testing.T) {
	r := New[*fakeEmitter]()
	r.CreateOrGet(7, func() *fakeEmitter { return &fakeEmitter{uid: 7, alive: true} })

	r.Modify(7, func(f *fakeEmitter) { f.alive = false })
	assert.False(t, r.Modify(7, func(f *fakeEmitter) {}))

	v, _ := r.Lookup(7)
	assert.False(t, v.IsAlive())
}

func TestReactivationWithinSameFrameReusesRecord(t *testing.T) {
	r := New[*fakeEmitter]()
	original, _ := r.CreateOrGet(9, func() *fakeEmitter { return &fakeEmitter{uid: 9, alive: true} })

	original.alive = false // destroy_emitter: clear alive, UID mapping stays

	recreated, created := r.CreateOrGet(9, func() *fakeEmitter {
		t.Fatal("should not construct a new record before Collect runs")
		return nil
	})

	assert.False(t, created)
	assert.Same(t, original, recreated)
}

func TestCollectReclaimsSlotForReuse(t *testing.T) {
	r := New[*fakeEmitter]()
	b := r.BucketFor(9)
	b.CreateOrGet(9, func() *fakeEmitter { return &fakeEmitter{uid: 9, alive: false} })

	var removed []uint64
	b.Collect(
		func(f *fakeEmitter) bool { return !f.alive },
		func(uid uint64, f *fakeEmitter) { removed = append(removed, uid) },
	)

	assert.Equal(t, []uint64{9}, removed)
	assert.Equal(t, 0, b.Len())

	_, created := b.CreateOrGet(9, func() *fakeEmitter { return &fakeEmitter{uid: 9, alive: true} })
	assert.True(t, created)
}

func TestConcurrentCreateAndModifyAcrossBuckets(t *testing.T) {
	r := New[*fakeEmitter]()
	var wg sync.WaitGroup

	for k := 0; k < BucketCount; k++ {
		uid := uint64(2*k + 1)
		wg.Add(1)
		go func(uid uint64) {
			defer wg.Done()
			r.CreateOrGet(uid, func() *fakeEmitter { return &fakeEmitter{uid: uid, alive: true} })
			r.Modify(uid, func(f *fakeEmitter) {})
		}(uid)
	}
	wg.Wait()

	assert.Equal(t, BucketCount, r.Len())
}
