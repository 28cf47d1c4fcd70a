package job

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/semaphore"
)

func TestPoolDrainWaitsForAllJobs(t *testing.T) {
	p := NewPool(4)
	var n atomic.Int32

	for i := 0; i < 50; i++ {
		p.Submit(High, func() { n.Add(1) })
	}
	p.Drain(High)

	assert.EqualValues(t, 50, n.Load())
}

func TestPoolPrioritiesAreIndependent(t *testing.T) {
	p := NewPool(2)
	var high, idle atomic.Int32

	p.Submit(Idle, func() { idle.Add(1) })
	p.Submit(High, func() { high.Add(1) })
	p.Drain(High)

	assert.EqualValues(t, 1, high.Load())
}

func TestRunAllRespectsSemaphoreBound(t *testing.T) {
	const maxConcurrent = 3
	sem := semaphore.NewWeighted(maxConcurrent)

	var current, maxSeen atomic.Int32
	fns := make([]Func, 20)
	for i := range fns {
		fns[i] = func() {
			c := current.Add(1)
			for {
				m := maxSeen.Load()
				if c <= m || maxSeen.CompareAndSwap(m, c) {
					break
				}
			}
			current.Add(-1)
		}
	}

	err := RunAll(context.Background(), sem, fns)
	assert.NoError(t, err)
	assert.LessOrEqual(t, maxSeen.Load(), int32(maxConcurrent))
}
