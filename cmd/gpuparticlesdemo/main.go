// Command gpuparticlesdemo wires the particle engine against a software
// device stub and drives a handful of frames, for manual smoke-testing
// without a real GPU context. It has no flags and no configuration file
// by design (file-based configuration is out of scope for the core).
package main

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gekko3d/gpuparticles"
	"github.com/gekko3d/gpuparticles/device"
	"github.com/gekko3d/gpuparticles/gpurecords"
	"github.com/gekko3d/gpuparticles/job"
)

// stubBuffer is an in-process stand-in for device.Buffer: it keeps the
// last-locked staging slice around so uploads write into real memory,
// without ever talking to a GPU.
type stubBuffer struct {
	name    string
	backing []byte
}

func (b *stubBuffer) LockDiscard(size uint32) []byte {
	if uint32(cap(b.backing)) < size {
		b.backing = make([]byte, size)
	}
	b.backing = b.backing[:size]
	return b.backing
}

func (b *stubBuffer) Unlock()      {}
func (b *stubBuffer) Size() uint32 { return uint32(cap(b.backing)) }

// stubEntities is a minimal device.EntitySystem that only counts calls,
// standing in for a real renderer's entity table.
type stubEntities struct {
	nextID  uint64
	created int
	moved   int
}

func (s *stubEntities) Create(desc device.EntityDesc) uint64 {
	s.nextID++
	s.created++
	return s.nextID
}

func (s *stubEntities) Destroy(id uint64) {}

func (s *stubEntities) Move(id uint64, aabb device.AABB, changed bool, uniforms []byte, instanceCount uint32) {
	s.moved++
}

func main() {
	const instanceCount = 1 << 16
	tier := gpurecords.TierDesktop

	entities := &stubEntities{}
	engine := gpuparticles.NewEngine(gpuparticles.Config{
		InstanceCount: instanceCount,
		Tier:          tier,
		Runner:        job.NewPool(8),
		Entities:      entities,
		EmitterBuffer: &stubBuffer{name: "emitters"},
		BoneBuffer:    &stubBuffer{name: "bones"},
		Logger:        gpuparticles.NewDefaultLogger("gpuparticlesdemo", true),
	})

	tmpl := &gpuparticles.EmitterTemplate{
		ParticlesCountMin: 256,
		ParticlesCountMax: 256,
		EmitterDurationMin: 2, EmitterDurationMax: 2,
		ParticleDurationMin: 1, ParticleDurationMax: 1,
		Continuous: true,
		RenderPasses: []gpuparticles.RenderPassDesc{
			{RenderGraph: uuid.New()},
		},
	}

	uid := engine.CreateEmitterUID()
	engine.CreateEmitter(uid, tmpl, 1.0, tmpl.EmitterDurationMax, 0)
	engine.SetEmitterVisible(uid, true)
	engine.CreateDrawCalls(uid)

	fmt.Println("gpuparticlesdemo: running 120 frames at 16.6ms")
	for frame := 0; frame < 120; frame++ {
		engine.FrameMoveBegin(1.0/60.0, nil)
		engine.FrameMoveEnd()

		if frame%30 == 0 {
			st := engine.Stats()
			fmt.Printf("frame %3d: emitters=%d visible=%d allocated_slots=%d entities_created=%d moves=%d\n",
				frame, st.NumEmitters, st.NumVisibleEmitters, st.NumUsedSlots, entities.created, entities.moved)
		}
	}

	engine.DestroyEmitter(uid)
	engine.FrameMoveBegin(1.0/60.0, nil)
	engine.FrameMoveEnd()
	fmt.Println("gpuparticlesdemo: done")
}
