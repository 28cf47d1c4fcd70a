// Package gpuparticles is the GPU particle engine core: the concurrent
// emitter registry, TLSF slot allocator, per-emitter state machine,
// priority eviction, and the Frame Coordinator / Public Façade that tie
// them together. Device I/O, job scheduling, and scene culling are
// accepted as narrow external interfaces rather than implemented here.
package gpuparticles

import (
	"encoding/binary"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/gekko3d/gpuparticles/allocator"
	"github.com/gekko3d/gpuparticles/device"
	"github.com/gekko3d/gpuparticles/gpurecords"
	"github.com/gekko3d/gpuparticles/job"
	"github.com/gekko3d/gpuparticles/metrics"
	"github.com/gekko3d/gpuparticles/registry"
	"golang.org/x/sync/semaphore"
)

// CullPriorityFunc is the externally supplied culling oracle (spec §1):
// higher means "cull first", negative means "never cull".
type CullPriorityFunc func(min, max [3]float32, infinite bool) float32

// Config configures a new Engine. Runner and Entities are required;
// Metrics and Logger default to no-ops.
type Config struct {
	InstanceCount uint32
	Tier          gpurecords.Tier
	Runner        job.Runner
	Entities      device.EntitySystem
	EmitterBuffer device.Buffer
	BoneBuffer    device.Buffer
	Metrics       *metrics.Collector
	Logger        Logger

	DynamicCullingEnabled bool
	DynamicCullingGraph   uuid.UUID
}

// Engine is the Frame Coordinator plus Public Façade over a single
// emitter population (spec §4.6, §4.7).
type Engine struct {
	logger Logger

	uidCounter atomic.Uint64

	registry *registry.Registry[*Emitter]
	alloc    *allocator.Allocator

	runner   job.Runner
	entities device.EntitySystem
	sem      *semaphore.Weighted

	emitterBuffer device.Buffer
	boneBuffer    device.Buffer
	tier          gpurecords.Tier

	emitterOffset atomic.Uint32
	boneOffset    atomic.Uint32

	cullRefTotal atomic.Int32
	dynamicCullingEnabled bool
	dynamicCullingGraph   uuid.UUID
	dynamicCullingEntity  EntityID
	dynamicCullingExists  bool

	cullingAggression float32

	metrics *metrics.Collector

	clock *FrameClock

	mu sync.Mutex // serializes the single-threaded eviction phase
}

// NewEngine constructs an Engine with a single seeded allocator region of
// cfg.InstanceCount slots.
func NewEngine(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = NewNopLogger()
	}
	e := &Engine{
		logger:                logger,
		registry:              registry.New[*Emitter](),
		alloc:                 allocator.NewWithCapacity(cfg.InstanceCount),
		runner:                cfg.Runner,
		entities:              cfg.Entities,
		sem:                   semaphore.NewWeighted(int64(registry.BucketCount)),
		emitterBuffer:         cfg.EmitterBuffer,
		boneBuffer:            cfg.BoneBuffer,
		tier:                  cfg.Tier,
		dynamicCullingEnabled: cfg.DynamicCullingEnabled,
		dynamicCullingGraph:   cfg.DynamicCullingGraph,
		metrics:               cfg.Metrics,
		clock:                 NewFrameClock(),
	}
	return e
}

// CreateEmitterUID issues a fresh, odd, monotonically increasing UID
// (spec §4.7, invariant 1).
func (e *Engine) CreateEmitterUID() uint64 {
	n := e.uidCounter.Add(1)
	return n<<1 | 1
}

// CreateEmitter constructs and registers an emitter for uid, or
// reactivates one that already exists in the sparse set (spec §4.7 and
// end-to-end scenario 5: a same-frame destroy/create resurrects the
// original record rather than allocating a second one, because
// destroy_emitter defers removing the UID mapping to the next
// FreeEmitters pass).
func (e *Engine) CreateEmitter(uid uint64, t *EmitterTemplate, animSpeed, eventDuration, delay float32) *Emitter {
	seed := seedFromUID(uid)
	em, created := e.registry.CreateOrGet(uid, func() *Emitter {
		return newEmitter(uid, t, animSpeed, eventDuration, delay, seed, false)
	})
	if !created {
		// Either a still-live emitter (spec §4.7's plain reactivation) or
		// one destroy_emitter cleared alive on earlier this same frame,
		// before FreeEmitters could reclaim its slot (end-to-end scenario
		// 5) — both cases resurrect to a fully live, active emitter.
		em.flagAlive = true
		em.flagActive = true
		em.flagGC = false
	}
	return em
}

func seedFromUID(uid uint64) float32 {
	return float32(uid%1009) / 1009
}

// DestroyEmitter clears alive; physical removal happens in the next
// frame's FreeEmitters.
func (e *Engine) DestroyEmitter(uid uint64) {
	e.registry.Modify(uid, func(em *Emitter) {
		em.flagAlive = false
	})
}

// OrphanEmitter clears active; the emitter continues playing out existing
// particles until its natural end.
func (e *Engine) OrphanEmitter(uid uint64) {
	e.registry.Modify(uid, func(em *Emitter) {
		em.flagActive = false
	})
}

// TeleportEmitter sets teleported so the next upload tells the GPU to
// skip motion-blur interpolation from the last_* snapshots.
func (e *Engine) TeleportEmitter(uid uint64) {
	e.registry.Modify(uid, func(em *Emitter) {
		em.flagTeleported = true
	})
}

// SetEmitterTransform replaces the emitter's current transform matrix;
// decomposition happens on the next tick.
func (e *Engine) SetEmitterTransform(uid uint64, m mgl32.Mat4) bool {
	return e.registry.Modify(uid, func(em *Emitter) {
		em.Transform = m
	})
}

// SetEmitterBones replaces the emitter's bone chain.
func (e *Engine) SetEmitterBones(uid uint64, bones []BonePosition) bool {
	return e.registry.Modify(uid, func(em *Emitter) {
		em.BonePositions = bones
	})
}

// SetEmitterVisible forces the visible flag (distinct from the per-frame
// culled signal driven by SetDrawCallVisible).
func (e *Engine) SetEmitterVisible(uid uint64, visible bool) bool {
	return e.registry.Modify(uid, func(em *Emitter) {
		em.flagVisible = visible
	})
}

// SetEmitterAnimationSpeed updates the animation-speed multiplier.
func (e *Engine) SetEmitterAnimationSpeed(uid uint64, speed float32) bool {
	return e.registry.Modify(uid, func(em *Emitter) {
		em.AnimationSpeed = speed
	})
}

// IsEmitterAlive reports whether uid currently names a live emitter.
func (e *Engine) IsEmitterAlive(uid uint64) bool {
	em, ok := e.registry.Lookup(uid)
	return ok && em.flagAlive
}

// IsEmitterActive reports whether uid currently names an active emitter.
func (e *Engine) IsEmitterActive(uid uint64) bool {
	em, ok := e.registry.Lookup(uid)
	return ok && em.flagAlive && em.flagActive
}

// SetDrawCallVisible clears the emitter's culled flag; called by the
// renderer when it observes the entity survived culling this frame. O(1)
// regardless of which bucket holds the emitter (testable property 8).
func (e *Engine) SetDrawCallVisible(uid uint64) {
	if em, ok := e.registry.Lookup(uid); ok {
		em.culled.store(false)
	}
}

// KillOrphaned force-clears active on every registered non-continuous
// emitter, whatever its elapsed time — supplemented from the original's
// level-transition helper (SPEC_FULL.md §9).
func (e *Engine) KillOrphaned() {
	for i := 0; i < registry.BucketCount; i++ {
		e.registry.Bucket(i).Tick(func(_ uint64, em *Emitter) {
			if em.flagActive && !em.Template.Continuous {
				em.flagActive = false
			}
		})
	}
}

// Stats mirrors the original's Stats snapshot (SPEC_FULL.md §9).
type Stats struct {
	NumParticles         uint32
	MaxParticles         uint32
	NumEmitters          int
	NumBones             int
	MaxBones             uint32
	NumVisibleEmitters   int
	NumAllocatedEmitters int
	NumAllocatedSlots    uint32
	NumUsedSlots         uint32
}

// Stats gathers a point-in-time usage snapshot across every bucket and
// the allocator.
func (e *Engine) Stats() Stats {
	allocStats := e.alloc.Snapshot()
	st := Stats{
		MaxParticles:      allocStats.UsedBytes + allocStats.FreeBytes,
		MaxBones:          e.tier.MaxBones(),
		NumAllocatedSlots: allocStats.UsedBytes,
		NumUsedSlots:      allocStats.UsedBytes,
	}

	for i := 0; i < registry.BucketCount; i++ {
		e.registry.Bucket(i).Tick(func(_ uint64, em *Emitter) {
			st.NumEmitters++
			st.NumBones += len(em.BonePositions)
			if em.HasAllocation {
				st.NumAllocatedEmitters++
				_, size, ok := e.alloc.RangeOf(em.Allocation)
				if ok {
					st.NumParticles += size
				}
			}
			if em.flagVisible && !em.flagWasCulled {
				st.NumVisibleEmitters++
			}
		})
	}
	return st
}

// gatheredEmitter is the AllocateEmitters phase's flat scratch record
// (spec §4.6 step 3).
type gatheredEmitter struct {
	uid           uint64
	em            *Emitter
	particleCount uint32
	visible       bool
	active        bool
}

// FrameMoveBegin runs the §4.6 frame_move_begin pipeline:
// FreeEmitters -> AllocateEmitters -> MoveCulling -> FrameMoveEntities.
func (e *Engine) FrameMoveBegin(dt float32, cullPriority CullPriorityFunc) {
	e.cullingAggression = computeCullingAggression(cullPriority)

	e.freeEmitters()
	e.allocateEmitters()
	e.moveCulling()
	e.frameMoveEntities(dt)
}

func computeCullingAggression(cullPriority CullPriorityFunc) float32 {
	if cullPriority == nil {
		return 0
	}
	return cullPriority([3]float32{}, [3]float32{}, true)
}

// freeEmitters is spec §4.6 step 2: reclaim every emitter with gc set or
// observed not-alive.
func (e *Engine) freeEmitters() {
	for i := 0; i < registry.BucketCount; i++ {
		e.registry.Bucket(i).Collect(
			func(em *Emitter) bool { return em.flagGC || !em.flagAlive },
			func(_ uint64, em *Emitter) {
				e.destroyDrawCallsLocked(em)
				if em.HasAllocation {
					e.alloc.Deallocate(em.Allocation)
					em.HasAllocation = false
				}
			},
		)
	}
}

// allocateEmitters is spec §4.6 step 3: single-threaded gather, allocate,
// scatter, with priority eviction when the pool is full.
func (e *Engine) allocateEmitters() {
	e.mu.Lock()
	defer e.mu.Unlock()

	var gathered []gatheredEmitter
	for i := 0; i < registry.BucketCount; i++ {
		snap := e.registry.Bucket(i).Snapshot()
		for _, s := range snap {
			em := s.Value
			if em.flagStateless || !em.flagAlive {
				continue
			}
			visible := len(em.RenderEntities) > 0 && !em.culled.load()
			gathered = append(gathered, gatheredEmitter{
				uid:           s.UID,
				em:            em,
				particleCount: em.ParticleCount,
				visible:       visible,
				active:        em.flagActive,
			})
		}
	}

	needsAllocation := false
	for _, g := range gathered {
		if g.visible && !g.em.HasAllocation {
			needsAllocation = true
			break
		}
	}
	if !needsAllocation {
		return
	}

	sort.SliceStable(gathered, func(i, j int) bool {
		if gathered[i].visible != gathered[j].visible {
			return gathered[i].visible
		}
		return gathered[i].active && !gathered[j].active
	})

	back := len(gathered) - 1
	for front := 0; front < len(gathered); front++ {
		g := &gathered[front]
		if !g.visible || g.em.HasAllocation {
			continue
		}

		id, ok := e.alloc.Allocate(g.particleCount)
		for !ok && back > front {
			victim := &gathered[back]
			if victim.em.HasAllocation && !(victim.visible && victim.active) {
				e.alloc.Deallocate(victim.em.Allocation)
				victim.em.HasAllocation = false
				victim.em.flagNew = true
				if e.metrics != nil {
					e.metrics.Evictions.Inc()
				}
				id, ok = e.alloc.Allocate(g.particleCount)
			}
			back--
		}
		if !ok {
			e.logger.Warnf("gpuparticles: allocation starved for uid=%d (particle_count=%d)", g.uid, g.particleCount)
			continue
		}

		g.em.Allocation = id
		g.em.HasAllocation = true
		g.em.flagNew = true
	}
}

// moveCulling is spec §4.6 step 4.
func (e *Engine) moveCulling() {
	needed := e.dynamicCullingEnabled && e.cullRefTotal.Load() > 0
	if needed && !e.dynamicCullingExists {
		e.dynamicCullingEntity = EntityID(e.entities.Create(device.EntityDesc{
			RenderGraph: e.dynamicCullingGraph, Blend: device.BlendCompute,
		}))
		e.dynamicCullingExists = true
	} else if !needed && e.dynamicCullingExists {
		e.entities.Destroy(uint64(e.dynamicCullingEntity))
		e.dynamicCullingExists = false
	}
	if e.dynamicCullingExists {
		e.entities.Move(uint64(e.dynamicCullingEntity), device.AABB{}, false, nil, 0)
	}
}

// frameMoveEntities is spec §4.6 step 5: one High-priority job per bucket
// runs tick (§4.3).
func (e *Engine) frameMoveEntities(dt float32) {
	for i := 0; i < registry.BucketCount; i++ {
		i := i
		e.runner.Submit(job.High, func() {
			e.registry.Bucket(i).Tick(func(_ uint64, em *Emitter) {
				em.tick(dt)
			})
		})
	}
	e.runner.Drain(job.High)
}

// moveEntities is the per-emitter half of spec §4.4's upload-time binding
// update (line 128/135): uniforms carry the current transform, GPU-buffer
// slot index, and dynamic parameters; the update/sort entities see the
// full particle count whenever the emitter reserved a slot this frame,
// render entities see that count only while visible and not culled.
// Called from reserveAndWrite, once EmitterBufferOffset and
// HasParticlesThisFrame are known for this frame.
func (e *Engine) moveEntities(em *Emitter, uniforms []byte) {
	updateSortCount := uint32(0)
	renderCount := uint32(0)
	if em.HasParticlesThisFrame {
		updateSortCount = em.ParticleCount
		if em.flagVisible && !em.culled.load() {
			renderCount = em.ParticleCount
		}
	}

	if em.UpdateEntity != 0 {
		e.entities.Move(uint64(em.UpdateEntity), infiniteAABB(), true, uniforms, updateSortCount)
	}
	if em.SortEntity != 0 {
		e.entities.Move(uint64(em.SortEntity), infiniteAABB(), true, uniforms, updateSortCount)
	}
	for _, re := range em.RenderEntities {
		min, max, infinite := em.boundingBox()
		aabb := device.AABB{Min: min, Max: max}
		if infinite {
			aabb = infiniteAABB()
		}
		e.entities.Move(uint64(re.ID), aabb, true, uniforms, renderCount)
	}
}

// buildUniforms packs the per-emitter object-uniform payload: the
// GPU-buffer slot index this emitter reserved for the frame, the same
// transform/scale/flags fields written into its GPU record (so render
// and sort shaders can read them directly off the entity without
// indexing the emitter buffer), and the emitter's dynamic parameters as
// raw float32s, mirroring GpuParticleSystem.cpp's MoveEmitters building
// update_uniforms/sort_uniforms/render_uniforms from the same field set
// as the instance buffer record plus appended dynamic parameters.
func buildUniforms(slot uint32, rec gpurecords.EmitterRecord, dynamicParameters []float32) []byte {
	const slotSize = 4
	buf := make([]byte, slotSize+gpurecords.EmitterRecordSize+4*len(dynamicParameters))
	binary.LittleEndian.PutUint32(buf[0:], slot)
	rec.Encode(buf[slotSize:])

	off := slotSize + gpurecords.EmitterRecordSize
	for _, v := range dynamicParameters {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
		off += 4
	}
	return buf
}

func infiniteAABB() device.AABB {
	const inf = 1e30
	return device.AABB{Min: [3]float32{-inf, -inf, -inf}, Max: [3]float32{inf, inf, inf}}
}

// FrameMoveEnd runs spec §4.6's frame_move_end pipeline: upload, finalize,
// drain.
func (e *Engine) FrameMoveEnd() {
	e.emitterOffset.Store(0)
	e.boneOffset.Store(0)

	e.uploadBuffers()
	e.finalizeEmitters()

	if e.metrics != nil {
		e.refreshMetrics()
	}
}

// uploadBuffers is spec §4.5's MoveEntities pass: emitters reserve their
// GPU buffer slots and are written in parallel, then entities are moved
// with updated uniforms. The device buffers are optional (a config
// without one, e.g. in a test double, still runs the full reservation and
// Move pass — it just writes no GPU bytes).
func (e *Engine) uploadBuffers() {
	var emitterBytes, boneBytes []byte
	if e.emitterBuffer != nil {
		emitterBytes = e.emitterBuffer.LockDiscard(e.tier.MaxEmitters() * gpurecords.EmitterRecordSize)
	}
	if e.boneBuffer != nil {
		boneBytes = e.boneBuffer.LockDiscard(e.tier.MaxBones() * gpurecords.BoneRecordSize)
	}

	for i := 0; i < registry.BucketCount; i++ {
		i := i
		e.runner.Submit(job.High, func() {
			e.registry.Bucket(i).Tick(func(_ uint64, em *Emitter) {
				e.reserveAndWrite(em, emitterBytes, boneBytes)
			})
		})
	}
	e.runner.Drain(job.High)

	if e.emitterBuffer != nil {
		e.emitterBuffer.Unlock()
	}
	if e.boneBuffer != nil {
		e.boneBuffer.Unlock()
	}
}

// reserveAndWrite reserves em's emitter-buffer slot (and bone-buffer range,
// if any) via atomic fetch-add/CAS, writes its GPU records, then builds
// its uniforms off the same record and moves its entities (spec §4.5
// line 135: reservation failure sets "no particles this frame" and forces
// instance count 0, rather than skipping the Move call).
func (e *Engine) reserveAndWrite(em *Emitter, emitterBytes, boneBytes []byte) {
	maxEmitters := e.tier.MaxEmitters()
	off := e.emitterOffset.Add(1) - 1
	overflow := off >= maxEmitters
	if overflow {
		em.EmitterBufferOffset = noReservation
		em.HasParticlesThisFrame = false
	} else {
		em.EmitterBufferOffset = off
		em.HasParticlesThisFrame = true
	}

	boneStart := uint32(0)
	boneCount := uint32(len(em.BonePositions))
	if boneCount > 0 {
		maxBones := e.tier.MaxBones()
		for {
			cur := e.boneOffset.Load()
			next := cur + boneCount
			if next > maxBones {
				boneCount = 0
				em.HasParticlesThisFrame = false
				break
			}
			if e.boneOffset.CompareAndSwap(cur, next) {
				boneStart = cur
				break
			}
		}
	}
	em.BoneBufferOffset = boneStart

	rec := gpurecords.EmitterRecord{
		Scale: em.Scale, Duration: em.EmitterDuration, LastScale: em.LastScale, DeadTime: em.DieTime,
		InverseScale: em.InverseScale, PackedFlags: packFlags(em, em.Template, e.dynamicCullingEnabled),
		LastInverseScale: em.LastInverseScale, DeltaTime: em.ParticleDeltaTime,
		Rotation: em.Rotation, LastRotation: em.LastRotation, Translation: em.Translation, Time: em.EmitterTime,
		LastTranslation: em.LastTranslation, PrevTime: em.PrevEmitterTime, CullingAggression: e.cullingAggression,
		BoneStart: boneStart, BoneCount: boneCount, ParticlesStart: e.particlesStart(em),
	}
	if !overflow && uint32(len(emitterBytes)) >= (off+1)*gpurecords.EmitterRecordSize {
		rec.Encode(emitterBytes[off*gpurecords.EmitterRecordSize:])
	}

	if boneCount > 0 {
		for i, bp := range em.BonePositions {
			var prev BonePosition
			if i < len(em.PrevBonePositions) {
				prev = em.PrevBonePositions[i]
			}
			brec := gpurecords.BoneRecord{
				Position: bp.Position, CumulativeDistance: bp.CumulativeDistance,
				PrevPosition: prev.Position, PrevCumulativeDistance: prev.CumulativeDistance,
			}
			idx := boneStart + uint32(i)
			if uint32(len(boneBytes)) >= (idx+1)*gpurecords.BoneRecordSize {
				brec.Encode(boneBytes[idx*gpurecords.BoneRecordSize:])
			}
		}
	}

	uniforms := buildUniforms(em.EmitterBufferOffset, rec, em.DynamicParameters)
	e.moveEntities(em, uniforms)
}

// particlesStart returns the emitter's allocated slot range offset, or 0
// if it holds no allocation this frame.
func (e *Engine) particlesStart(em *Emitter) uint32 {
	if !em.HasAllocation {
		return 0
	}
	off, _, ok := e.alloc.RangeOf(em.Allocation)
	if !ok {
		return 0
	}
	return off
}

func (e *Engine) finalizeEmitters() {
	for i := 0; i < registry.BucketCount; i++ {
		e.registry.Bucket(i).Tick(func(_ uint64, em *Emitter) {
			em.finalize()
		})
	}
}

func (e *Engine) refreshMetrics() {
	st := e.Stats()
	e.metrics.LiveEmitters.Set(float64(st.NumEmitters))
	e.metrics.VisibleEmitters.Set(float64(st.NumVisibleEmitters))
	active := 0
	for i := 0; i < registry.BucketCount; i++ {
		e.registry.Bucket(i).Tick(func(_ uint64, em *Emitter) {
			if em.flagAlive && em.flagActive {
				active++
			}
		})
	}
	e.metrics.ActiveEmitters.Set(float64(active))
	allocStats := e.alloc.Snapshot()
	e.metrics.AllocatedBytes.Set(float64(allocStats.UsedBytes))
	e.metrics.FreeBytes.Set(float64(allocStats.FreeBytes))
	e.metrics.AllocatedBlocks.Set(float64(allocStats.NumBlocks))
}

// CreateDrawCalls creates the emitter's update/sort/render entities on
// first call; subsequent calls are a no-op (spec §4.4, idempotent
// per SPEC_FULL.md §9).
func (e *Engine) CreateDrawCalls(uid uint64) bool {
	created := false
	e.registry.Modify(uid, func(em *Emitter) {
		if em.UpdateEntity != 0 || em.SortEntity != 0 || len(em.RenderEntities) > 0 {
			return
		}
		if len(em.Template.RenderPasses) == 0 {
			e.logger.Warnf("gpuparticles: create_draw_calls on uid=%d: template has no render pass", uid)
			return
		}

		if hasGraph(em.Template.UpdateGraph) {
			em.UpdateEntity = EntityID(e.entities.Create(device.EntityDesc{
				RenderGraph: em.Template.UpdateGraph, Blend: device.BlendCompute, Primitive: device.PrimitiveTriangleList,
			}))
			if hasGraph(em.Template.SortGraph) {
				em.SortEntity = EntityID(e.entities.Create(device.EntityDesc{
					RenderGraph: em.Template.SortGraph, Blend: device.BlendComputePost, Primitive: device.PrimitiveTriangleList,
				}))
			}
		}

		for _, pass := range em.Template.RenderPasses {
			mesh := pass.Mesh
			if !pass.OverrideMesh {
				mesh = em.Template.DefaultMesh
			}
			id := EntityID(e.entities.Create(device.EntityDesc{
				RenderGraph: pass.RenderGraph, Mesh: mesh, CullMode: int(pass.CullMode),
			}))
			em.RenderEntities = append(em.RenderEntities, RenderEntity{ID: id, PassDesc: pass})
			em.CullRef++
			e.cullRefTotal.Add(1)
		}
		created = true
	})
	return created
}

// DestroyDrawCalls tears down all of the emitter's entities in reverse
// order (render, sort, update), returning its culling reference.
func (e *Engine) DestroyDrawCalls(uid uint64) {
	e.registry.Modify(uid, func(em *Emitter) {
		e.destroyDrawCallsLocked(em)
	})
}

func (e *Engine) destroyDrawCallsLocked(em *Emitter) {
	for _, re := range em.RenderEntities {
		e.entities.Destroy(uint64(re.ID))
		em.CullRef--
		e.cullRefTotal.Add(-1)
	}
	em.RenderEntities = nil
	if em.SortEntity != 0 {
		e.entities.Destroy(uint64(em.SortEntity))
		em.SortEntity = 0
	}
	if em.UpdateEntity != 0 {
		e.entities.Destroy(uint64(em.UpdateEntity))
		em.UpdateEntity = 0
	}
}

func hasGraph(u uuid.UUID) bool {
	return u != uuid.UUID{}
}
