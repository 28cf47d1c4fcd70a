package gpuparticles

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/gpuparticles/allocator"
)

// BonePosition is one joint of an emitter's bone chain, with the running
// arc-length distance from the root used by trail-style particle effects.
type BonePosition struct {
	Position           mgl32.Vec3
	CumulativeDistance float32
}

// sentinel offsets written into reserved-but-unused upload fields; not a
// valid GPU buffer offset since offsets never exceed the tier's buffer
// capacity.
const noReservation = ^uint32(0)

// Emitter is a single live instance of an EmitterTemplate (spec §3). It is
// owned by exactly one registry bucket at a time; all mutation happens
// either from that bucket's tick job or under the bucket's lock via the
// public façade's ModifyEmitter path.
type Emitter struct {
	UID      uint64
	Template *EmitterTemplate

	// Scheduling
	EmitterTime       float32
	PrevEmitterTime   float32
	EventTime         float32
	ParticleDeltaTime float32
	StartTime         float32
	DieTime           float32
	ParticleDieTime   float32
	AnimationSpeed    float32
	MinAnimSpeed      float32
	Interval          IntervalState

	EmitterDuration  float32
	ParticleDuration float32
	ParticleCount    uint32

	// AnimationEvent marks an emitter created in response to a discrete
	// animation event (vs. a continuously-playing attachment); it gates
	// event_time advancement and the group-count formula's ring-buffer
	// sizing (spec §4.3 step 6, §3 invariant 2).
	AnimationEvent bool

	// Transform
	Transform           mgl32.Mat4
	Translation         mgl32.Vec3
	Rotation            mgl32.Quat
	Scale               mgl32.Vec3
	InverseScale        mgl32.Vec3
	LastTranslation     mgl32.Vec3
	LastRotation        mgl32.Quat
	LastScale           mgl32.Vec3
	LastInverseScale    mgl32.Vec3

	// Geometry
	BonePositions     []BonePosition
	PrevBonePositions []BonePosition

	// Resources
	Allocation     allocator.AllocationId
	HasAllocation  bool
	UpdateEntity   EntityID
	SortEntity     EntityID
	RenderEntities []RenderEntity

	DynamicParameters []float32

	// Culling aggression cached at frame_move_begin, carried to the GPU
	// record unmodified for the whole frame.
	CullingAggression float32

	// Status flags (spec §3, packed at upload time by packFlags).
	flagAlive     bool
	flagActive    bool
	flagVisible   bool
	flagNew       bool
	flagPaused    bool
	flagLastEmit  bool
	flagWasActive bool
	flagWasCulled bool
	flagTeleported bool
	flagStateless bool
	flagGC        bool

	// culled is written true at the top of every frame's cull-reset step
	// and cleared by the renderer via SetDrawCallVisible; it is the one
	// field touched from outside the owning bucket's lock (spec §4.3,
	// Design Note "callback-style visibility notification").
	culled atomicBool

	// CullRef counts outstanding render entities; gates the dynamic
	// culling entity per spec §4.6.
	CullRef int

	// Per-frame upload reservations; reset to noReservation at MoveEnd.
	EmitterBufferOffset uint32
	BoneBufferOffset    uint32
	HasParticlesThisFrame bool
}

// RenderEntity is one of an emitter's per-render-pass entities.
type RenderEntity struct {
	ID       EntityID
	PassDesc RenderPassDesc
}

// EntityID is an opaque handle into the external entity system (spec §4.4,
// Design Note "cyclic references between emitter and entity").
type EntityID uint64

// IntervalState is the runtime counterpart of EmitterInterval: the
// currently-running phase's remaining duration.
type IntervalState struct {
	Template EmitterInterval
	Duration float32
	Enabled  bool
}

// IsAlive satisfies registry.Aliver.
func (e *Emitter) IsAlive() bool { return e.flagAlive }

// newEmitter constructs a freshly-created emitter per spec §3's lifecycle:
// created by create_emitter(template, duration, delay, animation_speed).
func newEmitter(uid uint64, t *EmitterTemplate, animSpeed, eventDuration, delay float32, seed float32, animationEvent bool) *Emitter {
	e := &Emitter{
		UID:              uid,
		Template:         t,
		AnimationSpeed:   animSpeed,
		MinAnimSpeed:     t.MinAnimationSpeed,
		EmitterDuration:  eventDuration,
		ParticleDuration: t.ParticleDurationMax,
		ParticleCount:    t.ComputeParticleCount(seed, animationEvent),
		AnimationEvent:   animationEvent,
		Scale:            mgl32.Vec3{1, 1, 1},
		InverseScale:     mgl32.Vec3{1, 1, 1},
		LastScale:        mgl32.Vec3{1, 1, 1},
		LastInverseScale: mgl32.Vec3{1, 1, 1},
		Rotation:         mgl32.QuatIdent(),
		LastRotation:     mgl32.QuatIdent(),
		Transform:        mgl32.Ident4(),
		flagAlive:        true,
		flagActive:       true,
		flagNew:          true,
		flagStateless:    t.Stateless,
		EmitterBufferOffset: noReservation,
		BoneBufferOffset:    noReservation,
	}
	e.StartTime = -delay
	e.EmitterTime = e.StartTime

	if t.Interval.MaxStart > 0 {
		e.Interval.Template = t.Interval
		e.Interval.Enabled = true
		e.Interval.Duration = sampleRange(t.Interval.MinStart, t.Interval.MaxStart, seed)
		e.flagPaused = true
	}
	return e
}

func sampleRange(min, max, seed float32) float32 {
	if max <= min {
		return min
	}
	return min + (max-min)*clamp01(seed)
}

// tick advances the emitter's state machine by dt seconds, per spec §4.3.
// The template's ScaleParticleDuration and ScaleEmitterDuration flags
// select which effective speed multiplier (animation-scaled or 1) applies
// to particles and to the emitter clock respectively.
func (e *Emitter) tick(dt float32) {
	// 1. Cull reset
	wasCulled := e.culled.swap(true)
	e.flagWasCulled = wasCulled
	if !e.flagNew {
		e.flagLastEmit = false
	}
	if e.EmitterTime > 0 {
		e.flagNew = false
	}

	// 2. Restart
	if e.flagActive && !e.flagWasActive && !e.Template.Continuous && e.EmitterTime > 0 {
		e.EmitterTime = 0
		e.flagNew = true
		if e.Interval.Template.MaxStart > 0 {
			e.Interval.Duration = sampleRange(e.Interval.Template.MinStart, e.Interval.Template.MaxStart, 0.5)
			e.flagPaused = true
		}
	}
	e.flagWasActive = e.flagActive

	// 3. Snapshot
	e.PrevEmitterTime = e.EmitterTime

	// 4. Speed selection
	animSpeed := e.AnimationSpeed
	if animSpeed < e.MinAnimSpeed {
		animSpeed = e.MinAnimSpeed
	}
	particleSpeed := float32(1)
	emitterSpeed := float32(1)
	if e.Template.ScaleParticleDuration {
		particleSpeed = animSpeed
	}
	if e.Template.ScaleEmitterDuration {
		emitterSpeed = animSpeed
	}

	// 5. Interval advance
	if !e.flagActive {
		e.flagPaused = false
	} else if e.Interval.Enabled {
		e.Interval.Duration -= emitterSpeed * dt
		if e.Interval.Duration < 0 {
			overshoot := e.Interval.Duration
			e.flagPaused = !e.flagPaused
			var lo, hi float32
			if e.flagPaused {
				lo, hi = e.Interval.Template.MinPause, e.Interval.Template.MaxPause
			} else {
				lo, hi = e.Interval.Template.MinActive, e.Interval.Template.MaxActive
			}
			if hi <= 0 {
				e.Interval.Enabled = false
				e.flagPaused = false
			} else {
				// Carry the prior phase's overshoot into the new phase so
				// a coarse step size doesn't skew phase boundaries (spec
				// §4.3 step 5, testable property: interval scheduling).
				e.Interval.Duration = sampleRange(lo, hi, 0.5) + overshoot
			}
		}
	}

	// 6. Time advance
	if !e.flagPaused {
		e.EmitterTime += emitterSpeed * dt
	}
	if e.AnimationEvent {
		e.EventTime += animSpeed * dt
	}

	// 7. Particle delta
	e.ParticleDeltaTime = particleSpeed * dt
	if e.PrevEmitterTime < 0 && e.EmitterTime >= 0 && emitterSpeed != 0 {
		e.ParticleDeltaTime = particleSpeed * (e.EmitterTime / emitterSpeed)
	}

	// 8. Bone distances
	recomputeBoneDistances(e.BonePositions)

	// 9. Active -> ending transition
	if e.flagActive && !e.Template.Continuous {
		maxTime := e.EventTime
		if e.EmitterTime > maxTime {
			maxTime = e.EmitterTime
		}
		if maxTime >= e.EmitterDuration {
			e.flagActive = false
			e.DieTime = maxTime - e.EmitterDuration
		}
	}

	// 10. Death accounting
	if e.flagActive {
		e.DieTime = 0
		e.ParticleDieTime = 0
	} else {
		e.DieTime += emitterSpeed * dt
		e.ParticleDieTime += particleSpeed * dt
		if e.ParticleDieTime > e.ParticleDuration && !e.flagLastEmit {
			e.flagAlive = false
		}
	}

	// 11. Transform refresh
	e.refreshTransform()
}

func recomputeBoneDistances(bones []BonePosition) {
	if len(bones) == 0 {
		return
	}
	bones[0].CumulativeDistance = 0
	for i := 1; i < len(bones); i++ {
		d := bones[i].Position.Sub(bones[i-1].Position).Len()
		bones[i].CumulativeDistance = bones[i-1].CumulativeDistance + d
	}
}

var mirrorX = mgl32.Scale3D(-1, 1, 1)

// refreshTransform decomposes e.Transform into translation/rotation/scale,
// handling a negative determinant by mirroring the X axis first (spec
// §4.3 step 11), grounded on GpuParticleSystem.cpp's UpdateEmitterTransform.
func (e *Emitter) refreshTransform() {
	m := e.Transform
	if m.Det() < 0 {
		m = m.Mul4(mirrorX)
	}

	translation := mgl32.Vec3{m[12], m[13], m[14]}

	col0 := mgl32.Vec3{m[0], m[1], m[2]}
	col1 := mgl32.Vec3{m[4], m[5], m[6]}
	col2 := mgl32.Vec3{m[8], m[9], m[10]}
	scale := mgl32.Vec3{col0.Len(), col1.Len(), col2.Len()}

	rotMat := mgl32.Ident3()
	if scale[0] != 0 {
		rotMat.SetCol(0, col0.Mul(1/scale[0]))
	}
	if scale[1] != 0 {
		rotMat.SetCol(1, col1.Mul(1/scale[1]))
	}
	if scale[2] != 0 {
		rotMat.SetCol(2, col2.Mul(1/scale[2]))
	}
	rotation := mgl32.Mat4ToQuat(rotMat.Mat4())

	if e.Transform.Det() < 0 {
		scale[0] = -scale[0]
	}

	e.Translation = translation
	e.Rotation = rotation
	e.Scale = scale
	e.InverseScale = mgl32.Vec3{invOrZero(scale[0]), invOrZero(scale[1]), invOrZero(scale[2])}

	if e.flagNew {
		e.LastTranslation = e.Translation
		e.LastRotation = e.Rotation
		e.LastScale = e.Scale
		e.LastInverseScale = e.InverseScale
		e.PrevBonePositions = nil
	}
}

func invOrZero(v float32) float32 {
	if v == 0 {
		return 0
	}
	return 1 / v
}

// compose rebuilds a 4x4 matrix from translation/rotation/scale, the
// inverse of refreshTransform's decomposition (used by transform_test.go's
// round-trip property).
func compose(translation mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(translation[0], translation[1], translation[2]).
		Mul4(rotation.Mat4()).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}

// finalize is the MoveEnd step: reset reservations, snapshot last_*,
// clear per-frame one-shot flags.
func (e *Emitter) finalize() {
	e.EmitterBufferOffset = noReservation
	e.BoneBufferOffset = noReservation
	e.LastTranslation = e.Translation
	e.LastRotation = e.Rotation
	e.LastScale = e.Scale
	e.LastInverseScale = e.InverseScale
	if len(e.BonePositions) > 0 {
		e.PrevBonePositions = append(e.PrevBonePositions[:0], e.BonePositions...)
	}
	e.flagTeleported = false
}

// boundingBox computes the emitter's world-space AABB per spec §6, or an
// infinite box when the template ignores bounding or the emitter has no
// bones.
func (e *Emitter) boundingBox() (min, max mgl32.Vec3, infinite bool) {
	if e.Template.IgnoreBounding || len(e.BonePositions) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}, true
	}

	inf := float32(math.Inf(1))
	min = mgl32.Vec3{inf, inf, inf}
	max = mgl32.Vec3{-inf, -inf, -inf}
	for _, b := range e.BonePositions {
		w4 := e.Transform.Mul4x1(mgl32.Vec4{b.Position[0], b.Position[1], b.Position[2], 1})
		world := mgl32.Vec3{w4[0], w4[1], w4[2]}
		for i := 0; i < 3; i++ {
			if world[i] < min[i] {
				min[i] = world[i]
			}
			if world[i] > max[i] {
				max[i] = world[i]
			}
		}
	}

	maxScale := e.Scale[0]
	if e.Scale[1] > maxScale {
		maxScale = e.Scale[1]
	}
	if e.Scale[2] > maxScale {
		maxScale = e.Scale[2]
	}
	if maxScale < 1 {
		maxScale = 1
	}
	inflate := e.Template.BoundingSize * maxScale
	pad := mgl32.Vec3{inflate, inflate, inflate}
	return min.Sub(pad), max.Add(pad), false
}
