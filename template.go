package gpuparticles

import (
	"math"

	"github.com/google/uuid"
)

// FaceLock controls how a particle's quad orients relative to the camera.
type FaceLock int

const (
	FaceLockNone FaceLock = iota
	FaceLockCamera
	FaceLockCameraZ
	FaceLockCameraFixed
	FaceLockCameraVelocity
	FaceLockVelocity
	FaceLockVelocityCamera
	FaceLockXY
	FaceLockXZ
	FaceLockYZ
	FaceLockXYZ
)

// LockMode controls whether an axis follows the emitter, only samples it
// at emit time, or ignores it entirely.
type LockMode int

const (
	LockDisabled LockMode = iota
	LockEmitOnly
	LockEnabled
)

// CullPriorityClass is a coarse hint independent of the per-frame
// cull_priority callback; it is carried through for parity with the
// original template but the engine itself only consumes the continuous
// cull_priority value supplied to frame_move_begin.
type CullPriorityClass int

const (
	CullPriorityGameplay CullPriorityClass = iota
	CullPriorityImportant
	CullPriorityCosmetic
)

// Curve is a minimal per-second particle-rate curve: either a constant or
// a small set of (time, value) keyframes, matching the original's
// Curve7-backed particles_per_second field closely enough for this
// engine's needs (only the maximum value over the curve's domain is used,
// in ComputeGroupCount).
type Curve struct {
	Constant  float32
	Keyframes []CurveKey
}

type CurveKey struct {
	Time  float32
	Value float32
}

func ConstantCurve(v float32) Curve { return Curve{Constant: v} }

// MaxValue returns the maximum value the curve can take.
func (c Curve) MaxValue() float32 {
	max := c.Constant
	for _, k := range c.Keyframes {
		if k.Value > max {
			max = k.Value
		}
	}
	return max
}

// EmitterInterval describes the start/active/pause phase ranges (seconds).
// A zero max disables that phase's resampling, per spec §3.
type EmitterInterval struct {
	MinStart, MaxStart   float32
	MinActive, MaxActive float32
	MinPause, MaxPause   float32
}

// RenderPassDesc is one render pass of an emitter template: the material/
// mesh pair and blend configuration for a single draw-call entity.
type RenderPassDesc struct {
	RenderGraph  uuid.UUID
	Mesh         uuid.UUID // used only when OverrideMesh is set; otherwise the template's DefaultMesh
	CullMode     CullMode
	OverrideMesh bool
}

type CullMode int

const (
	CullNone CullMode = iota
	CullCW
	CullCCW
)

// EmitterTemplate is the immutable, fully-resolved description an emitter
// instantiates. Template/asset loading (file parsing, material/texture
// resolution) happens externally; by the time the engine sees a template
// every handle inside it is already live.
type EmitterTemplate struct {
	UpdateGraph uuid.UUID // zero UUID: no update (compute) entity
	SortGraph   uuid.UUID // zero UUID: no sort (compute-post) entity
	RenderPasses []RenderPassDesc

	DefaultMesh uuid.UUID
	FaceLock    FaceLock

	ParticlesCountMin, ParticlesCountMax uint32
	EmitterDurationMin, EmitterDurationMax float32
	ParticleDurationMin, ParticleDurationMax float32
	BoundingSize     float32
	EmitBurst        float32
	MinAnimationSpeed float32
	GroupSizeShift   uint32
	Interval         EmitterInterval
	ParticlesPerSecond Curve

	LockRotation       LockMode
	LockRotationToBone LockMode
	LockScaleX         LockMode
	LockScaleXToBone   LockMode
	LockScaleY         LockMode
	LockScaleYToBone   LockMode
	LockScaleZ         LockMode
	LockScaleZToBone   LockMode

	CullPriority CullPriorityClass

	Continuous          bool
	LockedToBone        bool
	LockedToScreen       bool
	LockMovement        bool
	LockMovementToBone  bool
	LockTranslation     bool
	LockTranslationToBone bool
	IgnoreBounding      bool
	ReverseBones        bool
	Stateless           bool
	ScaleEmitterDuration bool
	ScaleParticleDuration bool
}

// IsLocked reports whether the emitter's translation/rotation are fully
// driven externally (e.g. attached to a bone) rather than by its own
// transform.
func (t *EmitterTemplate) IsLocked() bool {
	return t.LockTranslation ||
		t.LockTranslationToBone ||
		t.LockMovement ||
		t.LockMovementToBone ||
		t.LockRotation != LockDisabled ||
		t.LockRotationToBone != LockDisabled
}

// IsLockedScale reports whether any scale axis is externally driven.
func (t *EmitterTemplate) IsLockedScale() bool {
	return t.LockScaleX != LockDisabled ||
		t.LockScaleY != LockDisabled ||
		t.LockScaleZ != LockDisabled ||
		t.LockScaleXToBone != LockDisabled ||
		t.LockScaleYToBone != LockDisabled ||
		t.LockScaleZToBone != LockDisabled
}

// ComputeGroupCount computes the number of particle "groups" this
// template needs, before the group-size shift is applied. seed is a
// per-emitter value in [0,1] (typically derived from the emitter UID)
// used to vary particle counts across otherwise-identical emitters.
func (t *EmitterTemplate) ComputeGroupCount(seed float32, animationEvent bool) uint32 {
	if t.ParticlesPerSecond.Constant == 0 && len(t.ParticlesPerSecond.Keyframes) == 0 {
		lerped := float32(t.ParticlesCountMin) + float32(t.ParticlesCountMax+1-t.ParticlesCountMin)*clamp01(seed)
		count := uint32(lerped)
		if count > t.ParticlesCountMax {
			count = t.ParticlesCountMax
		}
		return count
	}

	particleDuration := t.ParticleDurationMax
	emitterDuration := t.EmitterDurationMax

	minAnim := t.MinAnimationSpeed
	if minAnim < 1e-1 {
		minAnim = 1e-1
	}

	if t.ScaleEmitterDuration || (animationEvent && !t.Continuous) {
		emitterDuration /= minAnim
	}
	if t.ScaleParticleDuration {
		particleDuration /= minAnim
	}

	maxPPS := t.ParticlesPerSecond.MaxValue()
	ringBufferTime := emitterDuration
	if t.Continuous || animationEvent || particleDuration < emitterDuration {
		ringBufferTime = particleDuration
	}

	return uint32(math.Ceil(float64(ringBufferTime*maxPPS))) + 1
}

// ComputeParticleCount is ComputeGroupCount left-shifted by the
// template's group size, giving the actual slot count to allocate.
func (t *EmitterTemplate) ComputeParticleCount(seed float32, animationEvent bool) uint32 {
	return t.ComputeGroupCount(seed, animationEvent) << t.GroupSizeShift
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
