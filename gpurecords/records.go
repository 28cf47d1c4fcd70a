// Package gpurecords encodes the fixed-layout, 16-byte-aligned GPU records
// the upload orchestrator writes into the mapped instance and bone
// buffers, and the platform-tier buffer sizing constants those records
// are budgeted against. Layouts are reproduced exactly from the external
// interface contract; offsets must never drift from the shader's
// expectations.
package gpurecords

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// EmitterRecordSize is the byte size of one per-emitter GPU record.
const EmitterRecordSize = 144

// BoneRecordSize is the byte size of one per-bone GPU record.
const BoneRecordSize = 32

// EmitterRecord mirrors the CPU-side fields written into the instance
// buffer's per-emitter slot.
type EmitterRecord struct {
	Scale             mgl32.Vec3
	Duration          float32
	LastScale         mgl32.Vec3
	DeadTime          float32
	InverseScale      mgl32.Vec3
	PackedFlags       uint32
	LastInverseScale  mgl32.Vec3
	DeltaTime         float32
	Rotation          mgl32.Quat
	LastRotation      mgl32.Quat
	Translation       mgl32.Vec3
	Time              float32
	LastTranslation   mgl32.Vec3
	PrevTime          float32
	CullingAggression float32
	BoneStart         uint32
	BoneCount         uint32
	ParticlesStart    uint32
}

// Encode writes r into dst[0:EmitterRecordSize] using the layout from
// spec §6. dst must be at least EmitterRecordSize bytes.
func (r EmitterRecord) Encode(dst []byte) {
	_ = dst[EmitterRecordSize-1]
	putVec3(dst[0:], r.Scale)
	binary.LittleEndian.PutUint32(dst[12:], math.Float32bits(r.Duration))
	putVec3(dst[16:], r.LastScale)
	binary.LittleEndian.PutUint32(dst[28:], math.Float32bits(r.DeadTime))
	putVec3(dst[32:], r.InverseScale)
	binary.LittleEndian.PutUint32(dst[44:], r.PackedFlags)
	putVec3(dst[48:], r.LastInverseScale)
	binary.LittleEndian.PutUint32(dst[60:], math.Float32bits(r.DeltaTime))
	putQuat(dst[64:], r.Rotation)
	putQuat(dst[80:], r.LastRotation)
	putVec3(dst[96:], r.Translation)
	binary.LittleEndian.PutUint32(dst[108:], math.Float32bits(r.Time))
	putVec3(dst[112:], r.LastTranslation)
	binary.LittleEndian.PutUint32(dst[124:], math.Float32bits(r.PrevTime))
	binary.LittleEndian.PutUint32(dst[128:], math.Float32bits(r.CullingAggression))
	binary.LittleEndian.PutUint32(dst[132:], r.BoneStart)
	binary.LittleEndian.PutUint32(dst[136:], r.BoneCount)
	binary.LittleEndian.PutUint32(dst[140:], r.ParticlesStart)
}

// BoneRecord is one bone's current/previous position and cumulative
// distance, packed into two float4s.
type BoneRecord struct {
	Position               mgl32.Vec3
	CumulativeDistance     float32
	PrevPosition           mgl32.Vec3
	PrevCumulativeDistance float32
}

// Encode writes r into dst[0:BoneRecordSize].
func (r BoneRecord) Encode(dst []byte) {
	_ = dst[BoneRecordSize-1]
	putVec3(dst[0:], r.Position)
	binary.LittleEndian.PutUint32(dst[12:], math.Float32bits(r.CumulativeDistance))
	putVec3(dst[16:], r.PrevPosition)
	binary.LittleEndian.PutUint32(dst[28:], math.Float32bits(r.PrevCumulativeDistance))
}

func putVec3(dst []byte, v mgl32.Vec3) {
	binary.LittleEndian.PutUint32(dst[0:], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(dst[4:], math.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(dst[8:], math.Float32bits(v[2]))
}

func putQuat(dst []byte, q mgl32.Quat) {
	binary.LittleEndian.PutUint32(dst[0:], math.Float32bits(q.V[0]))
	binary.LittleEndian.PutUint32(dst[4:], math.Float32bits(q.V[1]))
	binary.LittleEndian.PutUint32(dst[8:], math.Float32bits(q.V[2]))
	binary.LittleEndian.PutUint32(dst[12:], math.Float32bits(q.W))
}

// Tier selects a platform's buffer sizing class (spec §6), fixed at
// construction time per the AMBIENT STACK configuration note — not a
// runtime-toggled config file.
type Tier int

const (
	TierMobile Tier = iota
	TierConsole
	TierDesktop
)

const (
	kib = 1024
	mib = 1024 * kib
)

// BufferSizes is the byte capacity of each platform tier's three GPU
// buffers, from spec §6.
type BufferSizes struct {
	InstanceBufferBytes uint32
	BoneBufferBytes     uint32
	EmitterBufferBytes  uint32
}

var tierSizes = [...]BufferSizes{
	TierMobile:  {InstanceBufferBytes: 16 * mib, BoneBufferBytes: 512 * kib, EmitterBufferBytes: 1 * mib},
	TierConsole: {InstanceBufferBytes: 32 * mib, BoneBufferBytes: 1 * mib, EmitterBufferBytes: 2 * mib},
	TierDesktop: {InstanceBufferBytes: 64 * mib, BoneBufferBytes: 2 * mib, EmitterBufferBytes: 4 * mib},
}

// Sizes returns t's buffer sizing.
func (t Tier) Sizes() BufferSizes { return tierSizes[t] }

// InstanceCount is the number of particle slots the tier's instance
// buffer holds, given the engine's per-particle record size supplied by
// the caller (the particle record itself is shader-defined and outside
// this package's scope).
func (t Tier) InstanceCount(particleRecordSize uint32) uint32 {
	return t.Sizes().InstanceBufferBytes / particleRecordSize
}

// MaxBones is the number of bone records the tier's bone buffer holds.
func (t Tier) MaxBones() uint32 {
	return t.Sizes().BoneBufferBytes / BoneRecordSize
}

// MaxEmitters is the number of emitter records the tier's emitter buffer
// holds.
func (t Tier) MaxEmitters() uint32 {
	return t.Sizes().EmitterBufferBytes / EmitterRecordSize
}
