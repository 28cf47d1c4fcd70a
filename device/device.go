// Package device is the narrow contract the particle engine depends on
// for GPU-resident buffers and render-system entities (spec §1's "Device
// layer" and "Scene/graph" collaborators). It defines the interfaces the
// core programs against, plus a WebGPU-backed implementation using
// github.com/cogentcore/webgpu, the same binding gekko itself uses.
package device

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

// Buffer is a typed, structured GPU buffer the engine can lock with
// discard semantics and unlock once per frame.
type Buffer interface {
	// LockDiscard returns a CPU-visible staging range of at least size
	// bytes; its previous contents are undefined.
	LockDiscard(size uint32) []byte
	// Unlock flushes the staged bytes to the GPU resource.
	Unlock()
	Size() uint32
}

// EntitySystem is the external renderer's entity contract (spec §4.4):
// the engine creates/destroys/moves opaque entities, never reaching
// inside them.
type EntitySystem interface {
	Create(desc EntityDesc) uint64
	Destroy(id uint64)
	Move(id uint64, aabb AABB, transformChanged bool, uniforms []byte, instanceCount uint32)
}

// BlendMode is the render-pass tag the entity system interprets; the
// engine treats it as opaque.
type BlendMode int

const (
	BlendOpaque BlendMode = iota
	BlendCompute
	BlendComputePost
)

// EntityDesc describes one update/sort/render entity at creation time.
type EntityDesc struct {
	RenderGraph  uuid.UUID
	Mesh         uuid.UUID
	Blend        BlendMode
	Primitive    Primitive
	CullMode     int
	VertexLayout any
	Uniforms     []byte
	Bindings     []byte
}

type Primitive int

const (
	PrimitiveTriangleList Primitive = iota
	PrimitiveNone
)

// AABB is an axis-aligned bounding box in world space. An effectively
// infinite box (Min/Max at -/+1e30) disables spatial culling for
// non-spatial entities (update/sort), per spec §6.
type AABB struct {
	Min, Max [3]float32
}

// WebGPUBuffer is a double-buffered structured buffer backed by wgpu,
// implementing the lock-discard pattern the upload orchestrator needs.
// Because wgpu's write-mapping (MapAsync(MapModeWrite, ...)) is
// asynchronous and cannot be driven synchronously within one frame tick,
// writes go through a CPU staging slice flushed with Queue.WriteBuffer on
// Unlock — the same approach gekko's manager_hiz.go uses for its
// MapModeRead readback path, mirrored here for the write side.
type WebGPUBuffer struct {
	device  *wgpu.Device
	queue   *wgpu.Queue
	gpuBuf  *wgpu.Buffer
	staging []byte
	size    uint32
}

// NewWebGPUBuffer creates a GPU-resident buffer of size bytes with usage
// Storage|CopyDst, suitable for a structured instance/emitter/bone buffer.
func NewWebGPUBuffer(dev *wgpu.Device, queue *wgpu.Queue, label string, size uint32) (*WebGPUBuffer, error) {
	buf, err := dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label:           label,
		Size:            uint64(size),
		Usage:           wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("device: create buffer %q: %w", label, err)
	}
	return &WebGPUBuffer{device: dev, queue: queue, gpuBuf: buf, size: size}, nil
}

func (b *WebGPUBuffer) LockDiscard(size uint32) []byte {
	if uint32(cap(b.staging)) < size {
		b.staging = make([]byte, size)
	}
	b.staging = b.staging[:size]
	for i := range b.staging {
		b.staging[i] = 0
	}
	return b.staging
}

func (b *WebGPUBuffer) Unlock() {
	if err := b.queue.WriteBuffer(b.gpuBuf, 0, b.staging); err != nil {
		panic(err)
	}
}

func (b *WebGPUBuffer) Size() uint32 { return b.size }

// Release frees the underlying GPU resource.
func (b *WebGPUBuffer) Release() {
	if b.gpuBuf != nil {
		b.gpuBuf.Release()
	}
}
