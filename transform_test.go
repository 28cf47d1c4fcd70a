package gpuparticles

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestDecomposeRecomposeRoundTrip(t *testing.T) {
	cases := []mgl32.Mat4{
		mgl32.Ident4(),
		mgl32.Translate3D(1, 2, 3),
		mgl32.Scale3D(2, 3, 4),
		mgl32.HomogRotate3DY(0.7).Mul4(mgl32.Translate3D(5, -1, 2)),
	}

	for _, m := range cases {
		e := &Emitter{Transform: m, Template: &EmitterTemplate{}, flagNew: false}
		e.refreshTransform()

		got := compose(e.Translation, e.Rotation, e.Scale)
		assertMatClose(t, m, got, 1e-3)
	}
}

func TestDecomposeHandlesNegativeDeterminantMirror(t *testing.T) {
	mirrored := mgl32.Scale3D(-1, 1, 1)
	e := &Emitter{Transform: mirrored, Template: &EmitterTemplate{}}
	e.refreshTransform()

	assert.Less(t, e.Scale[0], float32(0))
}

func TestRefreshTransformSnapshotsLastOnNew(t *testing.T) {
	e := &Emitter{
		Transform: mgl32.Translate3D(1, 1, 1),
		Template:  &EmitterTemplate{},
		flagNew:   true,
	}
	e.refreshTransform()

	assert.Equal(t, e.Translation, e.LastTranslation)
	assert.Equal(t, e.Rotation, e.LastRotation)
	assert.Equal(t, e.Scale, e.LastScale)
}

func assertMatClose(t *testing.T, a, b mgl32.Mat4, eps float32) {
	t.Helper()
	var sum float32
	for i := 0; i < 16; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	assert.LessOrEqual(t, sum, eps*eps, "matrices differ beyond tolerance: %v vs %v", a, b)
}
