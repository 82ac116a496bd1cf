package constraints

import (
	"math"

	"github.com/san-kum/robosim/internal/kernel"
)

// FixedFrame locks a frame's motion against a reference pose along a
// contact-local basis whose z axis is the ground normal (spec.md §3
// "FixedFrame(frameIdx, 6-bit mask, reference SE3, contact normal)").
// Only the four rows a rigid ground contact needs are modeled: two
// tangential (local x, y), the normal (local z), and torsion (spin
// about the normal) — spec.md §4.2's block layout is defined in exactly
// this row order.
type FixedFrame struct {
	base
	FrameIdx  int
	Reference kernel.SE3
	Normal    kernel.Vec3

	Friction    float64 // mu_f, tangential friction cone coefficient
	Torsion     float64 // mu_t, torsional friction coefficient
	TransitionEps float64
}

func NewFixedFrame(name string, frameIdx int, reference kernel.SE3, normal kernel.Vec3, friction, torsion float64, baumgarteFreq float64) *FixedFrame {
	return &FixedFrame{
		base:      newBase(name, 4, baumgarteFreq),
		FrameIdx:  frameIdx,
		Reference: reference,
		Normal:    normal.Normalized(),
		Friction:  friction,
		Torsion:   torsion,
	}
}

func (c *FixedFrame) RowDim() int { return 4 }

// contactBasis builds an orthonormal (t1, t2, n) frame from the stored
// contact normal, used to express the four constraint rows.
func (c *FixedFrame) contactBasis() (t1, t2, n kernel.Vec3) {
	n = c.Normal
	ref := kernel.Vec3{X: 1}
	if n.Cross(ref).Norm() < 1e-6 {
		ref = kernel.Vec3{Y: 1}
	}
	t1 = n.Cross(ref).Normalized()
	t2 = n.Cross(t1)
	return
}

// ComputeJacobianAndDrift assembles the 4xNV block: rows 0,1 pin world
// linear velocity at the frame along the tangent directions to zero,
// row 2 pins it along the normal, row 3 pins spin about the normal.
// Drift is the Baumgarte-stabilized position/orientation error against
// Reference along the same basis.
func (c *FixedFrame) ComputeJacobianAndDrift(m *kernel.Model, d *kernel.Data, q, v []float64) (*kernel.Matrix, []float64) {
	t1, t2, n := c.contactBasis()
	Jf := kernel.GetFrameJacobian(m, d, q, c.FrameIdx)

	J := kernel.NewMatrix(4, m.NV)
	rows := [3]kernel.Vec3{t1, t2, n}
	for r, axis := range rows {
		for col := 0; col < m.NV; col++ {
			lin := kernel.Vec3{X: Jf.At(3, col), Y: Jf.At(4, col), Z: Jf.At(5, col)}
			J.Set(r, col, axis.Dot(lin))
		}
	}
	for col := 0; col < m.NV; col++ {
		ang := kernel.Vec3{X: Jf.At(0, col), Y: Jf.At(1, col), Z: Jf.At(2, col)}
		J.Set(3, col, n.Dot(ang))
	}

	frame := kernel.FramePlacement(m, d, c.FrameIdx)
	posErr := frame.Pos.Sub(c.Reference.Pos)
	rotErr := kernel.Log3(c.Reference.Rot.Conjugate().Mul(frame.Rot))

	drift := make([]float64, 4)
	drift[0] = baumgarteBias(c.baumgarteFreq, t1.Dot(posErr))
	drift[1] = baumgarteBias(c.baumgarteFreq, t2.Dot(posErr))
	drift[2] = baumgarteBias(c.baumgarteFreq, n.Dot(posErr))
	drift[3] = baumgarteBias(c.baumgarteFreq, n.Dot(rotErr))
	return J, drift
}

// Blocks advertises the three contact blocks defined by spec.md §4.2:
// normal (row 2, unilateral push), torsional friction (rows {3,2}),
// tangential friction cone (rows {0,1,2}).
func (c *FixedFrame) Blocks() []Block {
	torsionZero := c.Torsion < transitionEpsFloor
	frictionZero := c.Friction < transitionEpsFloor
	return []Block{
		{Kind: BlockFixed, Rows: []int{2}, Lo: 0, Hi: math.Inf(1)},
		{Kind: BlockSymmetric, Rows: []int{3, 2}, Coef: c.Torsion, IsZero: torsionZero},
		{Kind: BlockCone, Rows: []int{0, 1, 2}, Coef: c.Friction, IsZero: frictionZero},
	}
}

const transitionEpsFloor = 1e-9
