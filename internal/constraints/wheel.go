package constraints

import "github.com/san-kum/robosim/internal/kernel"

// Wheel enforces rolling-without-slipping contact for a wheel frame
// against the ground (spec.md §3 "Wheel(frameIdx, radius, groundNormal,
// wheelAxis)"): lateral slip and vertical penetration are bilateral and
// unilateral rows respectively, like FixedFrame, while the row along
// the rolling direction targets the wheel's own spin rate rather than
// zero relative velocity.
type Wheel struct {
	base
	FrameIdx    int
	Radius      float64
	GroundNormal kernel.Vec3
	WheelAxis   kernel.Vec3

	Friction, Torsion float64
}

func NewWheel(name string, frameIdx int, radius float64, groundNormal, wheelAxis kernel.Vec3, friction, torsion, baumgarteFreq float64) *Wheel {
	return &Wheel{
		base:         newBase(name, 4, baumgarteFreq),
		FrameIdx:     frameIdx,
		Radius:       radius,
		GroundNormal: groundNormal.Normalized(),
		WheelAxis:    wheelAxis.Normalized(),
		Friction:     friction,
		Torsion:      torsion,
	}
}

func (c *Wheel) RowDim() int { return 4 }

// rollingDirection is the ground-tangent direction the wheel rolls
// along: perpendicular to both the ground normal and the wheel's spin
// axis.
func (c *Wheel) rollingDirection() kernel.Vec3 {
	return c.GroundNormal.Cross(c.WheelAxis).Normalized()
}

func (c *Wheel) ComputeJacobianAndDrift(m *kernel.Model, d *kernel.Data, q, v []float64) (*kernel.Matrix, []float64) {
	n := c.GroundNormal
	roll := c.rollingDirection()
	lateral := n.Cross(roll)

	center := kernel.FramePlacement(m, d, c.FrameIdx).Pos
	contact := center.Sub(n.Scale(c.Radius))
	depth := contact.Dot(n)

	Jf := kernel.GetFrameJacobian(m, d, q, c.FrameIdx)
	J := kernel.NewMatrix(4, m.NV)
	axes := [3]kernel.Vec3{lateral, roll, n}
	for r, axis := range axes {
		for col := 0; col < m.NV; col++ {
			ang := kernel.Vec3{X: Jf.At(0, col), Y: Jf.At(1, col), Z: Jf.At(2, col)}
			lin := kernel.Vec3{X: Jf.At(3, col), Y: Jf.At(4, col), Z: Jf.At(5, col)}
			vContact := lin.Add(ang.Cross(contact.Sub(center)))
			if r == 1 {
				// rolling row: contact-point velocity along roll minus the
				// spin contribution r*omega_axis must vanish.
				J.Set(r, col, axis.Dot(vContact)-c.Radius*c.WheelAxis.Dot(ang))
				continue
			}
			J.Set(r, col, axis.Dot(vContact))
		}
	}
	for col := 0; col < m.NV; col++ {
		ang := kernel.Vec3{X: Jf.At(0, col), Y: Jf.At(1, col), Z: Jf.At(2, col)}
		J.Set(3, col, n.Dot(ang))
	}

	drift := make([]float64, 4)
	drift[2] = baumgarteBias(c.baumgarteFreq, depth)
	return J, drift
}

func (c *Wheel) Blocks() []Block {
	torsionZero := c.Torsion < transitionEpsFloor
	frictionZero := c.Friction < transitionEpsFloor
	return []Block{
		{Kind: BlockFixed, Rows: []int{2}, Lo: 0, Hi: posInfinity},
		{Kind: BlockSymmetric, Rows: []int{3, 2}, Coef: c.Torsion, IsZero: torsionZero},
		{Kind: BlockCone, Rows: []int{0, 1, 2}, Coef: c.Friction, IsZero: frictionZero},
	}
}
