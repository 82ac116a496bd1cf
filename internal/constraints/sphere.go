package constraints

import "github.com/san-kum/robosim/internal/kernel"

// Sphere is the collision-body analog of FixedFrame for a spherical
// geometry rolling or resting on the ground profile (spec.md §3
// "Sphere(frameIdx, radius)"). Unlike FixedFrame it re-derives its
// contact point and normal from the ground profile every solve rather
// than holding a fixed reference pose, since a rolling sphere's contact
// point is never at rest relative to the body frame.
type Sphere struct {
	base
	FrameIdx int
	Radius   float64
	Ground   kernel.GroundProfile

	Friction, Torsion float64
}

func NewSphere(name string, frameIdx int, radius float64, ground kernel.GroundProfile, friction, torsion, baumgarteFreq float64) *Sphere {
	return &Sphere{base: newBase(name, 4, baumgarteFreq), FrameIdx: frameIdx, Radius: radius, Ground: ground, Friction: friction, Torsion: torsion}
}

func (c *Sphere) RowDim() int { return 4 }

func (c *Sphere) ComputeJacobianAndDrift(m *kernel.Model, d *kernel.Data, q, v []float64) (*kernel.Matrix, []float64) {
	center := kernel.FramePlacement(m, d, c.FrameIdx).Pos
	geom := kernel.Geometry{FrameIdx: c.FrameIdx, Shape: kernel.ShapeSphere, Radius: c.Radius}
	result, _ := kernel.ComputeGroundCollision(geom, center, c.Ground)

	n := result.Normal
	ref := kernel.Vec3{X: 1}
	if n.Cross(ref).Norm() < 1e-6 {
		ref = kernel.Vec3{Y: 1}
	}
	t1 := n.Cross(ref).Normalized()
	t2 := n.Cross(t1)

	Jf := kernel.GetFrameJacobian(m, d, q, c.FrameIdx)
	J := kernel.NewMatrix(4, m.NV)
	axes := [3]kernel.Vec3{t1, t2, n}
	for r, axis := range axes {
		for col := 0; col < m.NV; col++ {
			lin := kernel.Vec3{X: Jf.At(3, col), Y: Jf.At(4, col), Z: Jf.At(5, col)}
			J.Set(r, col, axis.Dot(lin))
		}
	}
	for col := 0; col < m.NV; col++ {
		ang := kernel.Vec3{X: Jf.At(0, col), Y: Jf.At(1, col), Z: Jf.At(2, col)}
		J.Set(3, col, n.Dot(ang))
	}

	drift := make([]float64, 4)
	drift[2] = baumgarteBias(c.baumgarteFreq, result.Depth)
	return J, drift
}

func (c *Sphere) Blocks() []Block {
	torsionZero := c.Torsion < transitionEpsFloor
	frictionZero := c.Friction < transitionEpsFloor
	return []Block{
		{Kind: BlockFixed, Rows: []int{2}, Lo: 0, Hi: posInfinity},
		{Kind: BlockSymmetric, Rows: []int{3, 2}, Coef: c.Torsion, IsZero: torsionZero},
		{Kind: BlockCone, Rows: []int{0, 1, 2}, Coef: c.Friction, IsZero: frictionZero},
	}
}
