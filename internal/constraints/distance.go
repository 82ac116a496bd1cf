package constraints

import "github.com/san-kum/robosim/internal/kernel"

// Distance pins the Euclidean distance between two frames to a
// reference length (spec.md §3 "Distance(frame1, frame2, reference
// length)"), e.g. a cable or rigid link between two robots.
type Distance struct {
	base
	Frame1, Frame2 int
	RefLength      float64
}

func NewDistance(name string, frame1, frame2 int, refLength float64, baumgarteFreq float64) *Distance {
	return &Distance{base: newBase(name, 1, baumgarteFreq), Frame1: frame1, Frame2: frame2, RefLength: refLength}
}

func (c *Distance) RowDim() int { return 1 }

func (c *Distance) ComputeJacobianAndDrift(m *kernel.Model, d *kernel.Data, q, v []float64) (*kernel.Matrix, []float64) {
	p1 := kernel.FramePlacement(m, d, c.Frame1).Pos
	p2 := kernel.FramePlacement(m, d, c.Frame2).Pos
	delta := p2.Sub(p1)
	dist := delta.Norm()
	axis := delta.Normalized()
	if dist < 1e-12 {
		axis = kernel.Vec3{X: 1}
	}

	J1 := kernel.GetFrameJacobian(m, d, q, c.Frame1)
	J2 := kernel.GetFrameJacobian(m, d, q, c.Frame2)
	J := kernel.NewMatrix(1, m.NV)
	for col := 0; col < m.NV; col++ {
		lin1 := kernel.Vec3{X: J1.At(3, col), Y: J1.At(4, col), Z: J1.At(5, col)}
		lin2 := kernel.Vec3{X: J2.At(3, col), Y: J2.At(4, col), Z: J2.At(5, col)}
		J.Set(0, col, axis.Dot(lin2.Sub(lin1)))
	}

	err := dist - c.RefLength
	return J, []float64{baumgarteBias(c.baumgarteFreq, err)}
}

func (c *Distance) Blocks() []Block { return nil }
