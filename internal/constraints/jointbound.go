package constraints

import (
	"math"

	"github.com/san-kum/robosim/internal/kernel"
)

// JointBound enforces a one-sided position limit on a Rotary or Linear
// joint (spec.md §3 "JointBound(jointIdx, ref q_j, direction)"):
// direction=+1 bounds q_j from above at RefQ, direction=-1 from below.
type JointBound struct {
	base
	JointIdx  int
	RefQ      float64
	Direction float64
}

func NewJointBound(name string, jointIdx int, refQ, direction float64, baumgarteFreq float64) *JointBound {
	return &JointBound{base: newBase(name, 1, baumgarteFreq), JointIdx: jointIdx, RefQ: refQ, Direction: direction}
}

func (c *JointBound) RowDim() int { return 1 }

// ComputeJacobianAndDrift returns the single row selecting the joint's
// own velocity coordinate, signed -Direction so that a non-negative
// multiplier pushes q_j back inside the bound, and a Baumgarte-
// stabilized drift against the stored RefQ.
func (c *JointBound) ComputeJacobianAndDrift(m *kernel.Model, d *kernel.Data, q, v []float64) (*kernel.Matrix, []float64) {
	j := &m.Joints[c.JointIdx]
	J := kernel.NewMatrix(1, m.NV)
	J.Set(0, j.VIdx, -c.Direction)
	err := -c.Direction * (q[j.QIdx] - c.RefQ)
	drift := []float64{baumgarteBias(c.baumgarteFreq, err)}
	return J, drift
}

// Blocks advertises the single unilateral-push block (spec.md §4.2
// "Joint bound: one block — row 0, scalar, lower=0, upper=+∞").
func (c *JointBound) Blocks() []Block {
	return []Block{{Kind: BlockFixed, Rows: []int{0}, Lo: 0, Hi: math.Inf(1)}}
}
