package constraints

import (
	"math"

	"github.com/san-kum/robosim/internal/kernel"
)

// posInfinity is the open upper bound for unilateral push rows (joint
// bound, contact normal).
var posInfinity = math.Inf(1)

// BlockKind distinguishes the clamp rule a Block applies during a PGS
// bounded pass (spec.md §4.2 "Iteration", step 2).
type BlockKind int

const (
	// BlockFixed clamps a single coordinate to a literal [Lo, Hi] range
	// (the joint-bound unilateral push).
	BlockFixed BlockKind = iota
	// BlockSymmetric clamps a single coordinate to [-T, T] where
	// T = Coef * lambda at the block's reference row (torsional friction).
	BlockSymmetric
	// BlockCone scales a group of coordinates back inside a Euclidean
	// ball of radius T = Coef * lambda at the reference row (tangential
	// friction cone).
	BlockCone
)

// Block is one inequality/friction grouping of a constraint's rows,
// applied during a PGS bounded pass. Rows holds local row indices; for
// BlockSymmetric and BlockCone the last entry of Rows is the reference
// row supplying the normal-force lambda the threshold scales with.
type Block struct {
	Kind    BlockKind
	Rows    []int
	Lo, Hi  float64 // BlockFixed bounds
	Coef    float64 // friction/torsion coefficient for Symmetric/Cone
	IsZero  bool    // when true, zero all but the block's last row
}

// Constraint is the capability set every registry entry exposes (spec.md
// §3 "Constraint"): a Jacobian+drift pair, enable/disable, a
// Lagrange-multiplier slot, and a Baumgarte stabilization frequency.
type Constraint interface {
	Name() string
	RowDim() int
	Enabled() bool
	SetEnabled(bool)
	Reset()
	ComputeJacobianAndDrift(m *kernel.Model, d *kernel.Data, q, v []float64) (*kernel.Matrix, []float64)
	Lambda() []float64
	SetLambda(lambda []float64)
	BaumgarteFreq() float64
	Blocks() []Block
}

// base holds the fields every constraint variant shares.
type base struct {
	name          string
	enabled       bool
	lambda        []float64
	baumgarteFreq float64
}

func newBase(name string, rows int, baumgarteFreq float64) base {
	return base{name: name, lambda: make([]float64, rows), baumgarteFreq: baumgarteFreq}
}

func (b *base) Name() string          { return b.name }
func (b *base) Enabled() bool         { return b.enabled }
func (b *base) SetEnabled(v bool)     { b.enabled = v }
func (b *base) Lambda() []float64     { return b.lambda }
func (b *base) SetLambda(l []float64) { copy(b.lambda, l) }
func (b *base) BaumgarteFreq() float64 { return b.baumgarteFreq }

func (b *base) Reset() {
	for i := range b.lambda {
		b.lambda[i] = 0
	}
}

// baumgarteBias returns the Baumgarte stabilization term added to the
// drift vector: 2*freq*err (critically damped position correction),
// matching the PGS regularization freq the registry carries per
// constraint (spec.md §2 "Baumgarte stabilization frequency").
func baumgarteBias(freq float64, err float64) float64 {
	return 2 * freq * err
}
