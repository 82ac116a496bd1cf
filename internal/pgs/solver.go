package pgs

import (
	"math"

	"github.com/san-kum/robosim/internal/constraints"
	"github.com/san-kum/robosim/internal/kernel"
)

// PGSMaxIterations bounds a bounded solve (spec.md §4.2 "Max iterations
// PGS_MAX_ITERATIONS").
const PGSMaxIterations = 100

// PGSMinRegularizer is the floor r_min applied to the diagonal
// regularization term (spec.md §4.2).
const PGSMinRegularizer = 1e-11

// PGSMinToleranceAbs is a practical floor on tolAbs; not enforced, see
// DESIGN.md's Open Question decision — callers may pass tighter
// tolerances and simply fail to converge.
const PGSMinToleranceAbs = 1e-5

// Solver holds the tunables spec.md §6.3 exposes under
// constraints.regularization and the stepper's tolAbs/tolRel.
type Solver struct {
	Regularization float64
	TolAbs, TolRel float64
	MaxIterations  int
}

func NewSolver(regularization, tolAbs, tolRel float64) *Solver {
	return &Solver{Regularization: regularization, TolAbs: tolAbs, TolRel: tolRel, MaxIterations: PGSMaxIterations}
}

// Result is the outcome of one PGS solve.
type Result struct {
	Lambda    []float64
	Converged bool
	Iterations int
}

// Solve computes constraint Lagrange multipliers for the active
// constraint set (spec.md §4.2). u is total joint effort, n is the
// non-linear bias kernel.NonLinearEffects already produced for the same
// (q, v).
func (s *Solver) Solve(m *kernel.Model, d *kernel.Data, q, v, u, n []float64, active []constraints.Entry) Result {
	if len(active) == 0 {
		return Result{Converged: true}
	}
	if !kernel.FactorMassMatrix(m, d, q) {
		return Result{Converged: false}
	}

	asm := Assemble(m, d, q, v, active)
	A := kernel.ComputeJMinvJt(d, asm.J)
	regularize(A, s.Regularization)

	tmp := make([]float64, m.NV)
	for i := range tmp {
		tmp[i] = u[i] - n[i]
	}
	minvTmp := kernel.SolveJMinvJtv(d, tmp)
	jMinvTmp := asm.J.MulVec(minvTmp)

	rows := A.Rows
	b := make([]float64, rows)
	for i := 0; i < rows; i++ {
		b[i] = -asm.Gamma[i] - jMinvTmp[i]
	}

	if !asm.hasBlocks {
		chol, ok := kernel.Cholesky(A)
		if !ok {
			return Result{Lambda: make([]float64, rows), Converged: false}
		}
		x := chol.Solve(b)
		asm.Scatter(x)
		return Result{Lambda: x, Converged: true}
	}

	x := make([]float64, rows)
	y := make([]float64, rows)
	yPrev := make([]float64, rows)

	unbounded, bounded := partitionSpans(asm.spans)

	iter := 0
	for ; iter < s.MaxIterations; iter++ {
		copy(yPrev, y)

		for _, row := range unbounded {
			y[row] = b[row] - dotRow(A, row, x)
			x[row] += y[row] / A.At(row, row)
		}

		for depth := 0; depth < 3; depth++ {
			for _, span := range bounded {
				if depth >= len(span.blocks) {
					continue
				}
				applyBlock(A, b, x, y, span.offset, span.blocks[depth])
			}
		}

		if convergedInf(y, yPrev, s.TolAbs, s.TolRel) {
			iter++
			asm.Scatter(x)
			return Result{Lambda: x, Converged: true, Iterations: iter}
		}
	}

	asm.Scatter(x)
	return Result{Lambda: x, Converged: false, Iterations: iter}
}

func regularize(A *kernel.Matrix, r float64) {
	for i := 0; i < A.Rows; i++ {
		d := A.At(i, i)
		reg := d * r
		if reg < PGSMinRegularizer {
			reg = PGSMinRegularizer
		}
		A.Add(i, i, reg)
	}
}

func dotRow(A *kernel.Matrix, row int, x []float64) float64 {
	s := 0.0
	for c := 0; c < A.Cols; c++ {
		s += A.At(row, c) * x[c]
	}
	return s
}

// partitionSpans splits constraint row spans into globally-indexed rows
// with no blocks (plain Gauss-Seidel rows) and the spans that carry
// blocks (handled by the three bounded passes).
func partitionSpans(spans []rowSpan) (unbounded []int, bounded []rowSpan) {
	for _, s := range spans {
		if len(s.blocks) == 0 {
			for r := 0; r < s.dim; r++ {
				unbounded = append(unbounded, s.offset+r)
			}
			continue
		}
		bounded = append(bounded, s)
	}
	return
}

// applyBlock performs one block's coordinate update and projection
// (spec.md §4.2 "Three block passes"): a shared Gauss-Seidel step across
// every row in the block using the largest diagonal, followed by the
// block's own clamp/projection rule.
func applyBlock(A *kernel.Matrix, b, x, y []float64, offset int, block constraints.Block) {
	global := make([]int, len(block.Rows))
	aMax := 0.0
	for i, r := range block.Rows {
		global[i] = offset + r
		if d := A.At(global[i], global[i]); d > aMax {
			aMax = d
		}
	}
	if aMax <= 0 {
		return
	}
	for _, g := range global {
		y[g] = b[g] - dotRow(A, g, x)
		x[g] += y[g] / aMax
	}

	switch len(block.Rows) {
	case 1:
		x[global[0]] = clamp(x[global[0]], block.Lo, block.Hi)
	case 2:
		ref := x[global[len(global)-1]]
		threshold := block.Coef * ref
		x[global[0]] = clamp(x[global[0]], -threshold, threshold)
	default:
		ref := x[global[len(global)-1]]
		threshold := block.Coef * ref
		normSq := 0.0
		for _, g := range global[:len(global)-1] {
			normSq += x[g] * x[g]
		}
		if normSq > threshold*threshold && normSq > 0 {
			scale := threshold / math.Sqrt(normSq)
			for _, g := range global[:len(global)-1] {
				x[g] *= scale
			}
		}
	}

	if block.IsZero {
		for _, g := range global[:len(global)-1] {
			x[g] = 0
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// convergedInf tests the infinity-norm stopping rule (spec.md §4.2
// "|y − y_prev|_∞ < tolAbs + tolRel · |y|_∞").
func convergedInf(y, yPrev []float64, tolAbs, tolRel float64) bool {
	diffInf, yInf := 0.0, 0.0
	for i := range y {
		if d := math.Abs(y[i] - yPrev[i]); d > diffInf {
			diffInf = d
		}
		if a := math.Abs(y[i]); a > yInf {
			yInf = a
		}
	}
	return diffInf < tolAbs+tolRel*yInf
}
