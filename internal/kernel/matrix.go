package kernel

import "math"

// Matrix is a dense row-major matrix sized at construction time; used for
// the joint-space inertia M (NV x NV) and the stacked constraint
// operators J (d x NV) the engine assembles each step.
type Matrix struct {
	Rows, Cols int
	Data       []float64
}

func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

func (m *Matrix) At(i, j int) float64     { return m.Data[i*m.Cols+j] }
func (m *Matrix) Set(i, j int, v float64) { m.Data[i*m.Cols+j] = v }
func (m *Matrix) Add(i, j int, v float64) { m.Data[i*m.Cols+j] += v }

func (m *Matrix) Zero() {
	for i := range m.Data {
		m.Data[i] = 0
	}
}

func (m *Matrix) MulVec(x []float64) []float64 {
	out := make([]float64, m.Rows)
	for i := 0; i < m.Rows; i++ {
		s := 0.0
		row := i * m.Cols
		for j := 0; j < m.Cols; j++ {
			s += m.Data[row+j] * x[j]
		}
		out[i] = s
	}
	return out
}

// CholeskyFactor holds the lower-triangular Cholesky factor L of a
// symmetric positive-definite matrix, A = L Lt, used for the
// joint-space-inertia solve and the JMinvJt assembly (spec §6.4
// "Cholesky of the joint-space inertia").
type CholeskyFactor struct {
	n int
	L *Matrix
}

// Cholesky factorizes m in place into a new lower-triangular factor.
// Returns false if m is not positive definite (a pivot underflows).
func Cholesky(m *Matrix) (*CholeskyFactor, bool) {
	n := m.Rows
	L := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := m.At(i, j)
			for k := 0; k < j; k++ {
				sum -= L.At(i, k) * L.At(j, k)
			}
			if i == j {
				if sum <= 1e-300 {
					return nil, false
				}
				L.Set(i, j, math.Sqrt(sum))
			} else {
				L.Set(i, j, sum/L.At(j, j))
			}
		}
	}
	return &CholeskyFactor{n: n, L: L}, true
}

// Solve returns x such that A x = b, given A's Cholesky factor.
func (c *CholeskyFactor) Solve(b []float64) []float64 {
	n := c.n
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		s := b[i]
		for k := 0; k < i; k++ {
			s -= c.L.At(i, k) * y[k]
		}
		y[i] = s / c.L.At(i, i)
	}
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		s := y[i]
		for k := i + 1; k < n; k++ {
			s -= c.L.At(k, i) * x[k]
		}
		x[i] = s / c.L.At(i, i)
	}
	return x
}

// SolveMat solves A X = B column-by-column, where B is rows-by-cols.
func (c *CholeskyFactor) SolveMat(b *Matrix) *Matrix {
	out := NewMatrix(b.Rows, b.Cols)
	col := make([]float64, b.Rows)
	for j := 0; j < b.Cols; j++ {
		for i := 0; i < b.Rows; i++ {
			col[i] = b.At(i, j)
		}
		x := c.Solve(col)
		for i := 0; i < b.Rows; i++ {
			out.Set(i, j, x[i])
		}
	}
	return out
}
