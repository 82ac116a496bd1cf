package constraints

import "github.com/san-kum/robosim/internal/kernel"

// JacobianFunc is a user-supplied Jacobian+drift callback, the shape
// User constraints are built from (spec.md §3 "User(externally
// supplied)").
type JacobianFunc func(m *kernel.Model, d *kernel.Data, q, v []float64) (*kernel.Matrix, []float64)

// User wraps an externally supplied constraint row set, with no
// friction/bound blocks of its own — callers needing inequality rows
// compose one of the other variants instead.
type User struct {
	base
	rows int
	fn   JacobianFunc
}

func NewUser(name string, rows int, baumgarteFreq float64, fn JacobianFunc) *User {
	return &User{base: newBase(name, rows, baumgarteFreq), rows: rows, fn: fn}
}

func (c *User) RowDim() int { return c.rows }

func (c *User) ComputeJacobianAndDrift(m *kernel.Model, d *kernel.Data, q, v []float64) (*kernel.Matrix, []float64) {
	return c.fn(m, d, q, v)
}

func (c *User) Blocks() []Block { return nil }
