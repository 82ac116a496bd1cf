package stepper

import (
	"math"

	"github.com/san-kum/robosim/internal/kernel"
)

// Euler is the explicit Euler scheme (spec.md §4.6): always succeeds,
// recommends +∞ for the next step since it has no error estimate of its
// own.
type Euler struct{}

func NewEuler() *Euler { return &Euler{} }

func (e *Euler) TryStep(m *kernel.Model, deriv Derivative, q, v, a []float64, t, dt float64) Result {
	vNew := make([]float64, len(v))
	for i := range v {
		vNew[i] = v[i] + dt*a[i]
	}
	qNew := kernel.IntegrateConfiguration(m, q, v, dt)
	aNew := deriv(qNew, vNew, t+dt)
	return Result{Q: qNew, V: vNew, A: aNew, T: t + dt, DtNext: math.Inf(1), Accepted: true}
}
