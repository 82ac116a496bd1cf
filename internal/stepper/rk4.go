package stepper

import (
	"math"

	"github.com/san-kum/robosim/internal/kernel"
)

// RK4 is the classical 4-stage fixed-step scheme (spec.md §4.6): always
// succeeds, recommends +∞. Velocity stages combine as an ordinary
// weighted sum (the tangent space is Euclidean); the four position
// stages are combined by averaging their tangent contributions before a
// single manifold Integrate, so free-flyer/spherical joints are never
// summed component-wise.
type RK4 struct {
	k1v, k2v, k3v, k4v []float64
	scratchV           []float64
}

func NewRK4() *RK4 { return &RK4{} }

func (r *RK4) ensureScratch(n int) {
	if len(r.k1v) == n {
		return
	}
	r.k1v = make([]float64, n)
	r.k2v = make([]float64, n)
	r.k3v = make([]float64, n)
	r.k4v = make([]float64, n)
	r.scratchV = make([]float64, n)
}

func (r *RK4) TryStep(m *kernel.Model, deriv Derivative, q, v, a []float64, t, dt float64) Result {
	n := len(v)
	r.ensureScratch(n)

	copy(r.k1v, a)

	q2 := kernel.IntegrateConfiguration(m, q, v, dt*0.5)
	for i := 0; i < n; i++ {
		r.scratchV[i] = v[i] + dt*0.5*r.k1v[i]
	}
	k2v := deriv(q2, r.scratchV, t+dt*0.5)
	copy(r.k2v, k2v)
	v2 := append([]float64(nil), r.scratchV...)

	q3 := kernel.IntegrateConfiguration(m, q, v2, dt*0.5)
	for i := 0; i < n; i++ {
		r.scratchV[i] = v[i] + dt*0.5*r.k2v[i]
	}
	k3v := deriv(q3, r.scratchV, t+dt*0.5)
	copy(r.k3v, k3v)
	v3 := append([]float64(nil), r.scratchV...)

	q4 := kernel.IntegrateConfiguration(m, q, v3, dt)
	for i := 0; i < n; i++ {
		r.scratchV[i] = v[i] + dt*r.k3v[i]
	}
	k4v := deriv(q4, r.scratchV, t+dt)
	copy(r.k4v, k4v)
	v4 := append([]float64(nil), r.scratchV...)

	vAvg := make([]float64, n)
	vNew := make([]float64, n)
	for i := 0; i < n; i++ {
		vAvg[i] = (v[i] + 2*v2[i] + 2*v3[i] + v4[i]) / 6
		vNew[i] = v[i] + dt/6*(r.k1v[i]+2*r.k2v[i]+2*r.k3v[i]+r.k4v[i])
	}
	qNew := kernel.IntegrateConfiguration(m, q, vAvg, dt)
	aNew := deriv(qNew, vNew, t+dt)

	return Result{Q: qNew, V: vNew, A: aNew, T: t + dt, DtNext: math.Inf(1), Accepted: true}
}
