package stepper

import (
	"math"

	"github.com/san-kum/robosim/internal/kernel"
)

// Dormand-Prince 5(4) tableau, carried over verbatim from the fixed-
// state-vector version of this scheme.
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// DOPRI5 is the adaptive embedded Dormand-Prince stepper (spec.md §4.6):
// FSAL, PI step control, returns Accepted=false and a shrunk DtNext when
// the estimated local error exceeds tolerance. Position stages are
// combined as weighted tangent vectors and passed through a single
// manifold Integrate each, so SE(3)/SO(3) joints stay on-manifold at
// every stage rather than being summed component-wise.
type DOPRI5 struct {
	safety, minScale, maxScale float64
	tolAbs, tolRel             float64
}

func NewDOPRI5(tolAbs, tolRel float64) *DOPRI5 {
	return &DOPRI5{safety: 0.9, minScale: 0.2, maxScale: 10.0, tolAbs: tolAbs, tolRel: tolRel}
}

func combine(n int, terms ...struct {
	coef float64
	vec  []float64
}) []float64 {
	out := make([]float64, n)
	for _, term := range terms {
		for i := 0; i < n; i++ {
			out[i] += term.coef * term.vec[i]
		}
	}
	return out
}

func term(coef float64, vec []float64) struct {
	coef float64
	vec  []float64
} {
	return struct {
		coef float64
		vec  []float64
	}{coef, vec}
}

func (r *DOPRI5) TryStep(m *kernel.Model, deriv Derivative, q, v, a []float64, t, dt float64) Result {
	n := len(v)

	k1v := a
	v1 := v

	q2 := kernel.IntegrateConfiguration(m, q, combine(n, term(b21, v1)), dt)
	v2 := combine(n, term(1, v), term(dt*b21, k1v))
	k2v := deriv(q2, v2, t+a2*dt)

	q3 := kernel.IntegrateConfiguration(m, q, combine(n, term(b31, v1), term(b32, v2)), dt)
	v3 := combine(n, term(1, v), term(dt*b31, k1v), term(dt*b32, k2v))
	k3v := deriv(q3, v3, t+a3*dt)

	q4 := kernel.IntegrateConfiguration(m, q, combine(n, term(b41, v1), term(b42, v2), term(b43, v3)), dt)
	v4 := combine(n, term(1, v), term(dt*b41, k1v), term(dt*b42, k2v), term(dt*b43, k3v))
	k4v := deriv(q4, v4, t+a4*dt)

	q5 := kernel.IntegrateConfiguration(m, q, combine(n, term(b51, v1), term(b52, v2), term(b53, v3), term(b54, v4)), dt)
	v5 := combine(n, term(1, v), term(dt*b51, k1v), term(dt*b52, k2v), term(dt*b53, k3v), term(dt*b54, k4v))
	k5v := deriv(q5, v5, t+a5*dt)

	q6 := kernel.IntegrateConfiguration(m, q, combine(n, term(b61, v1), term(b62, v2), term(b63, v3), term(b64, v4), term(b65, v5)), dt)
	v6 := combine(n, term(1, v), term(dt*b61, k1v), term(dt*b62, k2v), term(dt*b63, k3v), term(dt*b64, k4v), term(dt*b65, k5v))
	k6v := deriv(q6, v6, t+dt)

	qNew := kernel.IntegrateConfiguration(m, q, combine(n, term(c1, v1), term(c3, v3), term(c4, v4), term(c5, v5), term(c6, v6)), dt)
	vNew := combine(n, term(1, v), term(dt*c1, k1v), term(dt*c3, k3v), term(dt*c4, k4v), term(dt*c5, k5v), term(dt*c6, k6v))

	k7v := deriv(qNew, vNew, t+dt) // FSAL: reused as next step's k1v

	errMax := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1v[i] + dc3*k3v[i] + dc4*k4v[i] + dc5*k5v[i] + dc6*k6v[i] + dc7*k7v[i])
		scale := r.tolAbs + r.tolRel*math.Max(math.Abs(v[i]), math.Abs(vNew[i]))
		if scale < 1e-300 {
			scale = 1e-300
		}
		if e := math.Abs(errEst) / scale; e > errMax {
			errMax = e
		}
	}

	if errMax > 1 {
		scale := math.Max(r.minScale, r.safety*math.Pow(errMax, -0.25))
		return Result{Q: q, V: v, A: a, T: t, DtNext: dt * scale, Accepted: false}
	}

	var dtNext float64
	if errMax > 0 {
		scale := math.Min(r.maxScale, r.safety*math.Pow(errMax, -0.2))
		dtNext = dt * scale
	} else {
		dtNext = dt * r.maxScale
	}

	return Result{Q: qNew, V: vNew, A: k7v, T: t + dt, DtNext: dtNext, Accepted: true}
}
