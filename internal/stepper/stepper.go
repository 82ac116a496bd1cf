package stepper

import "github.com/san-kum/robosim/internal/kernel"

// Derivative evaluates joint acceleration at (q, v, t), the same role
// dynamics.computeSystemsDynamics plays for the engine (spec.md §4.4).
type Derivative func(q, v []float64, t float64) []float64

// Result is one tryStep outcome (spec.md §4.6 "tryStep(q, v, a, t,
// dt_inout) -> bool"): the caller reassigns its own q/v/a/t from this
// and, on rejection, retries with DtNext.
type Result struct {
	Q, V, A  []float64
	T        float64
	DtNext   float64
	Accepted bool
}

// Stepper is the common surface every scheme below implements.
type Stepper interface {
	// TryStep advances one step from (q, v, a) at time t by dt. a is the
	// derivative-of-velocity already computed by the caller's last
	// dynamics evaluation at (q, v, t); fixed-step schemes may ignore it,
	// adaptive ones use it as the FSAL seed for the first stage.
	TryStep(m *kernel.Model, deriv Derivative, q, v, a []float64, t, dt float64) Result
}
