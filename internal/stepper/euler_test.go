package stepper

import (
	"math"
	"testing"

	"github.com/san-kum/robosim/internal/kernel"
)

func freeFallModel() *kernel.Model {
	j := kernel.Joint{
		Name:    "mass",
		Type:    kernel.Linear,
		Axis:    kernel.Vec3{Z: 1},
		Inertia: kernel.SpatialInertia{Mass: 1, Rot: kernel.Diag3(1, 1, 1)},
	}
	return kernel.NewModel([]kernel.Joint{j}, nil, kernel.NewSpatial(kernel.Zero3, kernel.Vec3{Z: -10}))
}

func constantAccelDerivative(a float64) Derivative {
	return func(q, v []float64, t float64) []float64 {
		return []float64{a}
	}
}

func TestEulerFreeFallPosition(t *testing.T) {
	m := freeFallModel()
	deriv := constantAccelDerivative(-10)
	q := []float64{0}
	v := []float64{0}
	a := deriv(q, v, 0)

	e := NewEuler()
	res := e.TryStep(m, deriv, q, v, a, 0, 0.1)
	if !res.Accepted {
		t.Fatalf("expected Euler step to always succeed")
	}
	if math.Abs(res.Q[0]-0) > 1e-9 {
		t.Fatalf("expected explicit Euler to use pre-step velocity for position, got q=%v", res.Q[0])
	}
	if math.Abs(res.V[0]+1) > 1e-9 {
		t.Fatalf("expected v = -1 after dt=0.1 at a=-10, got %v", res.V[0])
	}
}

func TestRK4MatchesAnalyticQuadratic(t *testing.T) {
	m := freeFallModel()
	deriv := constantAccelDerivative(-10)
	q := []float64{0}
	v := []float64{0}
	a := deriv(q, v, 0)

	r := NewRK4()
	res := r.TryStep(m, deriv, q, v, a, 0, 1.0)
	wantQ := -5.0 // 0.5*a*t^2
	wantV := -10.0
	if math.Abs(res.Q[0]-wantQ) > 1e-9 {
		t.Fatalf("expected q=%v, got %v", wantQ, res.Q[0])
	}
	if math.Abs(res.V[0]-wantV) > 1e-9 {
		t.Fatalf("expected v=%v, got %v", wantV, res.V[0])
	}
}

func TestDOPRI5AcceptsWithinTolerance(t *testing.T) {
	m := freeFallModel()
	deriv := constantAccelDerivative(-10)
	q := []float64{0}
	v := []float64{0}
	a := deriv(q, v, 0)

	d := NewDOPRI5(1e-10, 1e-10)
	res := d.TryStep(m, deriv, q, v, a, 0, 0.5)
	if !res.Accepted {
		t.Fatalf("expected constant-acceleration step to be within tolerance")
	}
	wantV := -5.0
	if math.Abs(res.V[0]-wantV) > 1e-6 {
		t.Fatalf("expected v=%v, got %v", wantV, res.V[0])
	}
}
