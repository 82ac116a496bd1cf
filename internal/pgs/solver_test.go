package pgs

import (
	"testing"

	"github.com/san-kum/robosim/internal/constraints"
	"github.com/san-kum/robosim/internal/kernel"
)

func singleLinearJoint() *kernel.Model {
	j := kernel.Joint{
		Name:    "slider",
		Type:    kernel.Linear,
		Axis:    kernel.Vec3{Z: 1},
		Inertia: kernel.SpatialInertia{Mass: 1, Rot: kernel.Diag3(1, 1, 1)},
	}
	return kernel.NewModel([]kernel.Joint{j}, nil, kernel.NewSpatial(kernel.Zero3, kernel.Vec3{Z: -9.81}))
}

func TestUnboundedFastPathMatchesUnconstrainedAcceleration(t *testing.T) {
	m := singleLinearJoint()
	d := kernel.NewData(m)
	q := m.NeutralConfiguration()
	v := []float64{0}

	if err := kernel.ForwardKinematics(m, d, q, nil, nil); err != nil {
		t.Fatalf("forward kinematics failed: %v", err)
	}

	u := []float64{0}
	n := kernel.NonLinearEffects(m, d, q, v)

	solver := NewSolver(1e-8, 1e-8, 1e-6)
	result := solver.Solve(m, d, q, v, u, n, nil)
	if !result.Converged {
		t.Fatalf("expected trivial empty-constraint solve to converge")
	}
	if len(result.Lambda) != 0 {
		t.Fatalf("expected no multipliers with no active constraints")
	}
}

func TestJointBoundBlocksPositiveDirection(t *testing.T) {
	m := singleLinearJoint()
	d := kernel.NewData(m)
	q := []float64{1.0}
	v := []float64{5.0}

	if err := kernel.ForwardKinematics(m, d, q, nil, nil); err != nil {
		t.Fatalf("forward kinematics failed: %v", err)
	}

	jb := constraints.NewJointBound("limit", 1, 1.0, 1, 100)
	jb.SetEnabled(true)
	active := []constraints.Entry{{Name: "limit", Constraint: jb}}

	u := []float64{0}
	n := kernel.NonLinearEffects(m, d, q, v)

	solver := NewSolver(1e-8, 1e-8, 1e-6)
	result := solver.Solve(m, d, q, v, u, n, active)
	if !result.Converged {
		t.Fatalf("expected bounded solve to converge, got %d iterations", result.Iterations)
	}
	if result.Lambda[0] < 0 {
		t.Fatalf("expected non-negative push-back multiplier at the bound, got %v", result.Lambda[0])
	}
}
