package contact

import (
	"testing"

	"github.com/san-kum/robosim/internal/kernel"
)

func TestSpringDamperZeroOutsideContact(t *testing.T) {
	opts := DefaultOptions()
	f := ComputeSpringDamperForce(0.01, kernel.Zero3, kernel.Vec3{Z: 1}, opts)
	if f != kernel.Zero3 {
		t.Fatalf("expected zero force when depth >= 0, got %v", f)
	}
}

func TestSpringDamperNormalForceIsUnilateral(t *testing.T) {
	opts := DefaultOptions()
	f := ComputeSpringDamperForce(-0.01, kernel.Zero3, kernel.Vec3{Z: 1}, opts)
	if f.Z <= 0 {
		t.Fatalf("expected positive normal reaction while penetrating, got %v", f.Z)
	}
}

func TestSpringDamperFrictionBoundedByNormal(t *testing.T) {
	opts := DefaultOptions()
	depth := -0.01
	normal := kernel.Vec3{Z: 1}
	fast := kernel.Vec3{X: 10}
	f := ComputeSpringDamperForce(depth, fast, normal, opts)
	tangential := kernel.Vec3{X: f.X, Y: f.Y}.Norm()
	if tangential > opts.Friction*f.Z+1e-9 {
		t.Fatalf("tangential force %v exceeds friction cone bound %v", tangential, opts.Friction*f.Z)
	}
}
