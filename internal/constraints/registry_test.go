package constraints

import (
	"testing"

	"github.com/san-kum/robosim/internal/kernel"
)

func TestRegistryOrderAndActive(t *testing.T) {
	r := NewRegistry()

	jb := NewJointBound("jb1", 1, 0, 1, 50)
	jb.SetEnabled(true)
	r.AddBoundJoint(jb.Name(), jb)

	ff := NewFixedFrame("ff1", 1, kernel.IdentitySE3, kernel.Vec3{Z: 1}, 0.5, 0.1, 50)
	r.AddContactFrame(ff.Name(), ff)

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}
	if all[0].Name != "jb1" || all[1].Name != "ff1" {
		t.Fatalf("unexpected registry order: %v, %v", all[0].Name, all[1].Name)
	}

	active := r.Active()
	if len(active) != 1 || active[0].Name != "jb1" {
		t.Fatalf("expected only jb1 active, got %v", active)
	}

	r.Reset()
	if jb.Lambda()[0] != 0 {
		t.Fatalf("expected lambda cleared after Reset")
	}
}

func TestCollisionBodyGrouping(t *testing.T) {
	r := NewRegistry()
	s := NewSphere("sphere-ground", 1, 0.2, kernel.FlatGround, 0.3, 0.05, 50)
	r.AddCollisionBody(2, s.Name(), s)

	if len(r.CollisionBodies) != 3 {
		t.Fatalf("expected CollisionBodies grown to index 2, got len %d", len(r.CollisionBodies))
	}
	if len(r.CollisionBodies[2]) != 1 || r.CollisionBodies[2][0].Name != "sphere-ground" {
		t.Fatalf("expected sphere-ground registered under body 2")
	}
}
