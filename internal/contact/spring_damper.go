package contact

import (
	"math"

	"github.com/san-kum/robosim/internal/kernel"
)

// ComputeSpringDamperForce implements the compliant contact law of
// spec.md §4.3: a unilateral normal spring-damper blended with a
// friction-cone tangential force, continuity-blended near the
// transition depth. depth is the signed penetration (negative = in
// contact); contactVel is the contact point's world velocity; normal is
// the outward ground normal. Returns the zero vector once the body has
// left contact (depth >= 0).
func ComputeSpringDamperForce(depth float64, contactVel, normal kernel.Vec3, opts Options) kernel.Vec3 {
	if depth >= 0 {
		return kernel.Zero3
	}

	vd := contactVel.Dot(normal)
	fn := -(opts.Stiffness*depth + opts.Damping*vd)
	if fn < 0 {
		fn = 0
	}

	vt := contactVel.Sub(normal.Scale(vd))
	vtNorm := vt.Norm()

	ratio := vtNorm / opts.TransitionVelocity
	if ratio > 1 {
		ratio = 1
	}
	ft := opts.Friction * ratio * fn

	force := normal.Scale(fn)
	if vtNorm > 1e-12 {
		force = force.Sub(vt.Scale(ft / vtNorm))
	}

	if opts.TransitionEps > 1e-12 {
		force = force.Scale(math.Tanh(-2 * depth / opts.TransitionEps))
	}
	return force
}
