package contact

import (
	"github.com/san-kum/robosim/internal/constraints"
	"github.com/san-kum/robosim/internal/kernel"
)

// UpdateFixedFrameContact applies the rigid-constraint hysteresis rule
// of spec.md §4.3: enable the contact's FixedFrame constraint when the
// frame has penetrated (depth < 0), disable once it has cleared the
// ground by more than transitionEps. While enabled, the reference pose
// and ground normal are refreshed to the current contact geometry so
// the PGS drift term tracks a moving ground-reaction anchor rather than
// a stale one.
func UpdateFixedFrameContact(c *constraints.FixedFrame, depth float64, framePose kernel.SE3, normal kernel.Vec3, opts Options) {
	switch {
	case depth < 0:
		c.SetEnabled(true)
		c.Reference = kernel.SE3{Rot: framePose.Rot, Pos: framePose.Pos.Sub(normal.Scale(depth))}
		c.Normal = normal.Normalized()
	case depth > opts.TransitionEps:
		c.SetEnabled(false)
	}
}

// UpdateJointBoundContact applies the same hysteresis to a joint
// position limit (spec.md §4.3 "Joint-bound constraints are refreshed
// analogously"): enabled when q leaves [qMin, qMax], disabled once back
// inside [qMin+eps, qMax-eps].
func UpdateJointBoundContact(c *constraints.JointBound, q, qMin, qMax, eps float64) {
	switch {
	case q > qMax || q < qMin:
		c.SetEnabled(true)
	case q > qMin+eps && q < qMax-eps:
		c.SetEnabled(false)
	}
}

// SelectFirstValidCollisionContact implements "Collision-body contacts
// support only a single enabled constraint per body (first valid
// contact wins)": given a body's ordered collision-pair constraints and
// their current depths, enable only the first one in contact and
// disable the rest.
func SelectFirstValidCollisionContact(entries []constraints.Entry, depths []float64, opts Options) {
	chosen := false
	for i, e := range entries {
		if !chosen && depths[i] < 0 {
			e.Constraint.SetEnabled(true)
			chosen = true
			continue
		}
		if depths[i] > opts.TransitionEps || chosen {
			e.Constraint.SetEnabled(false)
		}
	}
}
