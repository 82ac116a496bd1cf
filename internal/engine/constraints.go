package engine

import (
	"fmt"

	"github.com/san-kum/robosim/internal/constraints"
	"github.com/san-kum/robosim/internal/kernel"
)

// AddJointBounds auto-registers a pair of JointBound constraints (lower
// and upper) for every joint on sysName that carries HasLimits, so the
// PGS solver enforces position limits as unilateral bound constraints
// (spec.md §4.3's "Joint-bound constraints are refreshed analogously").
func (e *Engine) AddJointBounds(sysName string) error {
	if e.phase != Idle {
		return newErr(Generic, "addJointBounds", ErrNotIdle)
	}
	idx, err := e.systemIndex(sysName)
	if err != nil {
		return err
	}
	robot := e.systems[idx].Robot
	reg := e.data[idx].Registry
	for j := 1; j < len(robot.Joints); j++ {
		joint := &robot.Joints[j]
		if !joint.HasLimits {
			continue
		}
		lowerName, upperName := joint.Name+".lower", joint.Name+".upper"
		lower := constraints.NewJointBound(lowerName, j, joint.QMin, -1, e.opts.Contacts.StabilizationFreq)
		upper := constraints.NewJointBound(upperName, j, joint.QMax, 1, e.opts.Contacts.StabilizationFreq)
		reg.AddBoundJoint(lowerName, lower)
		reg.AddBoundJoint(upperName, upper)
	}
	return nil
}

// AddGroundContactFrame registers a point-frame ground contact. Under
// the rigid-constraint contact model this becomes a FixedFrame
// constraint toggled by contact.UpdateFixedFrameContact each step;
// under spring-damper it is read directly by computeSystemsDynamics.
func (e *Engine) AddGroundContactFrame(sysName, frameName string) error {
	if e.phase != Idle {
		return newErr(Generic, "addGroundContactFrame", ErrNotIdle)
	}
	idx, err := e.systemIndex(sysName)
	if err != nil {
		return err
	}
	fidx, ok := e.systems[idx].Robot.FrameIndex(frameName)
	if !ok {
		return newErr(BadInput, "addGroundContactFrame", fmt.Errorf("unknown frame %q", frameName))
	}
	c := constraints.NewFixedFrame(frameName, fidx, kernel.IdentitySE3, kernel.Vec3{Z: 1},
		e.opts.Contacts.Friction, e.opts.Contacts.Torsion, e.opts.Contacts.StabilizationFreq)
	c.SetEnabled(false)
	e.data[idx].Registry.AddContactFrame(frameName, c)
	return nil
}

// AddGroundContactSphere registers a collision-body sphere contact
// (spec.md §3's Sphere constraint variant), grouped under bodyIdx so
// only one of several candidate contacts on the same body is ever
// active at once (spec.md §4.3).
func (e *Engine) AddGroundContactSphere(sysName, frameName string, radius float64, bodyIdx int) error {
	if e.phase != Idle {
		return newErr(Generic, "addGroundContactSphere", ErrNotIdle)
	}
	idx, err := e.systemIndex(sysName)
	if err != nil {
		return err
	}
	fidx, ok := e.systems[idx].Robot.FrameIndex(frameName)
	if !ok {
		return newErr(BadInput, "addGroundContactSphere", fmt.Errorf("unknown frame %q", frameName))
	}
	c := constraints.NewSphere(frameName, fidx, radius, e.ground,
		e.opts.Contacts.Friction, e.opts.Contacts.Torsion, e.opts.Contacts.StabilizationFreq)
	c.SetEnabled(false)
	e.data[idx].Registry.AddCollisionBody(bodyIdx, frameName, c)
	return nil
}
