package engine

import (
	"math"

	"github.com/san-kum/robosim/internal/config"
	"github.com/san-kum/robosim/internal/constraints"
	"github.com/san-kum/robosim/internal/contact"
	"github.com/san-kum/robosim/internal/kernel"
)

// nextBreakpoint returns the smallest time strictly after the current
// clock at which something discontinuous happens: an impulse edge, or
// the next tick of the shared controller/sensor/profile sampling grid.
// +Inf when nothing is scheduled (fully continuous, unconstrained run).
func (e *Engine) nextBreakpoint() float64 {
	best := math.Inf(1)
	for _, d := range e.data {
		for _, bt := range d.BreakTimes {
			if bt > e.state.T+1e-12 && bt < best {
				best = bt
			}
		}
	}
	if e.stepperUpdatePeriod > 0 && !math.IsInf(e.stepperUpdatePeriod, 1) {
		k := math.Floor(e.state.T/e.stepperUpdatePeriod) + 1
		if next := k * e.stepperUpdatePeriod; next < best {
			best = next
		}
	}
	if e.state.TEnd > e.state.T+1e-12 && e.state.TEnd < best {
		best = e.state.TEnd
	}
	return best
}

// clampDtToBreakpoint shrinks dt so a step never steps over a scheduled
// breakpoint; the stepper resumes at full cadence on the step after.
func (e *Engine) clampDtToBreakpoint(dt float64) float64 {
	bp := e.nextBreakpoint()
	if math.IsInf(bp, 1) {
		return dt
	}
	if allowed := bp - e.state.T; allowed < dt {
		if allowed < config.StepperMinTimestep {
			allowed = config.StepperMinTimestep
		}
		return allowed
	}
	return dt
}

// dueForSample reports whether t lands on a multiple of period within
// half a STEPPER_MIN_TIMESTEP; period <= 0 means continuous (always due).
func dueForSample(period, t float64) bool {
	if period <= 0 {
		return true
	}
	k := math.Round(t / period)
	return math.Abs(t-k*period) < config.StepperMinTimestep/2
}

// refreshSampledInputs resamples controller commands and force-profile
// wrenches whose UpdatePeriod grid is due at the current time, so the
// cached values computeSystemsDynamics reads between sampling instants
// stay held rather than drifting with the continuous derivative.
func (e *Engine) refreshSampledInputs() {
	period := e.opts.Stepper.ControllerUpdatePeriod
	for i, sys := range e.systems {
		d := e.data[i]
		if sys.Controller != nil && period > 0 && dueForSample(period, e.state.T) {
			d.State.Command = sys.Controller.Compute(e.state.T, d.State.Q, d.State.V)
		}
		for _, p := range d.Profiles {
			if p.UpdatePeriod > 0 && dueForSample(p.UpdatePeriod, e.state.T) {
				p.CachedWrench = p.ForceFn(e.state.T, d.State.Q, d.State.V)
			}
		}
	}
}

// updateContactHysteresis refreshes every rigid-constraint contact and
// joint-bound enable flag against the just-accepted committed state
// (spec.md §4.3's enable/disable hysteresis). A no-op under the
// spring-damper contact model, which reads contact geometry directly
// inside computeSystemsDynamics instead of toggling registry entries.
func (e *Engine) updateContactHysteresis() {
	if e.opts.Contacts.Model != "constraint" {
		return
	}
	opts := e.contactOptions()
	for i, sys := range e.systems {
		robot := sys.Robot
		d := e.data[i]

		for _, entry := range d.Registry.ContactFrames {
			ff, ok := entry.Constraint.(*constraints.FixedFrame)
			if !ok {
				continue
			}
			pose := kernel.FramePlacement(robot, d.Data, ff.FrameIdx)
			geom := kernel.Geometry{FrameIdx: ff.FrameIdx, Shape: kernel.ShapePoint}
			result, _ := kernel.ComputeGroundCollision(geom, pose.Pos, e.ground)
			contact.UpdateFixedFrameContact(ff, result.Depth, pose, result.Normal, opts)
		}

		for _, group := range d.Registry.CollisionBodies {
			depths := make([]float64, len(group))
			for gi, entry := range group {
				switch c := entry.Constraint.(type) {
				case *constraints.Sphere:
					center := kernel.FramePlacement(robot, d.Data, c.FrameIdx).Pos
					geom := kernel.Geometry{FrameIdx: c.FrameIdx, Shape: kernel.ShapeSphere, Radius: c.Radius}
					result, _ := kernel.ComputeGroundCollision(geom, center, e.ground)
					depths[gi] = result.Depth
				case *constraints.Wheel:
					depths[gi] = -1 // a wheel stays in persistent rolling contact
				default:
					depths[gi] = math.Inf(1)
				}
			}
			contact.SelectFirstValidCollisionContact(group, depths, opts)
		}

		for j := 1; j < len(robot.Joints); j++ {
			joint := &robot.Joints[j]
			if !joint.HasLimits {
				continue
			}
			q := d.State.Q[joint.QIdx]
			if c, ok := d.Registry.ByName(joint.Name + ".lower"); ok {
				if jb, ok2 := c.(*constraints.JointBound); ok2 {
					contact.UpdateJointBoundContact(jb, q, joint.QMin, joint.QMax, e.opts.Contacts.TransitionEps)
				}
			}
			if c, ok := d.Registry.ByName(joint.Name + ".upper"); ok {
				if jb, ok2 := c.(*constraints.JointBound); ok2 {
					contact.UpdateJointBoundContact(jb, q, joint.QMin, joint.QMax, e.opts.Contacts.TransitionEps)
				}
			}
		}
	}
}

// advanceTime adds dt to the shared clock using Kahan compensated
// summation, so the accumulated rounding error of many small adaptive
// steps doesn't drift the reported simulation time (spec.md §4.5).
func (e *Engine) advanceTime(dt float64) {
	y := dt - e.state.TError
	tNew := e.state.T + y
	e.state.TError = (tNew - e.state.T) - y
	e.state.TPrev = e.state.T
	e.state.T = tNew
}
