package engine

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/robosim/internal/constraints"
	"github.com/san-kum/robosim/internal/contact"
	"github.com/san-kum/robosim/internal/kernel"
	"github.com/san-kum/robosim/internal/pgs"
	"github.com/san-kum/robosim/internal/stepper"
)

// contactOptions translates the validated config into the contact
// package's Options value.
func (e *Engine) contactOptions() contact.Options {
	model := contact.SpringDamper
	if e.opts.Contacts.Model == "constraint" {
		model = contact.RigidConstraint
	}
	return contact.Options{
		Model:              model,
		Stiffness:          e.opts.Contacts.Stiffness,
		Damping:            e.opts.Contacts.Damping,
		Friction:           e.opts.Contacts.Friction,
		Torsion:            e.opts.Contacts.Torsion,
		TransitionEps:      e.opts.Contacts.TransitionEps,
		TransitionVelocity: e.opts.Contacts.TransitionVelocity,
		StabilizationFreq:  e.opts.Contacts.StabilizationFreq,
	}
}

func (e *Engine) newStepper() stepper.Stepper {
	switch e.opts.Stepper.OdeSolver {
	case "euler_explicit":
		return stepper.NewEuler()
	case "runge_kutta_4":
		return stepper.NewRK4()
	default:
		return stepper.NewDOPRI5(e.opts.Stepper.TolAbs, e.opts.Stepper.TolRel)
	}
}

// Start validates and transitions Idle -> Running, seeding every
// system's state and the shared clock (spec.md §4.1).
func (e *Engine) Start(q0, v0, a0 [][]float64) error {
	if e.phase != Idle {
		return newErr(Generic, "start", ErrNotIdle)
	}
	if len(e.systems) == 0 {
		return newErr(BadInput, "start", fmt.Errorf("no systems registered"))
	}
	if len(q0) != len(e.systems) || len(v0) != len(e.systems) {
		return newErr(BadInput, "start", ErrDimensionMismatch)
	}
	if a0 != nil && len(a0) != len(e.systems) {
		return newErr(BadInput, "start", ErrDimensionMismatch)
	}

	for i, sys := range e.systems {
		if sys.Robot == nil {
			return newErr(InitFailed, "start", ErrUninitializedRobot)
		}
		robot := sys.Robot
		if len(q0[i]) != robot.NQ || len(v0[i]) != robot.NV {
			return newErr(BadInput, "start", ErrDimensionMismatch)
		}
		if !allFinite(q0[i]) || !allFinite(v0[i]) {
			return newErr(BadInput, "start", ErrNonFiniteInput)
		}
		if err := checkBounds(robot, q0[i], v0[i]); err != nil {
			return newErr(BadInput, "start", err)
		}
	}

	for _, d := range e.data {
		for _, c := range d.Couplings {
			f1, ok1 := e.systems[c.SystemIdx1].Robot.FrameIndex(c.FrameName1)
			f2, ok2 := e.systems[c.SystemIdx2].Robot.FrameIndex(c.FrameName2)
			if !ok1 || !ok2 {
				return newErr(BadInput, "start", fmt.Errorf("coupling frame %q or %q no longer exists", c.FrameName1, c.FrameName2))
			}
			c.FrameIdx1, c.FrameIdx2 = f1, f2
		}
	}

	if e.opts.Stepper.RandomSeed != 0 {
		e.rng = rand.New(rand.NewSource(e.opts.Stepper.RandomSeed))
	}

	e.recomputeStepperUpdatePeriod()
	e.solver = pgs.NewSolver(e.opts.Constraints.Regularization, e.opts.Stepper.TolAbs, e.opts.Stepper.TolRel)

	e.state = newStepperState(len(e.systems))
	for i, sys := range e.systems {
		robot := sys.Robot
		d := e.data[i]

		d.State.Q = append([]float64(nil), q0[i]...)
		d.State.V = append([]float64(nil), v0[i]...)
		if a0 != nil && a0[i] != nil {
			d.State.A = append([]float64(nil), a0[i]...)
		} else {
			if err := kernel.ForwardKinematics(robot, d.Data, d.State.Q, d.State.V, nil); err != nil {
				return newErr(Generic, "start", err)
			}
			d.State.A = kernel.ComputeAcceleration(robot, d.Data, d.State.Q, d.State.V, make([]float64, robot.NV))
		}
		d.StatePrev.Q = append([]float64(nil), d.State.Q...)
		d.StatePrev.V = append([]float64(nil), d.State.V...)
		d.StatePrev.A = append([]float64(nil), d.State.A...)
		d.Registry.Reset()

		e.state.QSplit[i] = d.State.Q
		e.state.VSplit[i] = d.State.V
		e.state.ASplit[i] = d.State.A

		e.steppers[i] = e.newStepper()

		if err := e.checkInitialContactForces(i); err != nil {
			return err
		}
	}

	e.state.T = 0
	e.state.Dt = e.opts.Stepper.DtMax
	e.state.DtLargest = e.opts.Stepper.DtMax
	e.state.DtLargestPrev = e.opts.Stepper.DtMax

	e.registerTelemetry()
	e.surface.Lock()

	e.phase = Running
	return nil
}

// Stop flushes telemetry and returns to Idle. Idempotent.
func (e *Engine) Stop() error {
	if e.phase == Idle {
		return nil
	}
	e.emitSnapshot()
	e.phase = Idle
	return nil
}

// initialContactForceLimit is the ceiling of spec.md §4.1: "Generic if
// initial contact forces exceed 1e5 under the spring-damper model."
const initialContactForceLimit = 1e5

// checkInitialContactForces evaluates the spring-damper force at every
// contact frame/collision-body geometry at t=0 and rejects a start
// whose forces already exceed initialContactForceLimit.
func (e *Engine) checkInitialContactForces(sysIdx int) error {
	if e.opts.Contacts.Model != "spring_damper" {
		return nil
	}
	robot := e.systems[sysIdx].Robot
	d := e.data[sysIdx]
	opts := e.contactOptions()

	check := func(frameIdx int, radius float64) error {
		center := kernel.FramePlacement(robot, d.Data, frameIdx).Pos
		geom := kernel.Geometry{FrameIdx: frameIdx, Shape: shapeFor(radius), Radius: radius}
		result, ok := kernel.ComputeGroundCollision(geom, center, e.ground)
		if !ok {
			return nil
		}
		vel := kernel.GetFrameVelocity(robot, d.Data, d.State.Q, d.State.V, frameIdx).Linear()
		f := contact.ComputeSpringDamperForce(result.Depth, vel, result.Normal, opts)
		if f.Norm() > initialContactForceLimit {
			return newErr(Generic, "start", ErrContactForceLimit)
		}
		return nil
	}

	for _, entry := range d.Registry.ContactFrames {
		if ff, ok := entry.Constraint.(*constraints.FixedFrame); ok {
			if err := check(ff.FrameIdx, 0); err != nil {
				return err
			}
		}
	}
	for _, group := range d.Registry.CollisionBodies {
		for _, entry := range group {
			switch c := entry.Constraint.(type) {
			case *constraints.Sphere:
				if err := check(c.FrameIdx, c.Radius); err != nil {
					return err
				}
			case *constraints.Wheel:
				if err := check(c.FrameIdx, c.Radius); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func shapeFor(radius float64) kernel.GeometryShape {
	if radius > 0 {
		return kernel.ShapeSphere
	}
	return kernel.ShapePoint
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func checkBounds(m *kernel.Model, q, v []float64) error {
	for i := 1; i < len(m.Joints); i++ {
		j := &m.Joints[i]
		if !j.HasLimits {
			continue
		}
		if q[j.QIdx] < j.QMin || q[j.QIdx] > j.QMax {
			return fmt.Errorf("%w: joint %s position out of range", ErrBoundsViolated, j.Name)
		}
		if math.Abs(v[j.VIdx]) > j.VMax {
			return fmt.Errorf("%w: joint %s velocity exceeds VMax", ErrBoundsViolated, j.Name)
		}
	}
	return nil
}

func negate(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = -x
	}
	return out
}
