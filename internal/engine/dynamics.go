package engine

import (
	"math"

	"github.com/san-kum/robosim/internal/config"
	"github.com/san-kum/robosim/internal/constraints"
	"github.com/san-kum/robosim/internal/contact"
	"github.com/san-kum/robosim/internal/kernel"
	"github.com/san-kum/robosim/internal/pgs"
)

// systemDerivative closes over sysIdx to give the stepper package a
// Derivative bound to one system's dynamics, evaluated against that
// system's own robot/data while reading every other system's last
// committed state for coupling terms.
func (e *Engine) systemDerivative(sysIdx int) func(q, v []float64, t float64) []float64 {
	return func(q, v []float64, t float64) []float64 {
		return e.computeSystemsDynamics(sysIdx, t, q, v)
	}
}

// computeSystemsDynamics is the per-system right-hand side of the
// equations of motion: coupling, internal, contact, impulse and
// profile forces accumulate into a total generalized effort, which is
// then resolved into acceleration either directly (no active
// constraints) or through the PGS constraint solve.
func (e *Engine) computeSystemsDynamics(sysIdx int, t float64, q, v []float64) []float64 {
	robot := e.systems[sysIdx].Robot
	d := e.data[sysIdx]

	_ = kernel.ForwardKinematics(robot, d.Data, q, v, d.StatePrev.A)

	nv := robot.NV
	u := make([]float64, nv)
	uInternal := make([]float64, nv)
	fExternal := make([]kernel.Spatial, len(robot.Joints))

	e.applyCouplingForces(sysIdx, t, q, v, u, fExternal)
	applyJointInternalDynamics(robot, e.opts.Joints, q, v, uInternal)
	contactForces := e.applyContactForces(sysIdx, q, v, u, fExternal)
	e.applyImpulseForces(sysIdx, t, q, u, fExternal)
	e.applyProfileForces(sysIdx, t, q, v, u, fExternal)

	command, uMotor := e.computeCommandAndMotor(sysIdx, t, q, v)

	for i := range u {
		u[i] += uInternal[i] + uMotor[i]
	}

	d.State.Command = command
	d.State.UMotor = uMotor
	d.State.UInternal = uInternal
	d.State.FExternal = fExternal
	d.State.U = u
	d.ContactForces = contactForces

	active := d.Registry.Active()
	if e.opts.Constraints.Solver == "PGS" && len(active) > 0 {
		nle := kernel.NonLinearEffects(robot, d.Data, q, v)
		result := e.solver.Solve(robot, d.Data, q, v, u, nle, active)
		d.LastSolveConverged = result.Converged
		if result.Converged {
			assembly := pgs.Assemble(robot, d.Data, q, v, active)
			jt := constraintGeneralizedForce(assembly, result.Lambda, nv)
			rhs := make([]float64, nv)
			for i := range rhs {
				rhs[i] = u[i] - nle[i] + jt[i]
			}
			return kernel.SolveJMinvJtv(d.Data, rhs)
		}
	} else {
		d.LastSolveConverged = true
	}

	return kernel.ComputeAcceleration(robot, d.Data, q, v, u)
}

// constraintGeneralizedForce projects a solved Lagrange-multiplier
// vector back through the constraint Jacobian it was assembled
// against: J^T lambda.
func constraintGeneralizedForce(assembly *pgs.Assembly, lambda []float64, nv int) []float64 {
	out := make([]float64, nv)
	for c := 0; c < nv; c++ {
		s := 0.0
		for r := 0; r < assembly.J.Rows; r++ {
			s += assembly.J.At(r, c) * lambda[r]
		}
		out[c] = s
	}
	return out
}

// applyWrenchAtFrame projects a spatial wrench applied at frameIdx into
// generalized effort via the frame's geometric Jacobian, and
// accumulates the raw wrench onto the frame's parent joint for the
// fExternal telemetry field.
func applyWrenchAtFrame(m *kernel.Model, d *kernel.Data, q []float64, frameIdx int, wrench kernel.Spatial, u []float64, fExternal []kernel.Spatial) {
	J := kernel.GetFrameJacobian(m, d, q, frameIdx)
	for c := 0; c < m.NV; c++ {
		s := 0.0
		for r := 0; r < 6; r++ {
			s += J.At(r, c) * wrench[r]
		}
		u[c] += s
	}
	jIdx := m.Frames[frameIdx].JointIdx
	fExternal[jIdx] = fExternal[jIdx].Add(wrench)
}

// applyCouplingForces walks every coupling entry touching sysIdx
// (entries are owned by SystemIdx1 only, see RegisterForceCoupling),
// applying the force to this system's own frame and its negation when
// this system is the reaction side.
func (e *Engine) applyCouplingForces(sysIdx int, t float64, q, v []float64, u []float64, fExternal []kernel.Spatial) {
	robot := e.systems[sysIdx].Robot
	d := e.data[sysIdx]
	for _, owner := range e.data {
		for _, c := range owner.Couplings {
			if c.SystemIdx1 != sysIdx && c.SystemIdx2 != sysIdx {
				continue
			}
			q1, v1 := e.committedOrLive(c.SystemIdx1, sysIdx, q, v)
			q2, v2 := e.committedOrLive(c.SystemIdx2, sysIdx, q, v)
			wrench := c.ForceFn(t, q1, v1, q2, v2)
			if c.SystemIdx1 == sysIdx {
				applyWrenchAtFrame(robot, d.Data, q, c.FrameIdx1, wrench, u, fExternal)
			}
			if c.SystemIdx2 == sysIdx {
				applyWrenchAtFrame(robot, d.Data, q, c.FrameIdx2, wrench.Scale(-1), u, fExternal)
			}
		}
	}
}

// committedOrLive returns (q, v) for idx: the stage values currently
// being integrated when idx is the system under evaluation, otherwise
// that system's last committed state (coupling partners are frozen for
// the duration of one stepper call, refreshed once per accepted step).
func (e *Engine) committedOrLive(idx, sysIdx int, q, v []float64) ([]float64, []float64) {
	if idx == sysIdx {
		return q, v
	}
	return e.data[idx].State.Q, e.data[idx].State.V
}

// applyJointInternalDynamics adds the compliant position/velocity-limit
// penalty (every HasLimits joint) and the spherical-joint flexibility
// spring/damper (geometric PD toward the identity orientation via
// kernel.Log3) to uInternal.
func applyJointInternalDynamics(m *kernel.Model, opts config.JointOptions, q, v, uInternal []float64) {
	stiff, damp := opts.BoundStiffness, opts.BoundDamping
	for i := 1; i < len(m.Joints); i++ {
		j := &m.Joints[i]
		switch {
		case j.HasLimits:
			qi, vi := q[j.QIdx], v[j.VIdx]
			switch {
			case qi < j.QMin:
				uInternal[j.VIdx] += stiff*(j.QMin-qi) - damp*vi
			case qi > j.QMax:
				uInternal[j.VIdx] -= stiff*(qi-j.QMax) + damp*vi
			}
			if math.Abs(vi) > j.VMax {
				over := math.Abs(vi) - j.VMax
				uInternal[j.VIdx] -= math.Copysign(damp*over, vi)
			}
		case j.Type == kernel.Spherical:
			quat := kernel.Quat{W: q[j.QIdx], X: q[j.QIdx+1], Y: q[j.QIdx+2], Z: q[j.QIdx+3]}
			rotVec := kernel.Log3(quat)
			w := kernel.Vec3{X: v[j.VIdx], Y: v[j.VIdx+1], Z: v[j.VIdx+2]}
			torque := rotVec.Scale(-stiff).Sub(w.Scale(damp))
			uInternal[j.VIdx] += torque.X
			uInternal[j.VIdx+1] += torque.Y
			uInternal[j.VIdx+2] += torque.Z
		}
	}
}

// applyContactForces evaluates the compliant spring-damper contact law
// at every registered contact frame/collision-body geometry (spec.md
// §4.3's spring-damper path; the rigid-constraint path instead toggles
// registry entries and lets the PGS solve carry the reaction force, see
// updateContactHysteresis in schedule.go).
func (e *Engine) applyContactForces(sysIdx int, q, v []float64, u []float64, fExternal []kernel.Spatial) map[string]kernel.Spatial {
	forces := make(map[string]kernel.Spatial)
	if e.opts.Contacts.Model != "spring_damper" {
		return forces
	}
	robot := e.systems[sysIdx].Robot
	d := e.data[sysIdx]
	opts := e.contactOptions()

	apply := func(name string, frameIdx int, radius float64) {
		center := kernel.FramePlacement(robot, d.Data, frameIdx).Pos
		geom := kernel.Geometry{FrameIdx: frameIdx, Shape: shapeFor(radius), Radius: radius}
		result, ok := kernel.ComputeGroundCollision(geom, center, e.ground)
		if !ok || result.Depth >= 0 {
			return
		}
		vel := kernel.GetFrameVelocity(robot, d.Data, q, v, frameIdx).Linear()
		force := contact.ComputeSpringDamperForce(result.Depth, vel, result.Normal, opts)
		wrench := kernel.NewSpatial(kernel.Zero3, force)
		applyWrenchAtFrame(robot, d.Data, q, frameIdx, wrench, u, fExternal)
		forces[name] = wrench
	}

	for _, entry := range d.Registry.ContactFrames {
		if ff, ok := entry.Constraint.(*constraints.FixedFrame); ok {
			apply(entry.Name, ff.FrameIdx, 0)
		}
	}
	for _, group := range d.Registry.CollisionBodies {
		for _, entry := range group {
			switch c := entry.Constraint.(type) {
			case *constraints.Sphere:
				apply(entry.Name, c.FrameIdx, c.Radius)
			case *constraints.Wheel:
				apply(entry.Name, c.FrameIdx, c.Radius)
			}
		}
	}
	return forces
}

// applyImpulseForces applies every windowed impulse entry whose
// [T, T+Dt) window contains t, using the early-deactivation margin of
// STEPPER_MIN_TIMESTEP so the window closes cleanly on the accepted
// step that lands on or after T+Dt rather than lingering into it.
func (e *Engine) applyImpulseForces(sysIdx int, t float64, q []float64, u []float64, fExternal []kernel.Spatial) {
	robot := e.systems[sysIdx].Robot
	d := e.data[sysIdx]
	for _, imp := range d.Impulses {
		if t < imp.T-1e-12 {
			continue
		}
		if t >= imp.T+imp.Dt-config.StepperMinTimestep {
			continue
		}
		applyWrenchAtFrame(robot, d.Data, q, imp.FrameIdx, imp.Wrench, u, fExternal)
	}
}

// applyProfileForces applies every registered force profile: continuous
// profiles (UpdatePeriod == 0) are resampled every call, periodic ones
// reuse CachedWrench until the scheduler's sampling boundary refreshes it.
func (e *Engine) applyProfileForces(sysIdx int, t float64, q, v []float64, u []float64, fExternal []kernel.Spatial) {
	robot := e.systems[sysIdx].Robot
	d := e.data[sysIdx]
	for _, p := range d.Profiles {
		wrench := p.CachedWrench
		if p.UpdatePeriod == 0 {
			wrench = p.ForceFn(t, q, v)
		}
		applyWrenchAtFrame(robot, d.Data, q, p.FrameIdx, wrench, u, fExternal)
	}
}

// computeCommandAndMotor resolves the controller command (resampled
// every call in continuous mode, cached otherwise) and maps it through
// the system's motor model, or passes it straight through as effort
// when no motor model is registered.
func (e *Engine) computeCommandAndMotor(sysIdx int, t float64, q, v []float64) (command, uMotor []float64) {
	sys := e.systems[sysIdx]
	d := e.data[sysIdx]
	nv := sys.Robot.NV

	if sys.Controller == nil {
		return nil, make([]float64, nv)
	}
	if e.opts.Stepper.ControllerUpdatePeriod == 0 || d.State.Command == nil {
		command = sys.Controller.Compute(t, q, v)
	} else {
		command = d.State.Command
	}

	if sys.Motors != nil {
		uMotor = sys.Motors.ComputeEfforts(t, q, v, d.StatePrev.A, command)
		return command, uMotor
	}
	uMotor = make([]float64, nv)
	copy(uMotor, command)
	return command, uMotor
}
