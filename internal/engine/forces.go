package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/robosim/internal/config"
	"github.com/san-kum/robosim/internal/kernel"
)

// RegisterForceCoupling appends a pairwise frame-to-frame coupling force
// (spec.md §6.1). Idle-only; both frames must already exist on their
// respective robots.
func (e *Engine) RegisterForceCoupling(sys1, frame1, sys2, frame2 string, forceFn func(t float64, q1, v1, q2, v2 []float64) kernel.Spatial) error {
	if e.phase != Idle {
		return newErr(Generic, "registerForceCoupling", ErrNotIdle)
	}
	idx1, err := e.systemIndex(sys1)
	if err != nil {
		return err
	}
	idx2, err := e.systemIndex(sys2)
	if err != nil {
		return err
	}
	fidx1, ok := e.systems[idx1].Robot.FrameIndex(frame1)
	if !ok {
		return newErr(BadInput, "registerForceCoupling", fmt.Errorf("unknown frame %q on %s", frame1, sys1))
	}
	fidx2, ok := e.systems[idx2].Robot.FrameIndex(frame2)
	if !ok {
		return newErr(BadInput, "registerForceCoupling", fmt.Errorf("unknown frame %q on %s", frame2, sys2))
	}

	entry := &ForceCouplingEntry{
		SystemName1: sys1, SystemName2: sys2,
		SystemIdx1: idx1, SystemIdx2: idx2,
		FrameName1: frame1, FrameName2: frame2,
		FrameIdx1: fidx1, FrameIdx2: fidx2,
		ForceFn: forceFn,
	}
	// Owned by idx1 only, even when idx1==idx2: the coupling is a single
	// logical force pair, applied to both endpoints by index during
	// computeSystemsDynamics, not duplicated per system.
	e.data[idx1].Couplings = append(e.data[idx1].Couplings, entry)
	return nil
}

// RegisterForceCouplingViscoelastic is a convenience wrapper building a
// linear spring-damper tether between two frames' world positions
// (stiffness, damping >= 0), in the style of the contact package's
// spring-damper normal-force law.
func (e *Engine) RegisterForceCouplingViscoelastic(sys1, frame1, sys2, frame2 string, stiffness, damping, restLength float64) error {
	if stiffness < 0 || damping < 0 {
		return newErr(BadInput, "registerForceCouplingViscoelastic", fmt.Errorf("stiffness/damping must be >= 0"))
	}
	idx1, err := e.systemIndex(sys1)
	if err != nil {
		return err
	}
	idx2, err := e.systemIndex(sys2)
	if err != nil {
		return err
	}
	r1, r2 := e.systems[idx1].Robot, e.systems[idx2].Robot

	forceFn := func(t float64, q1, v1, q2, v2 []float64) kernel.Spatial {
		d1 := newSystemDataHolder(r1).Data
		d2 := newSystemDataHolder(r2).Data
		_ = kernel.ForwardKinematics(r1, d1, q1, v1, nil)
		_ = kernel.ForwardKinematics(r2, d2, q2, v2, nil)
		fidx1, _ := r1.FrameIndex(frame1)
		fidx2, _ := r2.FrameIndex(frame2)
		p1 := kernel.FramePlacement(r1, d1, fidx1).Pos
		p2 := kernel.FramePlacement(r2, d2, fidx2).Pos
		sep := p2.Sub(p1)
		length := sep.Norm()
		if length < 1e-12 {
			return kernel.Spatial{}
		}
		dir := sep.Scale(1 / length)
		vel1 := kernel.GetFrameVelocity(r1, d1, q1, v1, fidx1).Linear()
		vel2 := kernel.GetFrameVelocity(r2, d2, q2, v2, fidx2).Linear()
		relVel := vel2.Sub(vel1).Dot(dir)
		mag := stiffness*(length-restLength) + damping*relVel
		f := dir.Scale(mag)
		return kernel.NewSpatial(kernel.Zero3, f)
	}

	return e.RegisterForceCoupling(sys1, frame1, sys2, frame2, forceFn)
}

// RegisterForceImpulse appends a windowed external wrench (spec.md
// §6.1/§3): dt >= STEPPER_MIN_TIMESTEP, t >= 0, frame != universe. Both
// T and T+Dt are pre-inserted into the system's ordered break-time set.
func (e *Engine) RegisterForceImpulse(sysName, frameName string, t, dt float64, wrench kernel.Spatial) error {
	if e.phase != Idle {
		return newErr(Generic, "registerForceImpulse", ErrNotIdle)
	}
	if dt < config.StepperMinTimestep {
		return newErr(BadInput, "registerForceImpulse", ErrInvalidImpulse)
	}
	if t < 0 {
		return newErr(BadInput, "registerForceImpulse", ErrInvalidImpulse)
	}
	idx, err := e.systemIndex(sysName)
	if err != nil {
		return err
	}
	fidx, ok := e.systems[idx].Robot.FrameIndex(frameName)
	if !ok {
		return newErr(BadInput, "registerForceImpulse", fmt.Errorf("unknown frame %q", frameName))
	}
	if fidx == 0 {
		return newErr(BadInput, "registerForceImpulse", ErrInvalidImpulse)
	}

	e.data[idx].Impulses = append(e.data[idx].Impulses, &ForceImpulseEntry{
		FrameName: frameName, FrameIdx: fidx, T: t, Dt: dt, Wrench: wrench,
	})
	insertBreakTime(&e.data[idx].BreakTimes, t)
	insertBreakTime(&e.data[idx].BreakTimes, t+dt)
	return nil
}

// RegisterForceProfile appends a time- or periodically-sampled external
// wrench. period=0 means continuous sampling; otherwise, for every other
// nonzero sampling period currently registered, one of the two must be
// an integer multiple of the other.
func (e *Engine) RegisterForceProfile(sysName, frameName string, fn func(t float64, q, v []float64) kernel.Spatial, period float64) error {
	if e.phase != Idle {
		return newErr(Generic, "registerForceProfile", ErrNotIdle)
	}
	idx, err := e.systemIndex(sysName)
	if err != nil {
		return err
	}
	fidx, ok := e.systems[idx].Robot.FrameIndex(frameName)
	if !ok {
		return newErr(BadInput, "registerForceProfile", fmt.Errorf("unknown frame %q", frameName))
	}
	if period < 0 {
		return newErr(BadInput, "registerForceProfile", ErrInvalidPeriod)
	}
	if !e.periodDividesExisting(period) {
		return newErr(BadInput, "registerForceProfile", ErrInvalidPeriod)
	}

	e.data[idx].Profiles = append(e.data[idx].Profiles, &ForceProfileEntry{
		FrameName: frameName, FrameIdx: fidx, UpdatePeriod: period, ForceFn: fn,
	})
	e.recomputeStepperUpdatePeriod()
	return nil
}

// RemoveForcesCoupling clears every coupling entry involving sysName.
func (e *Engine) RemoveForcesCoupling(sysName string) error {
	if e.phase != Idle {
		return newErr(Generic, "removeForcesCoupling", ErrNotIdle)
	}
	idx, err := e.systemIndex(sysName)
	if err != nil {
		return err
	}
	for _, d := range e.data {
		filtered := d.Couplings[:0]
		for _, c := range d.Couplings {
			if c.SystemIdx1 != idx && c.SystemIdx2 != idx {
				filtered = append(filtered, c)
			}
		}
		d.Couplings = filtered
	}
	return nil
}

// RemoveForcesImpulse clears all registered impulses on sysName.
func (e *Engine) RemoveForcesImpulse(sysName string) error {
	if e.phase != Idle {
		return newErr(Generic, "removeForcesImpulse", ErrNotIdle)
	}
	idx, err := e.systemIndex(sysName)
	if err != nil {
		return err
	}
	e.data[idx].Impulses = nil
	return nil
}

// RemoveForcesProfile clears all registered profiles on sysName.
func (e *Engine) RemoveForcesProfile(sysName string) error {
	if e.phase != Idle {
		return newErr(Generic, "removeForcesProfile", ErrNotIdle)
	}
	idx, err := e.systemIndex(sysName)
	if err != nil {
		return err
	}
	e.data[idx].Profiles = nil
	e.recomputeStepperUpdatePeriod()
	return nil
}

// insertBreakTime inserts t into the ordered, deduplicated break-time
// set in place.
func insertBreakTime(times *[]float64, t float64) {
	i := sort.SearchFloat64s(*times, t)
	if i < len(*times) && math.Abs((*times)[i]-t) < 1e-12 {
		return
	}
	*times = append(*times, 0)
	copy((*times)[i+1:], (*times)[i:])
	(*times)[i] = t
}

// periodDividesExisting checks the new profile period against the
// controller/sensor periods and every other registered profile period.
func (e *Engine) periodDividesExisting(period float64) bool {
	if period == 0 {
		return true
	}
	periods := []float64{e.opts.Stepper.ControllerUpdatePeriod, e.opts.Stepper.SensorsUpdatePeriod}
	for _, d := range e.data {
		for _, p := range d.Profiles {
			periods = append(periods, p.UpdatePeriod)
		}
	}
	for _, p := range periods {
		if p == 0 {
			continue
		}
		if !dividesEvenly(p, period) && !dividesEvenly(period, p) {
			return false
		}
	}
	return true
}

func dividesEvenly(whole, part float64) bool {
	ratio := whole / part
	nearest := math.Round(ratio)
	return math.Abs(ratio-nearest) < 1e-9
}

// recomputeStepperUpdatePeriod recomputes the scheduler's
// stepperUpdatePeriod_ as the smallest nonzero sampling period
// (controller, sensors, and every registered profile), so that every
// sampling instant lies on its grid; +Inf when every period is 0 (fully
// continuous mode).
func (e *Engine) recomputeStepperUpdatePeriod() {
	periods := []float64{e.opts.Stepper.ControllerUpdatePeriod, e.opts.Stepper.SensorsUpdatePeriod}
	for _, d := range e.data {
		for _, p := range d.Profiles {
			periods = append(periods, p.UpdatePeriod)
		}
	}
	smallest := math.Inf(1)
	for _, p := range periods {
		if p > 0 && p < smallest {
			smallest = p
		}
	}
	e.stepperUpdatePeriod = smallest
}
