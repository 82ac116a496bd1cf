package engine

import (
	"math"
	"time"

	"github.com/san-kum/robosim/internal/config"
	"github.com/san-kum/robosim/internal/stepper"
)

// Step advances every registered system by one adaptively-sized,
// breakpoint-clamped interval (spec.md §4.5/§4.6): all systems share a
// single attempted dt per retry round, shrunk on the tightest rejection
// until every system's stepper accepts or dt collapses below
// STEPPER_MIN_TIMESTEP.
func (e *Engine) Step() error {
	if e.phase != Running {
		return newErr(Generic, "step", ErrNotRunning)
	}

	var deadline time.Time
	if e.opts.Stepper.Timeout > 0 {
		deadline = time.Now().Add(time.Duration(e.opts.Stepper.Timeout * float64(time.Second)))
	}

	ceiling := math.Min(e.state.DtLargest, e.opts.Stepper.DtMax)
	dt := e.clampDtToBreakpoint(ceiling)
	breakpointReached := dt < ceiling

	results := make([]stepper.Result, len(e.systems))
	var dtNext float64

	for {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return newErr(Generic, "step", ErrTimeout)
		}

		allAccepted := true
		smallestNext := dt
		for i, sys := range e.systems {
			d := e.data[i]
			r := e.steppers[i].TryStep(sys.Robot, e.systemDerivative(i), d.State.Q, d.State.V, d.State.A, e.state.T, dt)
			results[i] = r
			if !r.Accepted {
				allAccepted = false
			}
			if r.DtNext < smallestNext {
				smallestNext = r.DtNext
			}
		}

		if allAccepted {
			dtNext = smallestNext
			break
		}

		e.state.IterFailed++
		if dt <= config.StepperMinTimestep {
			return newErr(Generic, "step", ErrStepTooSmall)
		}
		if max := e.opts.Stepper.SuccessiveIterFailedMax; max > 0 && e.state.IterFailed >= max {
			return newErr(Generic, "step", ErrTooManyFailures)
		}
		dt = math.Max(smallestNext, config.StepperMinTimestep)
		dt = e.clampDtToBreakpoint(dt)
	}

	e.state.IterFailed = 0
	e.commitStep(results)
	e.advanceTime(dt)
	e.adaptDtLargest(dt, dtNext, breakpointReached)

	e.refreshSampledInputs()
	e.updateContactHysteresis()
	e.emitSnapshot()

	return e.checkTermination()
}

// commitStep copies each accepted stepper.Result into its system's
// current state, demoting the previous current state to StatePrev
// (consulted by motor models and internal-dynamics springs for aPrev).
func (e *Engine) commitStep(results []stepper.Result) {
	for i, d := range e.data {
		d.StatePrev, d.State = d.State, d.StatePrev
		d.State.Q = results[i].Q
		d.State.V = results[i].V
		d.State.A = results[i].A
		d.State.Command = d.StatePrev.Command
		d.State.UMotor = d.StatePrev.UMotor
		d.State.UInternal = d.StatePrev.UInternal
		d.State.FExternal = d.StatePrev.FExternal
		d.State.U = d.StatePrev.U
		d.ContactForcesPrev = d.ContactForces
	}
}

// adaptDtLargest updates the adaptive ceiling after an accepted step.
// dtNext is the stepper's own tolerance-based recommendation for the
// step just taken (the minimum across every system); dt is the
// breakpoint-clamped interval actually integrated; breakpointReached
// reports whether that clamp shortened dt below the ceiling in effect
// at the start of Step.
//
// When a breakpoint forced the shrink, the embedded controller's
// recommendation is computed from error at the smaller dt and may
// undershoot what it would have recommended without the forced step.
// If that recommendation hasn't grown back past
// DtLargestPrev*DtRestoreThresholdRel, it is discarded in favor of
// DtLargestPrev directly rather than left to climb back up one step at
// a time.
func (e *Engine) adaptDtLargest(dt, dtNext float64, breakpointReached bool) {
	if breakpointReached {
		threshold := e.state.DtLargestPrev * e.opts.Stepper.DtRestoreThresholdRel
		if dt < dtNext && dtNext < threshold {
			dtNext = e.state.DtLargestPrev
		}
	}
	e.state.DtLargestPrev = dtNext
	e.state.DtLargest = dtNext
}

// checkTermination polls every system's callback and checks the
// NaN/IterMax conditions of spec.md §4.6. A false callback or any
// triggered condition returns a non-nil error; Simulate treats
// ErrCallbackStop as a clean stop rather than a failure.
func (e *Engine) checkTermination() error {
	e.state.Iter++

	for i, d := range e.data {
		if !allFinite(d.State.Q) || !allFinite(d.State.V) || !allFinite(d.State.A) {
			return newErr(Generic, "step", ErrNaNState)
		}
		sys := e.systems[i]
		if sys.Callback != nil && !sys.Callback(e.state.T, d.State.Q, d.State.V, d.State.A) {
			return ErrCallbackStop
		}
	}

	if max := e.opts.Stepper.IterMax; max > 0 && e.state.Iter >= max {
		return newErr(Generic, "step", ErrIterMaxExceeded)
	}
	return nil
}

// Simulate repeatedly calls Step until the shared clock reaches
// duration, a callback requests a stop, or an error terminates the run.
// A callback-requested stop is not itself an error. duration is treated
// as an extra breakpoint (nextBreakpoint/clampDtToBreakpoint) so the
// final step lands within STEPPER_MIN_TIMESTEP of it instead of
// overshooting by up to DtMax.
func (e *Engine) Simulate(duration float64) error {
	e.state.TEnd = duration
	defer func() { e.state.TEnd = math.Inf(1) }()

	for e.state.T < duration {
		if err := e.Step(); err != nil {
			if err == ErrCallbackStop {
				return nil
			}
			return err
		}
	}
	return nil
}
