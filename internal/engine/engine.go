package engine

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/robosim/internal/config"
	"github.com/san-kum/robosim/internal/kernel"
	"github.com/san-kum/robosim/internal/pgs"
	"github.com/san-kum/robosim/internal/stepper"
	"github.com/san-kum/robosim/internal/telemetry"
)

// Phase is the engine's lifecycle state (spec.md §4.1): a new Engine
// starts Idle, then Idle -> Running -> Idle -> ...
type Phase int

const (
	Idle Phase = iota
	Running
)

func (p Phase) String() string {
	if p == Running {
		return "Running"
	}
	return "Idle"
}

// Engine owns every registered system, the global clock, the shared PGS
// solver, and the telemetry surface. All mutation happens on the
// goroutine that calls Step/Simulate; no operation may be called
// concurrently on the same Engine (spec.md §5).
type Engine struct {
	phase Phase
	opts  config.EngineOptions

	ground kernel.GroundProfile
	rng    *rand.Rand

	surface telemetry.Surface

	systems   []*SystemHolder
	data      []*SystemDataHolder
	nameIndex map[string]int

	steppers            []stepper.Stepper
	solver              *pgs.Solver
	stepperUpdatePeriod float64 // +Inf => fully continuous

	state *StepperState

	verbose bool
}

// New constructs an Idle engine with the given options and ground
// profile (nil selects kernel.FlatGround). A telemetry surface may be
// supplied later via SetTelemetry; until then telemetry.NopSurface is
// used.
func New(opts config.EngineOptions, ground kernel.GroundProfile) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, newErr(BadInput, "New", err)
	}
	if ground == nil {
		ground = kernel.FlatGround
	}
	return &Engine{
		phase:     Idle,
		opts:      opts,
		ground:    ground,
		rng:       rand.New(rand.NewSource(opts.Stepper.RandomSeed)),
		surface:   telemetry.NopSurface{},
		nameIndex: make(map[string]int),
		verbose:   opts.Stepper.Verbose,
	}, nil
}

// SetTelemetry installs a telemetry surface. Idle-only.
func (e *Engine) SetTelemetry(s telemetry.Surface) error {
	if e.phase != Idle {
		return newErr(Generic, "SetTelemetry", ErrNotIdle)
	}
	if s == nil {
		s = telemetry.NopSurface{}
	}
	e.surface = s
	return nil
}

// SetOptions validates and installs new options. Idle-only; on
// validation failure the previous options are left in place
// (spec.md §6.3).
func (e *Engine) SetOptions(opts config.EngineOptions) error {
	if e.phase != Idle {
		return newErr(Generic, "SetOptions", ErrNotIdle)
	}
	if err := opts.Validate(); err != nil {
		return newErr(BadInput, "SetOptions", err)
	}
	e.opts = opts
	return nil
}

func (e *Engine) Phase() Phase { return e.phase }

// AddSystem registers a new system. Idle-only; name must be unique and
// no two systems may share a robot pointer.
func (e *Engine) AddSystem(name string, robot *kernel.Model, controller Controller, motors MotorModel, callback Callback) error {
	if e.phase != Idle {
		return newErr(Generic, "addSystem", ErrNotIdle)
	}
	if robot == nil {
		return newErr(InitFailed, "addSystem", ErrUninitializedRobot)
	}
	if _, exists := e.nameIndex[name]; exists {
		return newErr(BadInput, "addSystem", fmt.Errorf("%w: %s", ErrDuplicateName, name))
	}
	for _, sys := range e.systems {
		if sys.Robot == robot {
			return newErr(BadInput, "addSystem", ErrSharedRobot)
		}
	}

	holder := &SystemHolder{Name: name, Robot: robot, Controller: controller, Motors: motors, Callback: callback}
	e.nameIndex[name] = len(e.systems)
	e.systems = append(e.systems, holder)
	e.data = append(e.data, newSystemDataHolder(robot))
	e.steppers = append(e.steppers, nil)
	return nil
}

// RemoveSystem removes a system and renumbers coupling indices of the
// remaining ones.
func (e *Engine) RemoveSystem(name string) error {
	if e.phase != Idle {
		return newErr(Generic, "removeSystem", ErrNotIdle)
	}
	idx, ok := e.nameIndex[name]
	if !ok {
		return newErr(BadInput, "removeSystem", fmt.Errorf("%w: %s", ErrUnknownSystem, name))
	}

	e.systems = append(e.systems[:idx], e.systems[idx+1:]...)
	e.data = append(e.data[:idx], e.data[idx+1:]...)
	e.steppers = append(e.steppers[:idx], e.steppers[idx+1:]...)
	delete(e.nameIndex, name)
	for n, i := range e.nameIndex {
		if i > idx {
			e.nameIndex[n] = i - 1
		}
	}
	for _, d := range e.data {
		for _, c := range d.Couplings {
			if c.SystemIdx1 > idx {
				c.SystemIdx1--
			}
			if c.SystemIdx2 > idx {
				c.SystemIdx2--
			}
		}
	}
	return nil
}

// SetController swaps the controller on an existing system. The new
// controller must be bound to the same robot, which callers express by
// simply not changing SystemHolder.Robot here.
func (e *Engine) SetController(name string, controller Controller) error {
	if e.phase != Idle {
		return newErr(Generic, "setController", ErrNotIdle)
	}
	idx, ok := e.nameIndex[name]
	if !ok {
		return newErr(BadInput, "setController", fmt.Errorf("%w: %s", ErrUnknownSystem, name))
	}
	e.systems[idx].Controller = controller
	return nil
}

func (e *Engine) systemIndex(name string) (int, error) {
	idx, ok := e.nameIndex[name]
	if !ok {
		return 0, newErr(BadInput, "systemIndex", fmt.Errorf("%w: %s", ErrUnknownSystem, name))
	}
	return idx, nil
}
