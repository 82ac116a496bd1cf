package engine

import (
	"math"

	"github.com/san-kum/robosim/internal/constraints"
	"github.com/san-kum/robosim/internal/kernel"
)

// Controller computes a per-joint command given the current time and
// state. Bound to exactly one robot at registration time.
type Controller interface {
	Compute(t float64, q, v []float64) []float64
}

// MotorModel maps a commanded effort to an actual motor effort, given
// the state at the previous step (aPrev, because the current
// acceleration is what computeSystemsDynamics is about to solve for).
type MotorModel interface {
	ComputeEfforts(t float64, q, v, aPrev, command []float64) []float64
}

// Callback is polled once per outer iteration; returning false requests
// termination of the running simulate() call.
type Callback func(t float64, q, v, a []float64) bool

// SystemHolder is the immutable (while Running) identity of a
// registered system: a name, a shared robot, an optional controller,
// and a termination callback.
type SystemHolder struct {
	Name       string
	Robot      *kernel.Model
	Controller Controller
	Motors     MotorModel
	Callback   Callback
}

// SystemState is the dense per-system state vector set, sized by the
// model (nq, nv, nv respectively for q, v, a).
type SystemState struct {
	Q          []float64
	V          []float64
	A          []float64
	U          []float64   // total joint effort
	Command    []float64   // controller output
	UMotor     []float64   // motor-mapped effort
	UInternal  []float64   // position/velocity-limit penalties, joint springs
	UCustom    []float64   // controller-supplied internal dynamics
	FExternal  []kernel.Spatial // per joint index 0..J, spatial wrench
}

func newSystemState(m *kernel.Model) *SystemState {
	nq, nv := m.NQ, m.NV
	return &SystemState{
		Q:         make([]float64, nq),
		V:         make([]float64, nv),
		A:         make([]float64, nv),
		U:         make([]float64, nv),
		Command:   nil,
		UMotor:    make([]float64, nv),
		UInternal: make([]float64, nv),
		UCustom:   make([]float64, nv),
		FExternal: make([]kernel.Spatial, len(m.Joints)),
	}
}

func (s *SystemState) clear() {
	zero(s.U)
	zero(s.UMotor)
	zero(s.UInternal)
	zero(s.UCustom)
	for i := range s.FExternal {
		s.FExternal[i] = kernel.Spatial{}
	}
}

func zero(v []float64) {
	for i := range v {
		v[i] = 0
	}
}

// ForceCouplingEntry is a pairwise frame-to-frame coupling force, e.g. a
// viscoelastic tether between two systems. Frame indices are resolved
// by name at start(), since model mutation between simulations can
// change them.
type ForceCouplingEntry struct {
	SystemName1, SystemName2 string
	SystemIdx1, SystemIdx2   int
	FrameName1, FrameName2   string
	FrameIdx1, FrameIdx2     int
	ForceFn                  func(t float64, q1, v1, q2, v2 []float64) kernel.Spatial
}

// ForceImpulseEntry is a windowed external wrench applied to a single
// frame over [T, T+Dt).
type ForceImpulseEntry struct {
	FrameName string
	FrameIdx  int
	T, Dt     float64
	Wrench    kernel.Spatial
	Active    bool
}

// ForceProfileEntry is a time- or periodically-sampled external wrench.
// UpdatePeriod=0 means continuous sampling.
type ForceProfileEntry struct {
	FrameName     string
	FrameIdx      int
	UpdatePeriod  float64
	ForceFn       func(t float64, q, v []float64) kernel.Spatial
	CachedWrench  kernel.Spatial
}

// SystemDataHolder is the mutable per-system scratch parallel to
// SystemHolder by index: kernel scratch, current/previous state,
// per-frame and per-collision-pair contact force buffers, registered
// forces, the constraint registry snapshot taken at start(), and the
// robot-mutation lock.
type SystemDataHolder struct {
	Data *kernel.Data

	State     *SystemState
	StatePrev *SystemState

	ContactForces     map[string]kernel.Spatial
	ContactForcesPrev map[string]kernel.Spatial

	Couplings []*ForceCouplingEntry
	Impulses  []*ForceImpulseEntry
	Profiles  []*ForceProfileEntry

	BreakTimes []float64 // ordered, deduplicated

	Registry *constraints.Registry

	// LastSolveConverged reflects the most recent PGS solve this system's
	// dynamics evaluation attempted; true when no active constraint
	// required a solve. It is informational: the scheduler does not read
	// it, and stepper.successiveIterFailedMax counts stepper rejections
	// only.
	LastSolveConverged bool

	locked bool
}

func newSystemDataHolder(m *kernel.Model) *SystemDataHolder {
	return &SystemDataHolder{
		Data:              kernel.NewData(m),
		State:             newSystemState(m),
		StatePrev:         newSystemState(m),
		ContactForces:     make(map[string]kernel.Spatial),
		ContactForcesPrev: make(map[string]kernel.Spatial),
		Registry:          constraints.NewRegistry(),
		LastSolveConverged: true,
	}
}

// StepperState is the per-simulation clock and split-state tracker
// across S systems, including the Kahan time-compensation term.
type StepperState struct {
	T, Dt                 float64
	DtLargest, DtLargestPrev float64
	TPrev                 float64
	TError                float64 // Kahan compensation

	// TEnd is the active Simulate call's target time, treated as an
	// extra breakpoint so the last step lands within STEPPER_MIN_TIMESTEP
	// of it instead of overshooting by up to DtLargest. +Inf outside a
	// Simulate call (a bare Step steps by its own adaptive cadence only).
	TEnd float64

	Iter       int
	IterFailed int

	QSplit, VSplit, ASplit [][]float64
}

func newStepperState(numSystems int) *StepperState {
	return &StepperState{
		TEnd:   math.Inf(1),
		QSplit: make([][]float64, numSystems),
		VSplit: make([][]float64, numSystems),
		ASplit: make([][]float64, numSystems),
	}
}
