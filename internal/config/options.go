package config

import (
	"fmt"
)

// StepperOptions mirrors spec.md §6.3's stepper.* keys.
type StepperOptions struct {
	OdeSolver               string  `yaml:"odeSolver"`
	TolAbs                  float64 `yaml:"tolAbs"`
	TolRel                  float64 `yaml:"tolRel"`
	DtMax                   float64 `yaml:"dtMax"`
	SensorsUpdatePeriod     float64 `yaml:"sensorsUpdatePeriod"`
	ControllerUpdatePeriod  float64 `yaml:"controllerUpdatePeriod"`
	RandomSeed              int64   `yaml:"randomSeed"`
	IterMax                 int     `yaml:"iterMax"`
	SuccessiveIterFailedMax int     `yaml:"successiveIterFailedMax"`
	Timeout                 float64 `yaml:"timeout"`
	DtRestoreThresholdRel   float64 `yaml:"dtRestoreThresholdRel"`
	LogInternalStepperSteps bool    `yaml:"logInternalStepperSteps"`
	Verbose                 bool    `yaml:"verbose"`
}

// ConstraintOptions mirrors spec.md §6.3's constraints.* keys.
type ConstraintOptions struct {
	Solver         string  `yaml:"solver"`
	Regularization float64 `yaml:"regularization"`
}

// ContactOptions mirrors spec.md §6.3's contacts.* keys.
type ContactOptions struct {
	Model              string  `yaml:"model"`
	Stiffness          float64 `yaml:"stiffness"`
	Damping            float64 `yaml:"damping"`
	Friction           float64 `yaml:"friction"`
	Torsion            float64 `yaml:"torsion"`
	TransitionEps      float64 `yaml:"transitionEps"`
	TransitionVelocity float64 `yaml:"transitionVelocity"`
	StabilizationFreq  float64 `yaml:"stabilizationFreq"`
}

// JointOptions mirrors spec.md §6.3's joints.* keys.
type JointOptions struct {
	BoundStiffness float64 `yaml:"boundStiffness"`
	BoundDamping   float64 `yaml:"boundDamping"`
}

// WorldOptions mirrors spec.md §6.3's world.* keys.
type WorldOptions struct {
	Gravity [6]float64 `yaml:"gravity"`
}

// TelemetryOptions mirrors spec.md §6.3's telemetry.* keys.
type TelemetryOptions struct {
	EnableConfiguration  bool `yaml:"enableConfiguration"`
	EnableVelocity       bool `yaml:"enableVelocity"`
	EnableAcceleration   bool `yaml:"enableAcceleration"`
	EnableForceExternal  bool `yaml:"enableForceExternal"`
	EnableCommand        bool `yaml:"enableCommand"`
	EnableMotorEffort    bool `yaml:"enableMotorEffort"`
	EnableEnergy         bool `yaml:"enableEnergy"`
	IsPersistent         bool `yaml:"isPersistent"`
}

// EngineOptions is the full recognized option set of spec.md §6.3.
type EngineOptions struct {
	Stepper     StepperOptions    `yaml:"stepper"`
	Constraints ConstraintOptions `yaml:"constraints"`
	Contacts    ContactOptions    `yaml:"contacts"`
	Joints      JointOptions      `yaml:"joints"`
	World       WorldOptions      `yaml:"world"`
	Telemetry   TelemetryOptions  `yaml:"telemetry"`
}

// STEPPER_MIN_TIMESTEP and SIMULATION_MIN_TIMESTEP per spec.md §4.5/§8.
const (
	StepperMinTimestep    = 1e-6
	SimulationMinTimestep = 1e-4
	SimulationMaxTimestep = 1.0
)

// DefaultOptions returns the engine's baked-in defaults, grounded on the
// contact package's DefaultOptions and the teacher's DefaultConfig.
func DefaultOptions() EngineOptions {
	return EngineOptions{
		Stepper: StepperOptions{
			OdeSolver:               "runge_kutta_dopri5",
			TolAbs:                  1e-8,
			TolRel:                  1e-6,
			DtMax:                   1e-2,
			SensorsUpdatePeriod:     0,
			ControllerUpdatePeriod:  0,
			RandomSeed:              0,
			IterMax:                 0,
			SuccessiveIterFailedMax: 10,
			Timeout:                 0,
			DtRestoreThresholdRel:   0.2,
			LogInternalStepperSteps: false,
			Verbose:                 false,
		},
		Constraints: ConstraintOptions{
			Solver:         "PGS",
			Regularization: 1e-5,
		},
		Contacts: ContactOptions{
			Model:              "spring_damper",
			Stiffness:          1e5,
			Damping:            1e3,
			Friction:           0.5,
			Torsion:            0.1,
			TransitionEps:      1e-4,
			TransitionVelocity: 1e-2,
			StabilizationFreq:  50,
		},
		Joints: JointOptions{
			BoundStiffness: 1e4,
			BoundDamping:   1e2,
		},
		World: WorldOptions{
			Gravity: [6]float64{0, 0, -9.81, 0, 0, 0},
		},
		Telemetry: TelemetryOptions{
			EnableConfiguration: true,
			EnableVelocity:      true,
			EnableAcceleration:  true,
			EnableForceExternal: true,
			EnableCommand:       true,
			EnableMotorEffort:   true,
			EnableEnergy:        true,
			IsPersistent:        false,
		},
	}
}

// Validate checks every recognized key's domain per spec.md §6.3.
// setOptions leaves the previous options in place when this fails.
func (o EngineOptions) Validate() error {
	switch o.Stepper.OdeSolver {
	case "runge_kutta_dopri5", "runge_kutta_4", "euler_explicit":
	default:
		return fmt.Errorf("config: unknown stepper.odeSolver %q", o.Stepper.OdeSolver)
	}
	if o.Stepper.TolAbs < 0 || o.Stepper.TolRel < 0 {
		return fmt.Errorf("config: stepper.tolAbs/tolRel must be >= 0")
	}
	if o.Stepper.DtMax < SimulationMinTimestep || o.Stepper.DtMax > SimulationMaxTimestep {
		return fmt.Errorf("config: stepper.dtMax %g out of [%g,%g]", o.Stepper.DtMax, SimulationMinTimestep, SimulationMaxTimestep)
	}
	if o.Stepper.SensorsUpdatePeriod != 0 && o.Stepper.SensorsUpdatePeriod < SimulationMinTimestep {
		return fmt.Errorf("config: stepper.sensorsUpdatePeriod must be 0 or >= %g", SimulationMinTimestep)
	}
	if o.Stepper.ControllerUpdatePeriod != 0 && o.Stepper.ControllerUpdatePeriod < SimulationMinTimestep {
		return fmt.Errorf("config: stepper.controllerUpdatePeriod must be 0 or >= %g", SimulationMinTimestep)
	}
	if !periodsCompatible(o.Stepper.SensorsUpdatePeriod, o.Stepper.ControllerUpdatePeriod) {
		return fmt.Errorf("config: stepper.sensorsUpdatePeriod and controllerUpdatePeriod must be mutually GCD-compatible")
	}
	if o.Stepper.IterMax < 0 || o.Stepper.SuccessiveIterFailedMax < 0 {
		return fmt.Errorf("config: stepper.iterMax/successiveIterFailedMax must be >= 0")
	}
	if o.Stepper.Timeout < 0 {
		return fmt.Errorf("config: stepper.timeout must be >= 0")
	}

	switch o.Constraints.Solver {
	case "PGS", "NONE":
	default:
		return fmt.Errorf("config: unknown constraints.solver %q", o.Constraints.Solver)
	}
	if o.Constraints.Regularization < 0 {
		return fmt.Errorf("config: constraints.regularization must be >= 0")
	}

	switch o.Contacts.Model {
	case "spring_damper", "constraint":
	default:
		return fmt.Errorf("config: unknown contacts.model %q", o.Contacts.Model)
	}
	if o.Contacts.Stiffness < 0 || o.Contacts.Damping < 0 || o.Contacts.Friction < 0 ||
		o.Contacts.Torsion < 0 || o.Contacts.TransitionEps < 0 || o.Contacts.StabilizationFreq < 0 {
		return fmt.Errorf("config: contacts.* coefficients must be >= 0")
	}
	if o.Contacts.TransitionVelocity <= 0 {
		return fmt.Errorf("config: contacts.transitionVelocity must be > 0")
	}

	if o.Joints.BoundStiffness < 0 || o.Joints.BoundDamping < 0 {
		return fmt.Errorf("config: joints.boundStiffness/boundDamping must be >= 0")
	}

	return nil
}

// periodsCompatible reports whether two sampling periods share a common
// multiple: either is zero (continuous), or their ratio is rational to
// within a tight tolerance (the GCD requirement of spec.md §4.5).
func periodsCompatible(a, b float64) bool {
	if a == 0 || b == 0 {
		return true
	}
	hi, lo := a, b
	if lo > hi {
		hi, lo = lo, hi
	}
	ratio := hi / lo
	nearest := float64(int64(ratio + 0.5))
	diff := ratio - nearest
	return diff > -1e-6 && diff < 1e-6
}
