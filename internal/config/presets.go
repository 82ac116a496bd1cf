package config

// Presets groups named option sets by scenario family, then variant,
// mirroring the teacher's per-model preset table shape.
var Presets = map[string]map[string]EngineOptions{
	"pendulum": {
		"default": withOverride(func(o *EngineOptions) {
			o.Stepper.OdeSolver = "runge_kutta_dopri5"
			o.Stepper.TolAbs = 1e-8
			o.Stepper.TolRel = 1e-5
			o.Constraints.Solver = "NONE"
		}),
		"damped": withOverride(func(o *EngineOptions) {
			o.Stepper.OdeSolver = "runge_kutta_4"
			o.Stepper.DtMax = 1e-3
			o.Constraints.Solver = "NONE"
		}),
	},
	"chain_with_impulse": {
		"default": withOverride(func(o *EngineOptions) {
			o.Stepper.OdeSolver = "runge_kutta_4"
			o.Stepper.DtMax = 1e-3
			o.Stepper.ControllerUpdatePeriod = 0
			o.Constraints.Solver = "NONE"
		}),
	},
	"friction_cube": {
		"default": withOverride(func(o *EngineOptions) {
			o.Contacts.Model = "spring_damper"
			o.Contacts.Stiffness = 1e5
			o.Contacts.Damping = 1e3
			o.Contacts.Friction = 0.5
			o.Constraints.Solver = "PGS"
		}),
	},
	"bouncing_sphere": {
		"default": withOverride(func(o *EngineOptions) {
			o.Contacts.Model = "constraint"
			o.Contacts.TransitionEps = 1e-4
			o.Constraints.Solver = "PGS"
		}),
	},
}

func withOverride(f func(o *EngineOptions)) EngineOptions {
	o := DefaultOptions()
	f(&o)
	return o
}

func GetPreset(family, preset string) (EngineOptions, bool) {
	familyPresets, ok := Presets[family]
	if !ok {
		return EngineOptions{}, false
	}
	opts, ok := familyPresets[preset]
	return opts, ok
}

func ListPresets(family string) []string {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(familyPresets))
	for name := range familyPresets {
		names = append(names, name)
	}
	return names
}
