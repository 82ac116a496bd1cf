package config

import "testing"

func TestDefaultOptionsValidate(t *testing.T) {
	o := DefaultOptions()
	if err := o.Validate(); err != nil {
		t.Fatalf("expected default options to validate, got %v", err)
	}
}

func TestValidateRejectsUnknownSolver(t *testing.T) {
	o := DefaultOptions()
	o.Stepper.OdeSolver = "bogus"
	if err := o.Validate(); err == nil {
		t.Fatal("expected error for unknown odeSolver")
	}
}

func TestValidateRejectsDtMaxOutOfRange(t *testing.T) {
	o := DefaultOptions()
	o.Stepper.DtMax = 10.0
	if err := o.Validate(); err == nil {
		t.Fatal("expected error for dtMax above SIMULATION_MAX_TIMESTEP")
	}
}

func TestValidateRejectsZeroTransitionVelocity(t *testing.T) {
	o := DefaultOptions()
	o.Contacts.TransitionVelocity = 0
	if err := o.Validate(); err == nil {
		t.Fatal("expected error for zero transitionVelocity")
	}
}

func TestGetPreset(t *testing.T) {
	o, ok := GetPreset("pendulum", "default")
	if !ok {
		t.Fatal("expected pendulum/default preset")
	}
	if o.Stepper.OdeSolver != "runge_kutta_dopri5" {
		t.Errorf("expected dopri5, got %s", o.Stepper.OdeSolver)
	}
}

func TestGetPresetNotFound(t *testing.T) {
	if _, ok := GetPreset("pendulum", "nonexistent"); ok {
		t.Error("expected not-found for nonexistent preset")
	}
	if _, ok := GetPreset("nonexistent", "default"); ok {
		t.Error("expected not-found for nonexistent family")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets("pendulum")
	if len(names) == 0 {
		t.Error("expected presets for pendulum")
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent family")
	}
}
