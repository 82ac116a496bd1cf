// Package config validates and (de)serializes EngineOptions, the
// spec.md §6.3 option set: stepper selection and tolerances, the PGS
// solver, the contact model, joint-bound stiffness/damping, gravity,
// and telemetry enable flags. Adapted from the teacher's YAML-backed
// Config/Load/Save/Presets layer.
package config
