// Package models builds small kernel.Model fixtures for the CLI presets
// and test suite: single pendulum, two-link chain, and a free cube for
// contact scenarios. Grounded on the teacher's internal/models package,
// retargeted from standalone scalar ODE systems (sim.Dynamics) to
// kernel.Model kinematic trees the engine can drive directly.
package models
