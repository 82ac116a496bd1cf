// Package engine is the simulation engine proper: the Idle/Running
// lifecycle, the force registries, computeSystemsDynamics, the
// breakpoint scheduler and integration loop, and telemetry wiring. It
// is the orchestrator that drives the kernel, constraints, pgs, contact
// and stepper packages through one or more registered systems.
package engine
