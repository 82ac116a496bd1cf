// Package kernel is the rigid-body kinematics/dynamics primitive layer
// consumed by the simulation engine: forward kinematics, the joint-space
// inertia and its Cholesky factorization, an articulated-body
// acceleration solve, and the manifold operators (Integrate/Difference/
// log3/exp3) that let the stepper advance free-flyer and spherical
// joints correctly.
//
// The engine treats this package as a black-box collaborator (see
// SPEC_FULL.md §1/§6.4) — it owns no scheduling, contact, or constraint
// logic of its own. Everything here operates on a [Model] (immutable
// kinematic tree) and a [Data] (mutable per-simulation scratch).
package kernel
