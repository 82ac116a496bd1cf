// Package stepper wraps the three ODE schemes spec.md §4.6 names —
// explicit Euler, fixed-step RK4, and adaptive embedded Dormand-Prince
// RK45/DOPRI5 — behind a single tryStep surface. Position updates are
// always routed through the kernel's manifold Integrate/Difference
// operators so free-flyer and spherical joints stay on SE(3)/SO(3);
// velocity lives in the joint tangent space and is integrated as an
// ordinary Euclidean vector.
package stepper
