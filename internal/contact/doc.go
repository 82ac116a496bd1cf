// Package contact implements the two ground-reaction models spec.md
// §4.3 names: a compliant spring-damper force law with tangent-friction
// blending, and a rigid constraint model that enables/disables the
// corresponding FixedFrame or Sphere constraint with hysteresis against
// chattering at the transition.
package contact
