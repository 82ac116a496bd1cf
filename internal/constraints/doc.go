// Package constraints holds the kinematic-constraint objects the PGS
// solver consumes: joint bounds, fixed-frame contacts, distances,
// spheres, wheels, and user-supplied rows. Every constraint advertises a
// Jacobian block, a drift term, an enabled flag, a Lagrange-multiplier
// slot and a Baumgarte stabilization frequency, and is grouped by a
// Registry that iterates its four categories in a fixed order.
package constraints
