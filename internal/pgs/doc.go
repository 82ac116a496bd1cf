// Package pgs implements the boxed projected Gauss-Seidel solver that
// turns a set of active constraints into joint-space Lagrange
// multipliers: assembling A = J*Minv*Jt and b = -gamma - J*Minv*(u-n),
// then iterating coordinate updates under the friction-cone and
// unilateral bounds each constraint's blocks describe.
package pgs
