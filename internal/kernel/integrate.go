package kernel

import "math"

// IntegrateConfiguration advances the whole-model configuration q by
// velocity v over dt, respecting each joint's manifold (spec §6.4
// "integrate"). The result is a fresh slice; q is not mutated.
func IntegrateConfiguration(m *Model, q, v []float64, dt float64) []float64 {
	out := make([]float64, m.NQ)
	for i := 1; i < len(m.Joints); i++ {
		j := &m.Joints[i]
		if j.Type == Mimic {
			continue
		}
		nq, nv := j.Widths()
		qi := q[j.QIdx : j.QIdx+nq]
		vi := v[j.VIdx : j.VIdx+nv]
		copy(out[j.QIdx:j.QIdx+nq], j.integrate(qi, vi, dt))
	}
	return out
}

// DifferenceConfiguration returns the tangent vector taking q0 to q1
// (spec §6.4 "difference"): IntegrateConfiguration(q0, d, 1) ~= q1.
func DifferenceConfiguration(m *Model, q1, q0 []float64) []float64 {
	out := make([]float64, m.NV)
	for i := 1; i < len(m.Joints); i++ {
		j := &m.Joints[i]
		if j.Type == Mimic {
			continue
		}
		nq, nv := j.Widths()
		d := j.difference(q1[j.QIdx:j.QIdx+nq], q0[j.QIdx:j.QIdx+nq])
		copy(out[j.VIdx:j.VIdx+nv], d)
	}
	return out
}

// NormalizeConfiguration re-normalizes quaternion-backed joints in
// place on a copy (spec §6.4 "normalize").
func NormalizeConfiguration(m *Model, q []float64) []float64 {
	out := append([]float64(nil), q...)
	for i := 1; i < len(m.Joints); i++ {
		j := &m.Joints[i]
		switch j.Type {
		case Free:
			qt := Quat{out[j.QIdx+3], out[j.QIdx+4], out[j.QIdx+5], out[j.QIdx+6]}.Normalized()
			out[j.QIdx+3], out[j.QIdx+4], out[j.QIdx+5], out[j.QIdx+6] = qt.W, qt.X, qt.Y, qt.Z
		case Spherical:
			qt := Quat{out[j.QIdx], out[j.QIdx+1], out[j.QIdx+2], out[j.QIdx+3]}.Normalized()
			out[j.QIdx], out[j.QIdx+1], out[j.QIdx+2], out[j.QIdx+3] = qt.W, qt.X, qt.Y, qt.Z
		case RotaryUnbounded:
			c, s := out[j.QIdx], out[j.QIdx+1]
			n := math.Hypot(c, s)
			if n > 1e-14 {
				out[j.QIdx], out[j.QIdx+1] = c/n, s/n
			}
		}
	}
	return out
}

// IsNormalized reports whether q's quaternion-backed joints are unit
// norm within tol (spec §6.4 "isNormalized").
func IsNormalized(m *Model, q []float64, tol float64) bool {
	for i := 1; i < len(m.Joints); i++ {
		j := &m.Joints[i]
		switch j.Type {
		case Free:
			n := Quat{q[j.QIdx+3], q[j.QIdx+4], q[j.QIdx+5], q[j.QIdx+6]}.Norm()
			if math.Abs(n-1) > tol {
				return false
			}
		case Spherical:
			n := Quat{q[j.QIdx], q[j.QIdx+1], q[j.QIdx+2], q[j.QIdx+3]}.Norm()
			if math.Abs(n-1) > tol {
				return false
			}
		case RotaryUnbounded:
			n := math.Hypot(q[j.QIdx], q[j.QIdx+1])
			if math.Abs(n-1) > tol {
				return false
			}
		}
	}
	return true
}

// InterpolateConfiguration returns the configuration alpha of the way
// from q0 to q1 along each joint's manifold (spec §6.4 "interpolate").
func InterpolateConfiguration(m *Model, q0, q1 []float64, alpha float64) []float64 {
	d := DifferenceConfiguration(m, q1, q0)
	for i := range d {
		d[i] *= alpha
	}
	return IntegrateConfiguration(m, q0, d, 1)
}
