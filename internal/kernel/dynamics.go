package kernel

const fdEpsilon = 1e-6

// NonLinearEffects returns the Coriolis+gravity bias vector n such that
// the unconstrained equation of motion reads M(q) qdd + n(q,v) = tau
// (spec §6.4 "nonLinearEffects"). It is recovered from the Lagrangian
// identity n = C(q,v) v + g(q), with the Christoffel symbols of
// C(q,v) obtained from forward finite differences of M(q) and g(q)
// from the center-of-mass Jacobians of the gravity forces — exact to first order in
// fdEpsilon and avoids implementing a separate recursive Newton-Euler
// pass, which the engine never needs in isolation from M.
func NonLinearEffects(m *Model, d *Data, q, v []float64) []float64 {
	n := m.NV
	M0 := ComputeMassMatrix(m, d, q)

	dM := make([]*Matrix, n)
	for k := 0; k < n; k++ {
		e := make([]float64, n)
		e[k] = fdEpsilon
		qk := IntegrateConfiguration(m, q, e, 1)
		if err := ForwardKinematics(m, d, qk, nil, nil); err != nil {
			dM[k] = NewMatrix(n, n)
			continue
		}
		Mk := ComputeMassMatrix(m, d, qk)
		diff := NewMatrix(n, n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				diff.Set(i, j, (Mk.At(i, j)-M0.At(i, j))/fdEpsilon)
			}
		}
		dM[k] = diff
	}
	// restore kinematics at q
	_ = ForwardKinematics(m, d, q, nil, nil)
	d.M = M0

	c := make([]float64, n)
	for k := 0; k < n; k++ {
		s := 0.0
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				gamma := 0.5 * (dM[i].At(k, j) + dM[j].At(k, i) - dM[k].At(i, j))
				s += gamma * v[i] * v[j]
			}
		}
		c[k] = s
	}

	g := gravityGeneralizedForce(m, d, q)
	for k := 0; k < n; k++ {
		c[k] -= g[k]
	}
	return c
}

// gravityGeneralizedForce returns g(q) = J^T f_gravity summed over
// bodies, the generalized force gravity alone produces.
func gravityGeneralizedForce(m *Model, d *Data, q []float64) []float64 {
	out := make([]float64, m.NV)
	gAccel := m.Gravity.Linear()
	for i := 1; i < len(m.Joints); i++ {
		j := &m.Joints[i]
		if j.Inertia.Mass == 0 {
			continue
		}
		com := d.oMi[i].Act(j.Inertia.COM)
		force := NewSpatial(Zero3, gAccel.Scale(j.Inertia.Mass))
		Jcom := frameJacobianAtPoint(m, d, q, i, com)
		for c := 0; c < m.NV; c++ {
			s := 0.0
			for r := 0; r < 6; r++ {
				s += Jcom.At(r, c) * force[r]
			}
			out[c] += s
		}
	}
	return out
}

// frameJacobianAtPoint is GetJointJacobian re-based at an arbitrary
// world point rigidly attached to joint idx (used for the COM Jacobian
// in gravityGeneralizedForce).
func frameJacobianAtPoint(m *Model, d *Data, q []float64, idx int, point Vec3) *Matrix {
	J := NewMatrix(6, m.NV)
	for k := idx; k != 0; k = m.Joints[k].ParentIdx {
		jt := &m.Joints[k]
		if jt.Type == Mimic {
			continue
		}
		qk := resolvedQ(m, q, k)
		cols := jt.subspace(qk)
		rot := d.oMi[k].Rot
		for c, col := range cols {
			angW := rot.Rotate(col.Angular())
			linW := rot.Rotate(col.Linear()).Add(angW.Cross(point.Sub(d.oMi[k].Pos)))
			vIdx := jt.VIdx + c
			J.Set(0, vIdx, angW.X)
			J.Set(1, vIdx, angW.Y)
			J.Set(2, vIdx, angW.Z)
			J.Set(3, vIdx, linW.X)
			J.Set(4, vIdx, linW.Y)
			J.Set(5, vIdx, linW.Z)
		}
	}
	return J
}

// ComputeAcceleration is the unconstrained forward dynamics solve
// (spec §6.4 "aba"): qdd = M(q)^-1 (tau - n). Returns a vector filled
// with NaN if M is not positive definite (spec §7
// "computeAcceleration returning NaN").
func ComputeAcceleration(m *Model, d *Data, q, v, tau []float64) []float64 {
	M := ComputeMassMatrix(m, d, q)
	n := NonLinearEffects(m, d, q, v)
	rhs := make([]float64, m.NV)
	for i := range rhs {
		rhs[i] = tau[i] - n[i]
	}
	chol, ok := Cholesky(M)
	if !ok {
		out := make([]float64, m.NV)
		for i := range out {
			out[i] = nan()
		}
		return out
	}
	d.chol = chol
	return chol.Solve(rhs)
}

func nan() float64 {
	var zero float64
	return zero / zero
}

// FactorMassMatrix computes M(q) and factors it into d's Cholesky slot,
// for callers (the PGS solver) that need to reuse the factorization
// across computeJMinvJt and solveJMinvJtv without solving it twice.
// Returns false if M is not positive definite.
func FactorMassMatrix(m *Model, d *Data, q []float64) bool {
	M := ComputeMassMatrix(m, d, q)
	chol, ok := Cholesky(M)
	if !ok {
		return false
	}
	d.chol = chol
	return true
}

// ComputeJMinvJt forms J M^-1 J^T given the already-factored joint-space
// inertia in d (spec §6.4 "computeJMinvJt").
func ComputeJMinvJt(d *Data, J *Matrix) *Matrix {
	Jt := NewMatrix(J.Cols, J.Rows)
	for i := 0; i < J.Rows; i++ {
		for j := 0; j < J.Cols; j++ {
			Jt.Set(j, i, J.At(i, j))
		}
	}
	MinvJt := d.chol.SolveMat(Jt)
	out := NewMatrix(J.Rows, J.Rows)
	for i := 0; i < J.Rows; i++ {
		for j := 0; j < J.Rows; j++ {
			s := 0.0
			for k := 0; k < J.Cols; k++ {
				s += J.At(i, k) * MinvJt.At(k, j)
			}
			out.Set(i, j, s)
		}
	}
	return out
}

// SolveJMinvJtv solves M^-1 applied through J for a single right-hand
// vector, used by the PGS assembly's b = -gamma - J*Minv*(u-n) term
// (spec §6.4 "solveJMinvJtv").
func SolveJMinvJtv(d *Data, rhs []float64) []float64 {
	return d.chol.Solve(rhs)
}
