package kernel

// ForwardKinematics propagates q into world joint placements (spec §6.4
// "forwardKinematics"). Velocity/acceleration arguments are accepted for
// interface compatibility with the engine's call sites (spec passes
// q, v, a together) but this simplified kernel derives velocity-
// dependent quantities on demand from geometric Jacobians rather than
// threading a body-velocity recursion, so v and a are unused here.
func ForwardKinematics(m *Model, d *Data, q, v, a []float64) error {
	if err := validateDims(m, q, nil); err != nil {
		return err
	}
	d.oMi[0] = IdentitySE3
	for i := 1; i < len(m.Joints); i++ {
		j := &m.Joints[i]
		qi := resolvedQ(m, q, i)
		T := j.Placement.Compose(j.motion(qi))
		d.oMi[i] = d.oMi[j.ParentIdx].Compose(T)
	}
	return nil
}

// JointPlacement returns the world pose computed by the last
// ForwardKinematics call.
func (d *Data) JointPlacement(idx int) SE3 { return d.oMi[idx] }

// FramePlacement resolves a frame's world pose from its parent joint.
func FramePlacement(m *Model, d *Data, frameIdx int) SE3 {
	f := &m.Frames[frameIdx]
	return d.oMi[f.JointIdx].Compose(f.Placement)
}

// GetJointJacobian returns the 6xNV geometric Jacobian mapping the full
// model velocity vector to the spatial velocity of joint idx about its
// own origin, expressed in world axes (spec §6.4 "getJointJacobian").
func GetJointJacobian(m *Model, d *Data, q []float64, idx int) *Matrix {
	J := NewMatrix(6, m.NV)
	origin := d.oMi[idx].Pos
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
			linW := rot.Rotate(col.Linear()).Add(angW.Cross(origin.Sub(d.oMi[k].Pos)))
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

// GetFrameJacobian is GetJointJacobian composed with the frame's fixed
// offset from its parent joint.
func GetFrameJacobian(m *Model, d *Data, q []float64, frameIdx int) *Matrix {
	f := &m.Frames[frameIdx]
	Jj := GetJointJacobian(m, d, q, f.JointIdx)
	offset := d.oMi[f.JointIdx].Rot.Rotate(f.Placement.Pos)
	J := NewMatrix(6, m.NV)
	for c := 0; c < m.NV; c++ {
		angW := Vec3{Jj.At(0, c), Jj.At(1, c), Jj.At(2, c)}
		linW := Vec3{Jj.At(3, c), Jj.At(4, c), Jj.At(5, c)}
		linAtFrame := linW.Add(angW.Cross(offset))
		J.Set(0, c, angW.X)
		J.Set(1, c, angW.Y)
		J.Set(2, c, angW.Z)
		J.Set(3, c, linAtFrame.X)
		J.Set(4, c, linAtFrame.Y)
		J.Set(5, c, linAtFrame.Z)
	}
	return J
}

// GetFrameVelocity returns the spatial velocity of a frame given the
// current configuration and velocity (spec §6.4 "getFrameVelocity").
func GetFrameVelocity(m *Model, d *Data, q, v []float64, frameIdx int) Spatial {
	J := GetFrameJacobian(m, d, q, frameIdx)
	raw := J.MulVec(v)
	var s Spatial
	copy(s[:], raw)
	return s
}

// ComputeMassMatrix assembles the joint-space inertia M(q) via a
// Jacobian-accumulation form of the composite-rigid-body algorithm:
// M = sum_i J_i^T I_i J_i, where I_i is body i's spatial inertia
// rotated into world axes about its own origin and J_i its geometric
// Jacobian. Equivalent to CRBA for the purposes this kernel serves.
func ComputeMassMatrix(m *Model, d *Data, q []float64) *Matrix {
	M := NewMatrix(m.NV, m.NV)
	for i := 1; i < len(m.Joints); i++ {
		j := &m.Joints[i]
		if j.Type == Mimic || j.Inertia.Mass == 0 {
			continue
		}
		Ji := GetJointJacobian(m, d, q, i)
		Iw := j.Inertia.Transform(SE3{Rot: d.oMi[i].Rot}).ToMatrix()
		for a := 0; a < m.NV; a++ {
			if !columnNonZero(Ji, a) {
				continue
			}
			for b := a; b < m.NV; b++ {
				if !columnNonZero(Ji, b) {
					continue
				}
				s := 0.0
				for r := 0; r < 6; r++ {
					for c := 0; c < 6; c++ {
						s += Ji.At(r, a) * Iw[r][c] * Ji.At(c, b)
					}
				}
				M.Add(a, b, s)
				if a != b {
					M.Add(b, a, s)
				}
			}
		}
	}
	d.M = M
	return M
}

func columnNonZero(m *Matrix, c int) bool {
	for r := 0; r < m.Rows; r++ {
		if m.At(r, c) != 0 {
			return true
		}
	}
	return false
}

// ComputePotentialEnergy returns gravitational potential energy under
// the model's gravity field (spec §6.4 "computePotentialEnergy").
func ComputePotentialEnergy(m *Model, d *Data) float64 {
	g := m.Gravity.Linear()
	v := 0.0
	for i := 1; i < len(m.Joints); i++ {
		j := &m.Joints[i]
		if j.Inertia.Mass == 0 {
			continue
		}
		com := d.oMi[i].Act(j.Inertia.COM)
		v -= j.Inertia.Mass * g.Dot(com)
	}
	return v
}

// ComputeKineticEnergy returns 0.5 v^T M(q) v (spec §6.4
// "computeKineticEnergy").
func ComputeKineticEnergy(m *Model, d *Data, q, v []float64) float64 {
	M := ComputeMassMatrix(m, d, q)
	mv := M.MulVec(v)
	s := 0.0
	for i := range v {
		s += v[i] * mv[i]
	}
	return 0.5 * s
}
