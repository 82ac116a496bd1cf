package kernel

// SpatialInertia is a rigid body's mass properties expressed about its
// own joint frame: mass, center of mass offset, and rotational inertia
// about that center of mass.
type SpatialInertia struct {
	Mass    float64
	COM     Vec3
	Rot     Mat3 // inertia tensor about COM
}

// ToMatrix expands the inertia into its 6x6 spatial-matrix form
// (angular-angular, angular-linear, linear-linear blocks), the
// representation the composite-rigid-body recursion accumulates.
func (si SpatialInertia) ToMatrix() [6][6]float64 {
	var M [6][6]float64
	c := Skew(si.COM)
	I := si.Rot.Add(c.Mul(c.Transpose()).scaleNeg(-si.Mass))
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			M[i][j] = I[i][j]
			M[i][3+j] = si.Mass * c[i][j]
			M[3+i][j] = si.Mass * c.Transpose()[i][j]
		}
		M[3+i][3+i] = si.Mass
	}
	return M
}

func (m Mat3) scaleNeg(s float64) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = -s * m[i][j]
		}
	}
	return r
}

// Transform re-expresses the inertia from its own frame into the frame
// related by t (t maps local points into the target frame), i.e. the
// standard parallel-axis + rotation transport used when accumulating
// child inertias into a parent during CRBA.
func (si SpatialInertia) Transform(t SE3) SpatialInertia {
	com := t.Act(si.COM)
	rot := t.Rot.ToMat3().Mul(si.Rot).Mul(t.Rot.ToMat3().Transpose())
	return SpatialInertia{Mass: si.Mass, COM: com, Rot: rot}
}

// matAdd6 adds two 6x6 spatial matrices.
func matAdd6(a, b [6][6]float64) [6][6]float64 {
	var r [6][6]float64
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			r[i][j] = a[i][j] + b[i][j]
		}
	}
	return r
}

func matVec6(m [6][6]float64, v Spatial) Spatial {
	var r Spatial
	for i := 0; i < 6; i++ {
		s := 0.0
		for j := 0; j < 6; j++ {
			s += m[i][j] * v[j]
		}
		r[i] = s
	}
	return r
}
