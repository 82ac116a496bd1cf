package kernel

// SE3 is a rigid transform: a rotation (unit quaternion) plus a
// translation, in the teacher's immutable-value-type style.
type SE3 struct {
	Rot Quat
	Pos Vec3
}

var IdentitySE3 = SE3{Rot: IdentityQuat}

func NewSE3(rot Quat, pos Vec3) SE3 { return SE3{rot.Normalized(), pos} }

// Compose returns the transform equivalent to applying o first, then t:
// t.Compose(o).Act(p) == t.Act(o.Act(p)).
func (t SE3) Compose(o SE3) SE3 {
	return SE3{
		Rot: t.Rot.Mul(o.Rot),
		Pos: t.Pos.Add(t.Rot.Rotate(o.Pos)),
	}
}

func (t SE3) Inverse() SE3 {
	invRot := t.Rot.Conjugate()
	return SE3{Rot: invRot, Pos: invRot.Rotate(t.Pos).Neg()}
}

// Act transforms a point from the local frame into the frame t is
// expressed in.
func (t SE3) Act(p Vec3) Vec3 {
	return t.Pos.Add(t.Rot.Rotate(p))
}

// ActLinear rotates a free vector (velocity, force) without translating it.
func (t SE3) ActLinear(v Vec3) Vec3 {
	return t.Rot.Rotate(v)
}

// Spatial is a 6-vector: angular (rows 0-2) stacked on linear (rows 3-5),
// used for both motions (velocity/acceleration) and forces (wrench).
type Spatial [6]float64

func NewSpatial(angular, linear Vec3) Spatial {
	return Spatial{angular.X, angular.Y, angular.Z, linear.X, linear.Y, linear.Z}
}

func (s Spatial) Angular() Vec3 { return Vec3{s[0], s[1], s[2]} }
func (s Spatial) Linear() Vec3  { return Vec3{s[3], s[4], s[5]} }

func (s Spatial) Add(o Spatial) Spatial {
	var r Spatial
	for i := range s {
		r[i] = s[i] + o[i]
	}
	return r
}

func (s Spatial) Sub(o Spatial) Spatial {
	var r Spatial
	for i := range s {
		r[i] = s[i] - o[i]
	}
	return r
}

func (s Spatial) Scale(k float64) Spatial {
	var r Spatial
	for i := range s {
		r[i] = s[i] * k
	}
	return r
}

func (s Spatial) Dot(o Spatial) float64 {
	sum := 0.0
	for i := range s {
		sum += s[i] * o[i]
	}
	return sum
}

// MotionCross is the spatial cross product v x* w used by the bias-force
// recursion (Featherstone's "ad" operator restricted to the motion case).
func (v Spatial) MotionCross(w Spatial) Spatial {
	wA, wL := w.Angular(), w.Linear()
	vA, vL := v.Angular(), v.Linear()
	angular := vA.Cross(wA)
	linear := vA.Cross(wL).Add(vL.Cross(wA))
	return NewSpatial(angular, linear)
}

// ForceCross is the dual spatial cross product used to transport a
// spatial force across a velocity-dependent bias term.
func (v Spatial) ForceCross(f Spatial) Spatial {
	wA, wL := f.Angular(), f.Linear()
	vA, vL := v.Angular(), v.Linear()
	angular := vA.Cross(wA).Add(vL.Cross(wL))
	linear := vA.Cross(wL)
	return NewSpatial(angular, linear)
}

// ActMotion transports a spatial motion from the frame t is expressed in
// (children frame) outward, i.e. X * v for a motion vector v.
func (t SE3) ActMotion(v Spatial) Spatial {
	angular := t.Rot.Rotate(v.Angular())
	linear := t.Rot.Rotate(v.Linear()).Add(t.Pos.Cross(angular))
	return NewSpatial(angular, linear)
}

// ActForce transports a spatial force (dual of ActMotion, X^-T * f).
func (t SE3) ActForce(f Spatial) Spatial {
	linear := t.Rot.Rotate(f.Linear())
	angular := t.Rot.Rotate(f.Angular()).Add(t.Pos.Cross(linear))
	return NewSpatial(angular, linear)
}

// ActInvMotion applies the inverse transform to a motion vector, i.e.
// X^-1 * v without materializing the inverse transform.
func (t SE3) ActInvMotion(v Spatial) Spatial {
	return t.Inverse().ActMotion(v)
}
