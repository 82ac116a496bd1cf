package kernel

import "math"

// JointType enumerates the joint kinds spec.md §3 carries abstractly.
// Only Rotary and Linear support position/velocity bounds; Free,
// Spherical, SphericalZYX, Translation, Planar, RotaryUnbounded,
// Mimic and Composite skip bound enforcement (spec.md §3).
type JointType int

const (
	Free JointType = iota
	Spherical
	SphericalZYX
	Translation
	Planar
	Linear
	Rotary
	RotaryUnbounded
	Mimic
	Composite
)

func (t JointType) String() string {
	switch t {
	case Free:
		return "free"
	case Spherical:
		return "spherical"
	case SphericalZYX:
		return "spherical_zyx"
	case Translation:
		return "translation"
	case Planar:
		return "planar"
	case Linear:
		return "linear"
	case Rotary:
		return "rotary"
	case RotaryUnbounded:
		return "rotary_unbounded"
	case Mimic:
		return "mimic"
	case Composite:
		return "composite"
	}
	return "unknown"
}

// elementaryWidths returns (nq, nv) for every type except Mimic (always
// 0,0, it borrows its target's coordinates) and Composite (sum of its
// sub-joints, computed by Joint.Widths).
func elementaryWidths(t JointType) (int, int) {
	switch t {
	case Free:
		return 7, 6
	case Spherical:
		return 4, 3
	case SphericalZYX:
		return 3, 3
	case Translation:
		return 3, 3
	case Planar:
		return 3, 3
	case Linear:
		return 1, 1
	case Rotary:
		return 1, 1
	case RotaryUnbounded:
		return 2, 1
	case Mimic:
		return 0, 0
	}
	return 0, 0
}

// Joint describes one joint of the kinematic tree. Frames carry the
// Placement transform from the parent joint's output frame to this
// joint's own input frame; FK composes Placement with the joint's own
// motion (computed from q).
type Joint struct {
	Name      string
	Type      JointType
	ParentIdx int // 0 = universe
	Placement SE3
	Inertia   SpatialInertia

	// Axis is the local joint axis for Rotary/Linear/RotaryUnbounded.
	Axis Vec3

	// QMin/QMax/VMax bound Rotary and Linear joints only (spec.md §3).
	QMin, QMax, VMax float64
	HasLimits        bool

	// MimicTarget/MimicMultiplier/MimicOffset apply when Type == Mimic:
	// this joint's configuration equals MimicMultiplier*q[target]+MimicOffset,
	// and it contributes no independent coordinates of its own.
	MimicTarget     int
	MimicMultiplier float64
	MimicOffset     float64

	// Sub holds the two elementary sub-joints of a Composite joint,
	// applied in series (Sub[0] innermost).
	Sub []Joint

	QIdx, VIdx int // offsets into the model-wide q/v vectors, set by NewModel
}

// Widths returns this joint's (nq, nv) contribution.
func (j *Joint) Widths() (int, int) {
	if j.Type == Composite {
		nq, nv := 0, 0
		for i := range j.Sub {
			sq, sv := elementaryWidths(j.Sub[i].Type)
			nq += sq
			nv += sv
		}
		return nq, nv
	}
	return elementaryWidths(j.Type)
}

// neutralQ returns the identity configuration for the joint.
func (j *Joint) neutralQ() []float64 {
	nq, _ := j.Widths()
	q := make([]float64, nq)
	switch j.Type {
	case Free:
		q[3] = 1 // quaternion W
	case Spherical:
		q[0] = 1
	case RotaryUnbounded:
		q[0] = 1 // cos(0)
	case Composite:
		off := 0
		for i := range j.Sub {
			sub := j.Sub[i].neutralQ()
			copy(q[off:], sub)
			off += len(sub)
		}
	}
	return q
}

// motion returns the joint's own SE3 transform (relative to Placement)
// for configuration q.
func (j *Joint) motion(q []float64) SE3 {
	switch j.Type {
	case Free:
		return SE3{
			Rot: Quat{q[3], q[4], q[5], q[6]}.Normalized(),
			Pos: Vec3{q[0], q[1], q[2]},
		}
	case Spherical:
		return SE3{Rot: Quat{q[0], q[1], q[2], q[3]}.Normalized()}
	case SphericalZYX:
		return SE3{Rot: eulerZYXToQuat(q[0], q[1], q[2])}
	case Translation:
		return SE3{Pos: Vec3{q[0], q[1], q[2]}}
	case Planar:
		return SE3{Rot: QuatFromAxisAngle(Vec3{0, 0, 1}, q[2]), Pos: Vec3{q[0], q[1], 0}}
	case Linear:
		return SE3{Pos: j.Axis.Normalized().Scale(q[0])}
	case Rotary:
		return SE3{Rot: QuatFromAxisAngle(j.Axis, q[0])}
	case RotaryUnbounded:
		theta := math.Atan2(q[1], q[0])
		return SE3{Rot: QuatFromAxisAngle(j.Axis, theta)}
	case Mimic:
		return IdentitySE3 // resolved by the model against the target joint
	case Composite:
		out := IdentitySE3
		off := 0
		for i := range j.Sub {
			sq, _ := elementaryWidths(j.Sub[i].Type)
			out = out.Compose(j.Sub[i].motion(q[off : off+sq]))
			off += sq
		}
		return out
	}
	return IdentitySE3
}

// subspace returns the nv motion-subspace columns (expressed in the
// joint's own output frame) that map joint velocity to spatial velocity.
func (j *Joint) subspace(q []float64) []Spatial {
	switch j.Type {
	case Free:
		cols := make([]Spatial, 6)
		cols[0] = NewSpatial(Vec3{1, 0, 0}, Zero3)
		cols[1] = NewSpatial(Vec3{0, 1, 0}, Zero3)
		cols[2] = NewSpatial(Vec3{0, 0, 1}, Zero3)
		cols[3] = NewSpatial(Zero3, Vec3{1, 0, 0})
		cols[4] = NewSpatial(Zero3, Vec3{0, 1, 0})
		cols[5] = NewSpatial(Zero3, Vec3{0, 0, 1})
		return cols
	case Spherical, SphericalZYX:
		return []Spatial{
			NewSpatial(Vec3{1, 0, 0}, Zero3),
			NewSpatial(Vec3{0, 1, 0}, Zero3),
			NewSpatial(Vec3{0, 0, 1}, Zero3),
		}
	case Translation:
		return []Spatial{
			NewSpatial(Zero3, Vec3{1, 0, 0}),
			NewSpatial(Zero3, Vec3{0, 1, 0}),
			NewSpatial(Zero3, Vec3{0, 0, 1}),
		}
	case Planar:
		return []Spatial{
			NewSpatial(Zero3, Vec3{1, 0, 0}),
			NewSpatial(Zero3, Vec3{0, 1, 0}),
			NewSpatial(Vec3{0, 0, 1}, Zero3),
		}
	case Linear:
		return []Spatial{NewSpatial(Zero3, j.Axis.Normalized())}
	case Rotary, RotaryUnbounded:
		return []Spatial{NewSpatial(j.Axis.Normalized(), Zero3)}
	case Mimic:
		return nil
	case Composite:
		var cols []Spatial
		off := 0
		accum := IdentitySE3
		for i := range j.Sub {
			sq, _ := elementaryWidths(j.Sub[i].Type)
			sub := j.Sub[i].subspace(q[off : off+sq])
			for _, c := range sub {
				cols = append(cols, accum.ActMotion(c))
			}
			accum = accum.Compose(j.Sub[i].motion(q[off : off+sq]))
			off += sq
		}
		return cols
	}
	return nil
}

// integrate advances q by velocity v over dt, respecting the joint's
// manifold structure (spec §6.4 "integrate").
func (j *Joint) integrate(q, v []float64, dt float64) []float64 {
	switch j.Type {
	case Free:
		rot := Quat{q[3], q[4], q[5], q[6]}.Normalized()
		pos := Vec3{q[0], q[1], q[2]}
		w := Vec3{v[0], v[1], v[2]}.Scale(dt)
		vLocal := Vec3{v[3], v[4], v[5]}.Scale(dt)
		newRot := rot.Mul(Exp3(w)).Normalized()
		newPos := pos.Add(rot.Rotate(vLocal))
		return []float64{newPos.X, newPos.Y, newPos.Z, newRot.W, newRot.X, newRot.Y, newRot.Z}
	case Spherical:
		rot := Quat{q[0], q[1], q[2], q[3]}.Normalized()
		w := Vec3{v[0], v[1], v[2]}.Scale(dt)
		newRot := rot.Mul(Exp3(w)).Normalized()
		return []float64{newRot.W, newRot.X, newRot.Y, newRot.Z}
	case SphericalZYX:
		rot := eulerZYXToQuat(q[0], q[1], q[2])
		w := Vec3{v[0], v[1], v[2]}.Scale(dt)
		newRot := rot.Mul(Exp3(w)).Normalized()
		a, b, c := quatToEulerZYX(newRot)
		return []float64{a, b, c}
	case RotaryUnbounded:
		theta := math.Atan2(q[1], q[0]) + v[0]*dt
		return []float64{math.Cos(theta), math.Sin(theta)}
	case Mimic:
		return nil
	case Composite:
		out := make([]float64, len(q))
		offQ, offV := 0, 0
		for i := range j.Sub {
			sq, sv := elementaryWidths(j.Sub[i].Type)
			res := j.Sub[i].integrate(q[offQ:offQ+sq], v[offV:offV+sv], dt)
			copy(out[offQ:offQ+sq], res)
			offQ += sq
			offV += sv
		}
		return out
	default:
		out := make([]float64, len(q))
		for i := range q {
			out[i] = q[i] + v[i]*dt
		}
		return out
	}
}

// difference returns the tangent vector (size nv) that integrate(q0, d, 1)
// would recover as q1 (spec §6.4 "difference").
func (j *Joint) difference(q1, q0 []float64) []float64 {
	switch j.Type {
	case Free:
		rot0 := Quat{q0[3], q0[4], q0[5], q0[6]}.Normalized()
		rot1 := Quat{q1[3], q1[4], q1[5], q1[6]}.Normalized()
		pos0 := Vec3{q0[0], q0[1], q0[2]}
		pos1 := Vec3{q1[0], q1[1], q1[2]}
		w := Log3(rot0.Conjugate().Mul(rot1))
		dLocal := rot0.Conjugate().Rotate(pos1.Sub(pos0))
		return []float64{w.X, w.Y, w.Z, dLocal.X, dLocal.Y, dLocal.Z}
	case Spherical:
		rot0 := Quat{q0[0], q0[1], q0[2], q0[3]}.Normalized()
		rot1 := Quat{q1[0], q1[1], q1[2], q1[3]}.Normalized()
		w := Log3(rot0.Conjugate().Mul(rot1))
		return []float64{w.X, w.Y, w.Z}
	case SphericalZYX:
		rot0 := eulerZYXToQuat(q0[0], q0[1], q0[2])
		rot1 := eulerZYXToQuat(q1[0], q1[1], q1[2])
		w := Log3(rot0.Conjugate().Mul(rot1))
		return []float64{w.X, w.Y, w.Z}
	case RotaryUnbounded:
		t0 := math.Atan2(q0[1], q0[0])
		t1 := math.Atan2(q1[1], q1[0])
		return []float64{wrapAngle(t1 - t0)}
	case Mimic:
		return nil
	case Composite:
		_, nv := j.Widths()
		out := make([]float64, nv)
		offQ, offV := 0, 0
		for i := range j.Sub {
			sq, sv := elementaryWidths(j.Sub[i].Type)
			d := j.Sub[i].difference(q1[offQ:offQ+sq], q0[offQ:offQ+sq])
			copy(out[offV:offV+sv], d)
			offQ += sq
			offV += sv
		}
		return out
	default:
		out := make([]float64, len(q1))
		for i := range q1 {
			out[i] = q1[i] - q0[i]
		}
		return out
	}
}

func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func eulerZYXToQuat(z, y, x float64) Quat {
	return QuatFromAxisAngle(Vec3{0, 0, 1}, z).
		Mul(QuatFromAxisAngle(Vec3{0, 1, 0}, y)).
		Mul(QuatFromAxisAngle(Vec3{1, 0, 0}, x))
}

func quatToEulerZYX(q Quat) (z, y, x float64) {
	m := q.ToMat3()
	y = math.Asin(clamp(-m[2][0], -1, 1))
	if math.Abs(m[2][0]) < 0.999999 {
		x = math.Atan2(m[2][1], m[2][2])
		z = math.Atan2(m[1][0], m[0][0])
	} else {
		x = math.Atan2(-m[1][2], m[1][1])
		z = 0
	}
	return
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
