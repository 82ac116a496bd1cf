package models

import "github.com/san-kum/robosim/internal/kernel"

// NewSinglePendulum builds a single Rotary joint about the Y axis,
// point mass at distance length from the joint, under -Z gravity.
func NewSinglePendulum(mass, length, gravity float64) *kernel.Model {
	inertia := kernel.SpatialInertia{
		Mass: mass,
		COM:  kernel.Vec3{X: 0, Y: 0, Z: -length},
		Rot:  kernel.Diag3(mass*length*length*1e-3, mass*length*length*1e-3, 1e-4),
	}
	joint := kernel.Joint{
		Name:      "shoulder",
		Type:      kernel.Rotary,
		ParentIdx: 0,
		Placement: kernel.IdentitySE3,
		Inertia:   inertia,
		Axis:      kernel.Vec3{Y: 1},
		HasLimits: false,
	}
	frames := []kernel.Frame{
		{Name: "tip", JointIdx: 1, Placement: kernel.SE3{Rot: kernel.IdentityQuat, Pos: kernel.Vec3{Z: -length}}},
	}
	gravitySpatial := kernel.NewSpatial(kernel.Zero3, kernel.Vec3{Z: -gravity})
	return kernel.NewModel([]kernel.Joint{joint}, frames, gravitySpatial)
}

// NewTwoLinkChain builds two Rotary joints in series about the Y axis,
// each carrying a point mass at the end of its own link — the classic
// double-pendulum topology expressed as a kinematic tree.
func NewTwoLinkChain(mass1, length1, mass2, length2, gravity float64) *kernel.Model {
	inertia1 := kernel.SpatialInertia{
		Mass: mass1,
		COM:  kernel.Vec3{Z: -length1},
		Rot:  kernel.Diag3(mass1*length1*length1*1e-3, mass1*length1*length1*1e-3, 1e-4),
	}
	inertia2 := kernel.SpatialInertia{
		Mass: mass2,
		COM:  kernel.Vec3{Z: -length2},
		Rot:  kernel.Diag3(mass2*length2*length2*1e-3, mass2*length2*length2*1e-3, 1e-4),
	}
	link1 := kernel.Joint{
		Name:      "link1",
		Type:      kernel.Rotary,
		ParentIdx: 0,
		Placement: kernel.IdentitySE3,
		Inertia:   inertia1,
		Axis:      kernel.Vec3{Y: 1},
	}
	link2 := kernel.Joint{
		Name:      "link2",
		Type:      kernel.Rotary,
		ParentIdx: 1,
		Placement: kernel.SE3{Rot: kernel.IdentityQuat, Pos: kernel.Vec3{Z: -length1}},
		Inertia:   inertia2,
		Axis:      kernel.Vec3{Y: 1},
	}
	frames := []kernel.Frame{
		{Name: "elbow", JointIdx: 1, Placement: kernel.SE3{Rot: kernel.IdentityQuat, Pos: kernel.Vec3{Z: -length1}}},
		{Name: "tip", JointIdx: 2, Placement: kernel.SE3{Rot: kernel.IdentityQuat, Pos: kernel.Vec3{Z: -length2}}},
	}
	gravitySpatial := kernel.NewSpatial(kernel.Zero3, kernel.Vec3{Z: -gravity})
	return kernel.NewModel([]kernel.Joint{link1, link2}, frames, gravitySpatial)
}
