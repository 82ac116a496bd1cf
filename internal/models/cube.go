package models

import "github.com/san-kum/robosim/internal/kernel"

// NewFreeCube builds a single Free (6-DOF) joint carrying a uniform
// cube of the given mass and half-extent, with a corner frame used by
// contact scenarios to probe ground collision away from the center of
// mass (spec.md S3/S4's falling-cube and bouncing-sphere scenarios).
func NewFreeCube(mass, halfExtent, gravity float64) *kernel.Model {
	i := mass * halfExtent * halfExtent * 2.0 / 3.0
	joint := kernel.Joint{
		Name:      "base",
		Type:      kernel.Free,
		ParentIdx: 0,
		Placement: kernel.IdentitySE3,
		Inertia: kernel.SpatialInertia{
			Mass: mass,
			Rot:  kernel.Diag3(i, i, i),
		},
	}
	frames := []kernel.Frame{
		{Name: "corner", JointIdx: 1, Placement: kernel.SE3{Rot: kernel.IdentityQuat, Pos: kernel.Vec3{X: halfExtent, Y: halfExtent, Z: -halfExtent}}},
	}
	gravitySpatial := kernel.NewSpatial(kernel.Zero3, kernel.Vec3{Z: -gravity})
	return kernel.NewModel([]kernel.Joint{joint}, frames, gravitySpatial)
}
