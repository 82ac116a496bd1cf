package kernel

import "fmt"

// Frame is a named point of interest attached to a joint, used by the
// engine for contact queries and force application (spec §3 "frame" in
// ForceCouplingEntry/ForceImpulseEntry/ForceProfileEntry/FixedFrame).
type Frame struct {
	Name      string
	JointIdx  int // 0 = universe
	Placement SE3
}

// Model is the immutable kinematic tree: joints indexed 1..J, with 0
// reserved for the universe, mirroring spec.md §3. Joints[0] is an unused
// sentinel so joint indices match parent-index conventions directly.
type Model struct {
	Joints  []Joint // Joints[0] unused
	Frames  []Frame // Frames[0] is the universe frame
	NQ, NV  int
	Gravity Spatial

	jointIndex map[string]int
	frameIndex map[string]int
}

// NewModel builds a Model from a list of joints (1-indexed internally)
// and frames, assigning QIdx/VIdx offsets in joint order.
func NewModel(joints []Joint, frames []Frame, gravity Spatial) *Model {
	m := &Model{
		Joints:     append([]Joint{{Name: "universe"}}, joints...),
		Frames:     append([]Frame{{Name: "universe"}}, frames...),
		Gravity:    gravity,
		jointIndex: make(map[string]int),
		frameIndex: make(map[string]int),
	}
	qOff, vOff := 0, 0
	for i := 1; i < len(m.Joints); i++ {
		j := &m.Joints[i]
		nq, nv := j.Widths()
		j.QIdx, j.VIdx = qOff, vOff
		qOff += nq
		vOff += nv
		m.jointIndex[j.Name] = i
	}
	m.NQ, m.NV = qOff, vOff
	for i, f := range m.Frames {
		m.frameIndex[f.Name] = i
	}
	return m
}

func (m *Model) JointIndex(name string) (int, bool) {
	i, ok := m.jointIndex[name]
	return i, ok
}

func (m *Model) FrameIndex(name string) (int, bool) {
	i, ok := m.frameIndex[name]
	return i, ok
}

// NeutralConfiguration returns the identity q for the whole model.
func (m *Model) NeutralConfiguration() []float64 {
	q := make([]float64, m.NQ)
	for i := 1; i < len(m.Joints); i++ {
		j := &m.Joints[i]
		if j.Type == Mimic {
			continue
		}
		copy(q[j.QIdx:], j.neutralQ())
	}
	return q
}

// Data is the mutable per-simulation scratch the engine drives through
// forward kinematics and the dynamics solve each step.
type Data struct {
	oMi  []SE3     // world placement of each joint's output frame
	v    []Spatial // spatial velocity of each joint, expressed in its own (body) frame
	a    []Spatial // spatial acceleration (bias, v=0 dynamics), body frame
	M    *Matrix   // joint-space inertia, NV x NV
	chol *CholeskyFactor
}

func NewData(m *Model) *Data {
	n := len(m.Joints)
	return &Data{
		oMi: make([]SE3, n),
		v:   make([]Spatial, n),
		a:   make([]Spatial, n),
		M:   NewMatrix(m.NV, m.NV),
	}
}

// resolvedQ returns joint j's own configuration slice, following Mimic
// references back to their target.
func resolvedQ(m *Model, q []float64, idx int) []float64 {
	j := &m.Joints[idx]
	if j.Type != Mimic {
		nq, _ := j.Widths()
		return q[j.QIdx : j.QIdx+nq]
	}
	target := &m.Joints[j.MimicTarget]
	tq, _ := target.Widths()
	base := q[target.QIdx : target.QIdx+tq]
	out := make([]float64, len(base))
	for i, v := range base {
		out[i] = j.MimicMultiplier*v + j.MimicOffset
	}
	return out
}

func validateDims(m *Model, q, v []float64) error {
	if len(q) != m.NQ {
		return fmt.Errorf("kernel: q has dimension %d, model expects %d", len(q), m.NQ)
	}
	if v != nil && len(v) != m.NV {
		return fmt.Errorf("kernel: v has dimension %d, model expects %d", len(v), m.NV)
	}
	return nil
}
