package models

import "testing"

func TestNewSinglePendulumDimensions(t *testing.T) {
	m := NewSinglePendulum(1.0, 1.0, 9.81)
	if m.NQ != 1 || m.NV != 1 {
		t.Fatalf("expected 1 dof, got NQ=%d NV=%d", m.NQ, m.NV)
	}
	q := m.NeutralConfiguration()
	if len(q) != 1 || q[0] != 0 {
		t.Fatalf("expected neutral configuration [0], got %v", q)
	}
}

func TestNewTwoLinkChainDimensions(t *testing.T) {
	m := NewTwoLinkChain(1.0, 1.0, 0.5, 0.8, 9.81)
	if m.NQ != 2 || m.NV != 2 {
		t.Fatalf("expected 2 dof, got NQ=%d NV=%d", m.NQ, m.NV)
	}
	// Joints[0] is the universe entry kernel.NewModel always prepends.
	if len(m.Joints) != 3 {
		t.Fatalf("expected 3 joint entries (universe + 2 links), got %d", len(m.Joints))
	}
	if m.Joints[2].ParentIdx != 1 {
		t.Fatalf("expected link2's parent to be link1 (idx 1), got %d", m.Joints[2].ParentIdx)
	}
}

func TestNewFreeCubeDimensions(t *testing.T) {
	m := NewFreeCube(1.0, 0.1, 9.81)
	if m.NV != 6 {
		t.Fatalf("expected a free joint to contribute 6 velocity dof, got %d", m.NV)
	}
	found := false
	for _, f := range m.Frames {
		if f.Name == "corner" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a %q frame for contact probing", "corner")
	}
}
