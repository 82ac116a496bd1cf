package pgs

import (
	"github.com/san-kum/robosim/internal/constraints"
	"github.com/san-kum/robosim/internal/kernel"
)

// rowSpan records where one constraint's rows land in the stacked
// system, so a solved lambda vector can be scattered back.
type rowSpan struct {
	entry  constraints.Entry
	offset int
	dim    int
	blocks []constraints.Block
}

// Assembly is the stacked Jacobian/drift system built from every
// currently active constraint (spec.md §4.2 "assembles the stacked J
// and γ of active constraints").
type Assembly struct {
	J      *kernel.Matrix
	Gamma  []float64
	spans  []rowSpan
	hasBlocks bool
}

// Assemble stacks the Jacobian and drift of every active entry, in
// registry order, and records each constraint's row span for
// scatter-back after solving.
func Assemble(m *kernel.Model, d *kernel.Data, q, v []float64, active []constraints.Entry) *Assembly {
	total := 0
	for _, e := range active {
		total += e.Constraint.RowDim()
	}

	J := kernel.NewMatrix(total, m.NV)
	gamma := make([]float64, total)
	spans := make([]rowSpan, 0, len(active))
	hasBlocks := false

	offset := 0
	for _, e := range active {
		Jc, gc := e.Constraint.ComputeJacobianAndDrift(m, d, q, v)
		dim := e.Constraint.RowDim()
		for r := 0; r < dim; r++ {
			for c := 0; c < m.NV; c++ {
				J.Set(offset+r, c, Jc.At(r, c))
			}
			gamma[offset+r] = gc[r]
		}
		blocks := e.Constraint.Blocks()
		if len(blocks) > 0 {
			hasBlocks = true
		}
		spans = append(spans, rowSpan{entry: e, offset: offset, dim: dim, blocks: blocks})
		offset += dim
	}

	return &Assembly{J: J, Gamma: gamma, spans: spans, hasBlocks: hasBlocks}
}

// Scatter writes a solved lambda vector back into each constraint's own
// multiplier slot.
func (a *Assembly) Scatter(lambda []float64) {
	for _, s := range a.spans {
		s.entry.Constraint.SetLambda(lambda[s.offset : s.offset+s.dim])
	}
}
