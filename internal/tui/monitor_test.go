package tui

import (
	"errors"
	"testing"
)

func TestNewSamplerDeliversSample(t *testing.T) {
	ch := make(chan Sample, 1)
	cb := NewSampler("arm", ch)
	cont := cb(1.5, []float64{0.1}, []float64{0.2}, []float64{0.3})
	if !cont {
		t.Fatalf("expected sampler callback to always request continuation")
	}
	select {
	case s := <-ch:
		if s.System != "arm" || s.T != 1.5 {
			t.Fatalf("unexpected sample: %+v", s)
		}
	default:
		t.Fatalf("expected a sample to be delivered")
	}
}

func TestNewSamplerDropsWhenChannelFull(t *testing.T) {
	ch := make(chan Sample, 1)
	ch <- Sample{System: "stale"}
	cb := NewSampler("arm", ch)
	cb(1.0, nil, nil, nil)
	s := <-ch
	if s.System != "stale" {
		t.Fatalf("expected the sampler to drop rather than block on a full channel")
	}
}

func TestModelUpdateTracksLatestSampleAndDone(t *testing.T) {
	samples := make(chan Sample)
	done := make(chan error)
	m := model{
		samples: samples,
		done:    done,
		latest:  make(map[string]Sample),
		order:   []string{"arm"},
	}

	updated, _ := m.Update(sampleMsg(Sample{System: "arm", T: 2.0}))
	mm := updated.(model)
	if mm.latest["arm"].T != 2.0 {
		t.Fatalf("expected latest sample for arm to be recorded")
	}

	updated, _ = mm.Update(doneMsg{err: errors.New("boom")})
	mm = updated.(model)
	if !mm.finished || mm.err == nil {
		t.Fatalf("expected done message to mark finished with an error")
	}
}
