package analysis

import (
	"math"
	"testing"
)

func TestFFTFindsDominantFrequency(t *testing.T) {
	const n = 256
	const dt = 0.01 // fs = 100 Hz
	const freq = 10.0
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * freq * float64(i) * dt)
	}
	spec := FFT(samples, dt)
	got := DominantFrequency(spec)
	if math.Abs(got-freq) > 1.0 {
		t.Fatalf("expected dominant frequency near %v Hz, got %v", freq, got)
	}
}

func TestFFTEmptyInput(t *testing.T) {
	spec := FFT(nil, 0.01)
	if len(spec.Frequencies) != 0 || len(spec.Magnitudes) != 0 {
		t.Fatalf("expected empty spectrum for empty input, got %+v", spec)
	}
}

func TestLyapunovExponentZeroForIdenticalTrajectories(t *testing.T) {
	traj := [][]float64{{0, 0}, {1, 1}, {2, 2}, {3, 3}}
	got := LyapunovExponent(traj, traj, 0.1)
	if got != 0 {
		t.Fatalf("expected 0 for a trajectory against itself (zero separation growth), got %v", got)
	}
}

func TestLyapunovExponentPositiveForDivergingTrajectories(t *testing.T) {
	n := 20
	dt := 0.1
	a := make([][]float64, n)
	b := make([][]float64, n)
	sep := 1e-6
	for i := 0; i < n; i++ {
		a[i] = []float64{0}
		b[i] = []float64{sep}
		sep *= 1.5 // exponential growth
	}
	got := LyapunovExponent(a, b, dt)
	if got <= 0 {
		t.Fatalf("expected a positive exponent for exponentially diverging trajectories, got %v", got)
	}
}

func TestLyapunovExponentMismatchedLengthReturnsZero(t *testing.T) {
	a := [][]float64{{0}, {1}}
	b := [][]float64{{0}}
	got := LyapunovExponent(a, b, 0.1)
	if got != 0 {
		t.Fatalf("expected 0 for mismatched trajectory lengths, got %v", got)
	}
}
