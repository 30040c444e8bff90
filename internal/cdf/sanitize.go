// Package cdf repairs raw discretized CDFs into the fixed numeric contract
// the forecasting platform accepts: exactly 201 points, values in [0, 1],
// non-decreasing, minimum adjacent step where feasible, and open/closed
// boundary clamps.
package cdf

import "math"

const (
	// TargetLength is the fixed number of CDF points the platform accepts.
	TargetLength = 201

	// MinStep is the minimum difference the platform wants between adjacent
	// CDF values. Best effort: monotonicity and the [0,1] range always win
	// when the constraints conflict.
	MinStep = 5e-5

	// openLowerFloor and openUpperCeiling keep an open-bounded CDF from
	// claiming certainty at that end.
	openLowerFloor   = 0.001
	openUpperCeiling = 0.999
)

// Bounds carries the question's open/closed range configuration.
type Bounds struct {
	OpenLower bool
	OpenUpper bool
}

// Sanitize takes a CDF of arbitrary length and values and produces a valid
// 201-point CDF. The passes run in a fixed order; reordering them can
// reintroduce the defects earlier passes fixed. Sanitize never fails: every
// input shape, including empty and all-NaN, maps to a documented fallback.
func Sanitize(raw []float64, b Bounds) []float64 {
	if len(raw) == 0 {
		return uniformRamp(TargetLength)
	}

	v := make([]float64, len(raw))
	copy(v, raw)

	v = repairNaN(v)
	clampUnit(v)
	forwardMonotonic(v)
	backwardCeiling(v)
	forwardMinStep(v)

	if b.OpenLower && v[0] < openLowerFloor {
		v[0] = openLowerFloor
		forwardMonotonic(v)
	}
	if b.OpenUpper && v[len(v)-1] > openUpperCeiling {
		v[len(v)-1] = openUpperCeiling
		backwardCeiling(v)
	}

	if len(v) != TargetLength {
		v = resample(v, TargetLength)
	}
	clampUnit(v)

	if b.OpenLower {
		if v[0] < openLowerFloor {
			v[0] = openLowerFloor
		}
	} else if v[0] < 0 {
		v[0] = 0
	}
	last := len(v) - 1
	if b.OpenUpper {
		if v[last] > openUpperCeiling {
			v[last] = openUpperCeiling
		}
	} else if v[last] > 1 {
		v[last] = 1
	}

	return v
}

func uniformRamp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) / float64(n-1)
	}
	return out
}

// repairNaN replaces NaN entries by linear interpolation between the nearest
// valid neighbors by index; NaN runs at either edge take the nearest valid
// value. All-NaN input falls back to a uniform ramp over the original
// length; a single valid entry fills every position.
func repairNaN(v []float64) []float64 {
	valid := 0
	lastValid := -1
	for i, x := range v {
		if !math.IsNaN(x) {
			valid++
			lastValid = i
		}
	}
	switch valid {
	case len(v):
		return v
	case 0:
		if len(v) == 1 {
			return []float64{0}
		}
		return uniformRamp(len(v))
	case 1:
		fill := v[lastValid]
		for i := range v {
			v[i] = fill
		}
		return v
	}

	prev := -1 // index of the last valid entry seen
	for i := 0; i < len(v); i++ {
		if !math.IsNaN(v[i]) {
			prev = i
			continue
		}
		next := i + 1
		for next < len(v) && math.IsNaN(v[next]) {
			next++
		}
		switch {
		case prev == -1:
			v[i] = v[next]
		case next == len(v):
			v[i] = v[prev]
		default:
			frac := float64(i-prev) / float64(next-prev)
			v[i] = v[prev] + (v[next]-v[prev])*frac
		}
	}
	return v
}

func clampUnit(v []float64) {
	for i, x := range v {
		if x < 0 {
			v[i] = 0
		} else if x > 1 {
			v[i] = 1
		}
	}
}

// forwardMonotonic raises values below their predecessor; never decreases.
func forwardMonotonic(v []float64) {
	for i := 1; i < len(v); i++ {
		if v[i] < v[i-1] {
			v[i] = v[i-1]
		}
	}
}

// backwardCeiling lowers values above their successor and, where there is
// room, pulls them down toward successor-MinStep so the following forward
// min-step pass can succeed without breaking the upper monotonic bound.
func backwardCeiling(v []float64) {
	for i := len(v) - 2; i >= 0; i-- {
		if v[i] > v[i+1] {
			v[i] = v[i+1]
		}
		if room := v[i+1] - MinStep; room >= 0 && v[i] > room {
			v[i] = room
		}
	}
}

// forwardMinStep enforces the minimum step only where doing so stays <= 1.
func forwardMinStep(v []float64) {
	for i := 1; i < len(v); i++ {
		if v[i] < v[i-1]+MinStep {
			v[i] = math.Min(v[i-1]+MinStep, 1.0)
		}
	}
}

// resample linearly interpolates the existing points, treated as evenly
// spaced samples over [0,1], at n evenly spaced query points over [0,1].
func resample(v []float64, n int) []float64 {
	if len(v) == 1 {
		out := make([]float64, n)
		for i := range out {
			out[i] = v[0]
		}
		return out
	}
	out := make([]float64, n)
	last := float64(len(v) - 1)
	for i := range out {
		pos := float64(i) / float64(n-1) * last
		lo := int(math.Floor(pos))
		if lo >= len(v)-1 {
			out[i] = v[len(v)-1]
			continue
		}
		frac := pos - float64(lo)
		out[i] = v[lo] + (v[lo+1]-v[lo])*frac
	}
	return out
}
