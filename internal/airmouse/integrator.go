// Package airmouse turns a stream of device orientation samples into
// relative pointer movement.
package airmouse

import (
	"math"
	"sync"
	"sync/atomic"
)

// DefaultSensitivity matches the shipped config default
const DefaultSensitivity = 50

// maxAngle bounds accepted readings. Browsers report alpha in [0, 360) and
// beta in [-180, 180]; anything beyond one turn is garbage.
const maxAngle = 360

// Sample is one orientation reading in degrees. A nil angle means the
// client did not report it.
type Sample struct {
	Alpha *float64 `json:"alpha"`
	Beta  *float64 `json:"beta"`
}

// NewSample builds a complete sample
func NewSample(alpha, beta float64) Sample {
	return Sample{Alpha: &alpha, Beta: &beta}
}

// Delta is a pointer movement in pixels
type Delta struct {
	DX int
	DY int
}

type orientation struct {
	alpha, beta float64
}

// Integrator keeps the last orientation and emits the movement between
// consecutive samples. The first sample after a reset only sets the baseline.
type Integrator struct {
	mu          sync.Mutex
	last        *orientation
	sensitivity atomic.Int64
}

// NewIntegrator creates an integrator with no baseline
func NewIntegrator(sensitivity int) *Integrator {
	in := &Integrator{}
	in.SetSensitivity(sensitivity)
	return in
}

// SetSensitivity changes the scaling of subsequent samples
func (in *Integrator) SetSensitivity(sensitivity int) {
	in.sensitivity.Store(int64(sensitivity))
}

// Sensitivity returns the current scaling knob
func (in *Integrator) Sensitivity() int {
	return int(in.sensitivity.Load())
}

// Reset drops the baseline; the next sample emits nothing.
func (in *Integrator) Reset() {
	in.mu.Lock()
	in.last = nil
	in.mu.Unlock()
}

// HasBaseline reports whether a previous sample is stored
func (in *Integrator) HasBaseline() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.last != nil
}

// Integrate consumes a sample and returns the pointer movement it implies.
// ok is false when nothing should move: incomplete or out-of-range sample,
// first sample after a reset, or a movement that rounds to zero on both
// axes. Out-of-range samples leave the baseline untouched.
func (in *Integrator) Integrate(s Sample) (d Delta, ok bool) {
	if s.Alpha == nil || s.Beta == nil || !validAngle(*s.Alpha) || !validAngle(*s.Beta) {
		return Delta{}, false
	}
	cur := orientation{alpha: *s.Alpha, beta: *s.Beta}

	in.mu.Lock()
	prev := in.last
	in.last = &cur
	in.mu.Unlock()

	if prev == nil {
		return Delta{}, false
	}

	deltaAlpha := wrapDegrees(cur.alpha - prev.alpha)
	// beta is a bounded tilt, it never wraps
	deltaBeta := cur.beta - prev.beta

	factor := float64(in.Sensitivity()) / 5.0
	d = Delta{
		DX: int(math.Round(-deltaAlpha * factor)),
		DY: int(math.Round(-deltaBeta * factor)),
	}
	if d.DX == 0 && d.DY == 0 {
		return Delta{}, false
	}
	return d, true
}

func validAngle(a float64) bool {
	return !math.IsNaN(a) && a >= -maxAngle && a <= maxAngle
}

// wrapDegrees folds an angle difference into (-180, 180].
func wrapDegrees(delta float64) float64 {
	d := math.Mod(delta, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}
