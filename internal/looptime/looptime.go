// Package looptime computes per-cell shader time for the grid preview.
package looptime

import (
	"fmt"
	"math"
)

// LoopMode selects how adjusted time folds into one loop.
type LoopMode string

const (
	// Wrap jumps back to 0 at every multiple of the loop duration.
	Wrap LoopMode = "wrap"
	// PingPong runs forward for one duration, then backward for the next.
	PingPong LoopMode = "pingpong"
)

// ParseLoopMode validates a mode name.
func ParseLoopMode(s string) (LoopMode, error) {
	switch LoopMode(s) {
	case Wrap, PingPong:
		return LoopMode(s), nil
	}
	return "", fmt.Errorf("unknown loop mode %q", s)
}

// Settings are the timing half of the grid configuration.
type Settings struct {
	// LoopDuration is in seconds and must be positive.
	LoopDuration float64
	// Speed multiplies adjusted time. Zero and negative are allowed.
	Speed float64
	Mode  LoopMode
}

// Validate checks LoopDuration and Mode.
func (s Settings) Validate() error {
	if !(s.LoopDuration > 0) || math.IsInf(s.LoopDuration, 0) {
		return fmt.Errorf("loop duration must be positive, got %v", s.LoopDuration)
	}
	if math.IsNaN(s.Speed) || math.IsInf(s.Speed, 0) {
		return fmt.Errorf("playback speed must be finite, got %v", s.Speed)
	}
	_, err := ParseLoopMode(string(s.Mode))
	return err
}

// CellTime returns the local time of a cell whose offset is offset when the
// global clock reads elapsed.
func (s Settings) CellTime(elapsed, offset float64) float64 {
	return Local((elapsed+offset)*s.Speed, s.LoopDuration, s.Mode)
}

// Local folds adjusted time a into one loop of duration d. Wrap yields a
// value in [0,d); PingPong yields a value in [0,d] that reverses at every
// multiple of d. Negative a is folded with a non-negative remainder.
func Local(a, d float64, mode LoopMode) float64 {
	if !(d > 0) {
		return 0
	}
	if mode == PingPong {
		c := floorMod(a, 2*d)
		if c < d {
			return c
		}
		return 2*d - c
	}
	return floorMod(a, d)
}

// floorMod returns a mod m in [0, m).
func floorMod(a, m float64) float64 {
	r := math.Mod(a, m)
	if r < 0 {
		r += m
	}
	// r+m rounds to m when r is a tiny negative number
	if r >= m {
		r = 0
	}
	return r
}
