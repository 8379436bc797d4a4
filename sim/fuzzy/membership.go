// Package fuzzy implements the Mamdani-style satisfaction model: eight linguistic
// input criteria, a fixed 30-rule base, min/max inference and centroid
// defuzzification over a discretized [0,10] universe.
//
// An Engine is built once and is read-only afterwards, so it can be shared
// across goroutines.
package fuzzy

import (
	"fmt"
	"math"
)

// Resolution selects the discretization of the universe of discourse.
type Resolution string

const (
	// ResolutionBase samples 0..10 in integer steps (11 points).
	ResolutionBase Resolution = "base"
	// ResolutionFine samples 0..10 in steps of 0.1 (101 points).
	ResolutionFine Resolution = "fine"
)

// ValidResolutions is the set of recognized resolutions. Empty means base.
var ValidResolutions = map[string]bool{"": true, "base": true, "fine": true}

// Universe returns the sample points of [0,10] for the resolution.
func Universe(res Resolution) ([]float64, error) {
	var n int
	switch res {
	case "", ResolutionBase:
		n = 11
	case ResolutionFine:
		n = 101
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownResolution, res)
	}
	u := make([]float64, n)
	step := 10.0 / float64(n-1)
	for i := range u {
		u[i] = float64(i) * step
	}
	u[n-1] = 10
	return u, nil
}

// MembershipFunc maps a crisp value to a degree of truth in [0,1].
type MembershipFunc interface {
	Degree(x float64) float64
}

// Triangle is the triangular shape with feet at A and C and peak at B.
// A == B or B == C give a shoulder with full membership at the edge.
type Triangle struct{ A, B, C float64 }

func (t Triangle) Degree(x float64) float64 {
	switch {
	case x < t.A || x > t.C:
		return 0
	case x == t.B:
		return 1
	case x < t.B:
		return (x - t.A) / (t.B - t.A)
	default:
		return (t.C - x) / (t.C - t.B)
	}
}

// Trapezoid is the trapezoidal shape with feet at A and D and plateau [B,C].
type Trapezoid struct{ A, B, C, D float64 }

func (t Trapezoid) Degree(x float64) float64 {
	switch {
	case x < t.A || x > t.D:
		return 0
	case x >= t.B && x <= t.C:
		return 1
	case x < t.B:
		return (x - t.A) / (t.B - t.A)
	default:
		return (t.D - x) / (t.D - t.C)
	}
}

// Gaussian is the bell curve exp(-(x-Mean)²/(2·Sigma²)).
type Gaussian struct{ Mean, Sigma float64 }

func (g Gaussian) Degree(x float64) float64 {
	d := x - g.Mean
	return math.Exp(-(d * d) / (2 * g.Sigma * g.Sigma))
}

// Sigmoid is 1/(1+exp(-Slope·(x-Center))). A negative slope gives a falling curve.
type Sigmoid struct{ Center, Slope float64 }

func (s Sigmoid) Degree(x float64) float64 {
	return 1 / (1 + math.Exp(-s.Slope*(x-s.Center)))
}

// Complement is 1 - Of(x).
type Complement struct{ Of MembershipFunc }

func (c Complement) Degree(x float64) float64 {
	return 1 - c.Of.Degree(x)
}
