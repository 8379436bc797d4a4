package workload

import (
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat/distuv"
)

// Arrival process names accepted by NewArrivalSampler.
const (
	ProcessPoisson = "poisson"
	ProcessGamma   = "gamma"
	ProcessWeibull = "weibull"
	ProcessFixed   = "fixed"
)

// ArrivalSampler produces the gap between consecutive patient arrivals.
type ArrivalSampler interface {
	// SampleIAT returns the next inter-arrival time in ticks. Always > 0.
	SampleIAT(rng *rand.Rand) float64
}

// minIAT keeps two arrivals from sharing the exact same instant.
const minIAT = 1e-9

func positive(iat float64) float64 {
	if math.IsNaN(iat) || iat < minIAT {
		return minIAT
	}
	return iat
}

// PoissonSampler draws exponential gaps (CV = 1).
type PoissonSampler struct {
	rate float64 // patients per tick
}

func (s *PoissonSampler) SampleIAT(rng *rand.Rand) float64 {
	return positive(rng.ExpFloat64() / s.rate)
}

// FixedSampler admits one patient every interval ticks and draws nothing.
type FixedSampler struct {
	interval float64
}

func (s *FixedSampler) SampleIAT(*rand.Rand) float64 {
	return s.interval
}

// GammaSampler draws Gamma gaps with mean 1/rate. CV > 1 gives bursty
// intake, such as a bus unloading at the door.
type GammaSampler struct {
	shape float64 // 1/CV²
	rate  float64 // shape*rate, per tick
}

func (s *GammaSampler) SampleIAT(rng *rand.Rand) float64 {
	return positive(distuv.Gamma{Alpha: s.shape, Beta: s.rate, Src: rng}.Rand())
}

// WeibullSampler draws Weibull gaps with mean 1/rate.
type WeibullSampler struct {
	shape float64 // k
	scale float64 // λ in ticks
}

func (s *WeibullSampler) SampleIAT(rng *rand.Rand) float64 {
	iat := distuv.Weibull{K: s.shape, Lambda: s.scale, Src: rng}.Rand()
	if math.IsInf(iat, 0) {
		return s.scale
	}
	return positive(iat)
}

// NewArrivalSampler creates a sampler for the named process. rate is patients
// per tick; interval is only read by the fixed process; cv by gamma and weibull
// (nil or non-positive means 1). Returns nil when the process can produce no
// arrivals.
func NewArrivalSampler(process string, rate float64, interval int64, cv *float64) ArrivalSampler {
	if process == ProcessFixed {
		if interval <= 0 {
			return nil
		}
		return &FixedSampler{interval: float64(interval)}
	}
	if rate <= 0 {
		return nil
	}
	c := 1.0
	if cv != nil && *cv > 0 {
		c = *cv
	}
	switch process {
	case ProcessGamma:
		shape := 1 / (c * c)
		if shape < 0.01 {
			logrus.Warnf("gamma intake with CV=%.1f is degenerate (shape %.4f); using poisson", c, shape)
			return &PoissonSampler{rate: rate}
		}
		return &GammaSampler{shape: shape, rate: shape * rate}
	case ProcessWeibull:
		k := weibullShape(c)
		return &WeibullSampler{shape: k, scale: 1 / (rate * math.Gamma(1+1/k))}
	default:
		return &PoissonSampler{rate: rate}
	}
}

// weibullShape finds k whose Weibull CV is target. CV falls as k grows, so a
// bisection over [0.1, 100] converges.
func weibullShape(target float64) float64 {
	lo, hi := 0.1, 100.0
	for range 100 {
		k := (lo + hi) / 2
		cv := weibullCV(k)
		switch {
		case math.Abs(cv-target) < 0.001:
			return k
		case cv > target:
			lo = k
		default:
			hi = k
		}
	}
	k := (lo + hi) / 2
	logrus.Warnf("weibull intake: no shape matches CV=%.3f, using k=%.3f", target, k)
	return k
}

func weibullCV(k float64) float64 {
	g1 := math.Gamma(1 + 1/k)
	g2 := math.Gamma(1 + 2/k)
	return math.Sqrt(g2/(g1*g1) - 1)
}
