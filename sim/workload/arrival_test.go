package workload

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func sampleN(s ArrivalSampler, rng *rand.Rand, n int) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = s.SampleIAT(rng)
	}
	return vals
}

func TestPoissonSampler_MeanIAT_MatchesRate(t *testing.T) {
	// GIVEN a Poisson sampler at 0.5 patients per tick
	rng := rand.New(rand.NewSource(42))
	sampler := NewArrivalSampler(ProcessPoisson, 0.5, 0, nil)

	// WHEN 10000 IATs are sampled
	mean := stat.Mean(sampleN(sampler, rng, 10000), nil)

	// THEN mean IAT ≈ 1/rate = 2 ticks (within 5%)
	if math.Abs(mean-2.0)/2.0 > 0.05 {
		t.Errorf("mean IAT = %.3f ticks, want ≈ 2 (within 5%%)", mean)
	}
}

func TestGammaSampler_HighCV_ProducesBurstierArrivals(t *testing.T) {
	// GIVEN a Gamma sampler with CV=3.5 and a Poisson sampler at the same rate
	cv := 3.5
	gamma := NewArrivalSampler(ProcessGamma, 2.0, 0, &cv)
	poisson := NewArrivalSampler(ProcessPoisson, 2.0, 0, nil)

	// WHEN 10000 IATs are sampled from each
	g := sampleN(gamma, rand.New(rand.NewSource(42)), 10000)
	p := sampleN(poisson, rand.New(rand.NewSource(42)), 10000)

	// THEN Gamma CV > 2 and Poisson CV ≈ 1
	if cvG := stat.StdDev(g, nil) / stat.Mean(g, nil); cvG < 2.0 {
		t.Errorf("gamma CV = %.2f, want > 2.0", cvG)
	}
	if cvP := stat.StdDev(p, nil) / stat.Mean(p, nil); cvP < 0.8 || cvP > 1.2 {
		t.Errorf("poisson CV = %.2f, want ≈ 1.0", cvP)
	}
}

func TestGammaSampler_MeanAndVariance_MatchTheoretical(t *testing.T) {
	cv := 2.0
	rate := 0.25
	sampler := NewArrivalSampler(ProcessGamma, rate, 0, &cv)

	mean, variance := stat.MeanVariance(sampleN(sampler, rand.New(rand.NewSource(42)), 50000), nil)

	expectedMean := 1 / rate
	expectedVar := expectedMean * expectedMean * cv * cv
	if math.Abs(mean-expectedMean)/expectedMean > 0.05 {
		t.Errorf("gamma mean = %.3f, want ≈ %.3f (within 5%%)", mean, expectedMean)
	}
	if math.Abs(variance-expectedVar)/expectedVar > 0.15 {
		t.Errorf("gamma variance = %.3f, want ≈ %.3f (within 15%%)", variance, expectedVar)
	}
}

func TestWeibullSampler_MeanIAT_MatchesRate(t *testing.T) {
	cv := 1.5
	sampler := NewArrivalSampler(ProcessWeibull, 0.2, 0, &cv)

	mean := stat.Mean(sampleN(sampler, rand.New(rand.NewSource(42)), 10000), nil)

	if math.Abs(mean-5.0)/5.0 > 0.10 {
		t.Errorf("weibull mean IAT = %.3f ticks, want ≈ 5 (within 10%%)", mean)
	}
}

func TestSamplers_AllPositive(t *testing.T) {
	cv := 3.0
	for _, s := range []ArrivalSampler{
		NewArrivalSampler(ProcessPoisson, 50, 0, nil),
		NewArrivalSampler(ProcessGamma, 50, 0, &cv),
		NewArrivalSampler(ProcessWeibull, 50, 0, &cv),
	} {
		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 10000; i++ {
			if iat := s.SampleIAT(rng); iat <= 0 {
				t.Fatalf("%T: IAT must be positive, got %v at iteration %d", s, iat, i)
			}
		}
	}
}

func TestWeibullShape_MatchesTargetCV(t *testing.T) {
	for _, cv := range []float64{0.5, 1.0, 2.0} {
		k := weibullShape(cv)
		if got := weibullCV(k); math.Abs(got-cv) > 0.01 {
			t.Errorf("weibullShape(%.1f) = %.3f with CV %.3f", cv, k, got)
		}
	}
	// CV 1 is the exponential case.
	if k := weibullShape(1.0); math.Abs(k-1.0) > 0.01 {
		t.Errorf("weibullShape(1) = %.3f, want ≈ 1", k)
	}
}

func TestFixedSampler_ExactIntervals_IgnoresRNG(t *testing.T) {
	// GIVEN a fixed sampler every 5 ticks
	sampler := NewArrivalSampler(ProcessFixed, 0, 5, nil)

	// THEN every IAT is exactly 5 whatever the RNG state
	rng1 := rand.New(rand.NewSource(1))
	rng2 := rand.New(rand.NewSource(999))
	for i := 0; i < 50; i++ {
		if a, b := sampler.SampleIAT(rng1), sampler.SampleIAT(rng2); a != 5 || b != 5 {
			t.Fatalf("iteration %d: SampleIAT = %v, %v, want 5", i, a, b)
		}
	}
}

func TestNewArrivalSampler_NoArrivals_ReturnsNil(t *testing.T) {
	if NewArrivalSampler(ProcessPoisson, 0, 0, nil) != nil {
		t.Error("zero rate should produce no sampler")
	}
	if NewArrivalSampler(ProcessFixed, 3, 0, nil) != nil {
		t.Error("fixed process without interval should produce no sampler")
	}
}

func TestNewArrivalSampler_TinyGammaShape_FallsBackToPoisson(t *testing.T) {
	cv := 20.0
	if _, ok := NewArrivalSampler(ProcessGamma, 1, 0, &cv).(*PoissonSampler); !ok {
		t.Error("CV=20 should fall back to Poisson")
	}
}
