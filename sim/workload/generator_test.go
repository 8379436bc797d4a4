package workload

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicsim/clinicsim/sim"
	"github.com/clinicsim/clinicsim/sim/fuzzy"
)

func collect(g *Generator, ticks int64) []*sim.Patient {
	var all []*sim.Patient
	for tick := int64(1); tick <= ticks; tick++ {
		all = append(all, g.Arrivals(tick)...)
	}
	return all
}

func TestGenerator_FixedInterval_EveryFifthTick(t *testing.T) {
	// GIVEN a fixed-interval intake every 5 ticks
	g := NewGenerator(sim.IntakeConfig{Process: ProcessFixed, Interval: 5}, rand.New(rand.NewSource(1)))

	// WHEN polled tick by tick
	var arrivalTicks []int64
	for tick := int64(1); tick <= 20; tick++ {
		for range g.Arrivals(tick) {
			arrivalTicks = append(arrivalTicks, tick)
		}
	}

	// THEN one patient arrives on each multiple of 5
	assert.Equal(t, []int64{5, 10, 15, 20}, arrivalTicks)
	assert.Equal(t, 4, g.Generated())
}

func TestGenerator_SequentialIDsFromFirstPatientID(t *testing.T) {
	g := NewGenerator(sim.IntakeConfig{Process: ProcessPoisson, Rate: 2}, rand.New(rand.NewSource(3)))

	patients := collect(g, 30)

	require.NotEmpty(t, patients)
	for i, p := range patients {
		assert.Equal(t, FirstPatientID+i, p.ID)
		assert.True(t, sim.IsValidAcuity(string(p.Acuity)))
		assert.Equal(t, sim.StateWaiting, p.State)
	}
}

func TestGenerator_PoissonRate_MatchesCount(t *testing.T) {
	// GIVEN 1.5 arrivals per tick on average
	g := NewGenerator(sim.IntakeConfig{Process: ProcessPoisson, Rate: 1.5}, rand.New(rand.NewSource(42)))

	// WHEN 2000 ticks are polled
	n := len(collect(g, 2000))

	// THEN about 3000 patients arrived, more than one per tick on some ticks
	assert.InDelta(t, 3000, n, 200)
}

func TestGenerator_SameSeed_SameArrivals(t *testing.T) {
	cfg := sim.IntakeConfig{Process: ProcessGamma, Rate: 0.8, SatisfactionProbability: 0.5}
	a := collect(NewGenerator(cfg, rand.New(rand.NewSource(9))), 100)
	b := collect(NewGenerator(cfg, rand.New(rand.NewSource(9))), 100)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
		assert.Equal(t, a[i].Acuity, b[i].Acuity)
		assert.Equal(t, a[i].Satisfaction, b[i].Satisfaction)
	}
}

func TestGenerator_Questionnaires_UseAliasesWithinRange(t *testing.T) {
	// GIVEN every patient gets a questionnaire
	g := NewGenerator(sim.IntakeConfig{Process: ProcessFixed, Interval: 1, SatisfactionProbability: 1}, rand.New(rand.NewSource(5)))

	for _, p := range collect(g, 50) {
		require.NotNil(t, p.Satisfaction)
		assert.Len(t, p.Satisfaction, len(questionnaireKeys))
		for k, v := range p.Satisfaction {
			_, known := fuzzy.Lookup(k)
			assert.True(t, known, k)
			x := v.(float64)
			assert.GreaterOrEqual(t, x, 0.0)
			assert.LessOrEqual(t, x, 10.0)
		}
	}
}

func TestGenerator_Questionnaires_DecodeOnOneScale(t *testing.T) {
	tests := []struct {
		name      string
		unitScale bool
		factor    float64 // raw value times factor is the intended 0–10 answer
	}{
		{"unit scale rescaled by the engine", true, 10},
		{"ten scale read literally", false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN questionnaires emitted on one scale
			g := NewGenerator(sim.IntakeConfig{Process: ProcessFixed, Interval: 1, SatisfactionProbability: 1}, rand.New(rand.NewSource(1)))
			g.UnitScale = tt.unitScale

			low := 0
			for _, p := range collect(g, 200) {
				// WHEN decoded the way the engine does for that scale
				vec := p.Satisfaction.Vector(tt.unitScale)

				// THEN every answer keeps its intended meaning
				for k, raw := range p.Satisfaction {
					name, _ := fuzzy.Lookup(k)
					want := raw.(float64) * tt.factor
					assert.InDelta(t, want, vec[name], 1e-9, k)
					if want <= 1 {
						low++
					}
				}
			}
			// AND very poor answers survive as very poor
			assert.Greater(t, low, 0)
		})
	}
}

func TestGenerator_UnitScaleByDefault(t *testing.T) {
	g := NewGenerator(sim.IntakeConfig{Process: ProcessFixed, Interval: 1, SatisfactionProbability: 1}, rand.New(rand.NewSource(2)))
	assert.True(t, g.UnitScale)
	for _, p := range collect(g, 50) {
		for k, v := range p.Satisfaction {
			assert.LessOrEqual(t, v.(float64), 1.0, k)
		}
	}
}

func TestGenerator_NoQuestionnaireAtZeroProbability(t *testing.T) {
	g := NewGenerator(sim.IntakeConfig{Process: ProcessFixed, Interval: 1}, rand.New(rand.NewSource(5)))
	for _, p := range collect(g, 20) {
		assert.Nil(t, p.Satisfaction)
	}
}

func TestGenerator_NoSampler_NoArrivals(t *testing.T) {
	g := NewGenerator(sim.IntakeConfig{}, rand.New(rand.NewSource(1)))
	assert.Empty(t, collect(g, 100))
}

func TestGenerator_DrivesClinicRun(t *testing.T) {
	// GIVEN a default clinic fed by the generator on its intake stream
	cfg := sim.DefaultConfig()
	cfg.Lifecycle.AbandonProbability = 0.01
	c, err := sim.NewClinic(cfg)
	require.NoError(t, err)
	g := NewGenerator(cfg.Intake, c.RNG().ForSubsystem(sim.SubsystemIntake))

	// WHEN it runs
	c.Run(200, g)

	// THEN every generated patient was admitted and accounted for
	m := c.Metrics
	assert.Equal(t, g.Generated(), m.Admitted)
	assert.Equal(t, m.Admitted, m.Treated+m.Abandoned+len(c.Live()))
	assert.Greater(t, m.Treated, 0)
	assert.NoError(t, c.CheckInvariants())
}
