package workload

import (
	"math"
	"math/rand"

	"github.com/clinicsim/clinicsim/sim"
	"github.com/clinicsim/clinicsim/sim/fuzzy"
)

// FirstPatientID is the id given to the first generated patient; later
// patients get consecutive ids.
const FirstPatientID = 1000

// questionnaireKeys are the short aliases used for synthesized payloads.
var questionnaireKeys = []string{"ci", "ra", "sc", "ei", "po", "cb", "pi", "rr"}

// Generator is the intake collaborator: it turns an arrival process into
// patients with a uniform acuity and, with some probability, a questionnaire.
// Deterministic given the same config and rng seed.
type Generator struct {
	// UnitScale emits answers on 0–1, which the engine rescales to 0–10 by
	// default. Clear it when the engine reads values literally; answers are
	// then emitted on 0–10.
	UnitScale bool

	sampler       ArrivalSampler // nil means no arrivals
	rng           *rand.Rand
	satisfactionP float64
	nextID        int
	nextArrival   float64 // time of the next pending arrival, in ticks
}

// NewGenerator builds a generator from the intake section of a clinic config.
// rng should be the clinic's intake subsystem so arrivals never disturb the
// activation order.
func NewGenerator(cfg sim.IntakeConfig, rng *rand.Rand) *Generator {
	g := &Generator{
		sampler:       NewArrivalSampler(cfg.Process, cfg.Rate, cfg.Interval, cfg.CV),
		rng:           rng,
		satisfactionP: cfg.SatisfactionProbability,
		nextID:        FirstPatientID,
		UnitScale:     true,
	}
	if g.sampler != nil {
		g.nextArrival = g.sampler.SampleIAT(rng)
	}
	return g
}

// Arrivals returns the patients whose arrival time falls at or before tick,
// in arrival order. Calls must use non-decreasing ticks.
func (g *Generator) Arrivals(tick int64) []*sim.Patient {
	if g.sampler == nil {
		return nil
	}
	var out []*sim.Patient
	for g.nextArrival <= float64(tick) {
		out = append(out, g.patient())
		g.nextArrival += g.sampler.SampleIAT(g.rng)
	}
	return out
}

func (g *Generator) patient() *sim.Patient {
	p := sim.NewPatient(g.nextID, sim.Acuities[g.rng.Intn(len(sim.Acuities))])
	g.nextID++
	if g.satisfactionP > 0 && g.rng.Float64() < g.satisfactionP {
		p.Satisfaction = g.questionnaire()
	}
	return p
}

// questionnaire draws every criterion uniformly, at 0.01 on the unit scale or
// 0.1 on the 0–10 scale. A payload never mixes the two.
func (g *Generator) questionnaire() fuzzy.Payload {
	payload := make(fuzzy.Payload, len(questionnaireKeys))
	for _, k := range questionnaireKeys {
		x := math.Round(g.rng.Float64() * 100)
		if g.UnitScale {
			payload[k] = x / 100
		} else {
			payload[k] = x / 10
		}
	}
	return payload
}

// Generated returns how many patients have been produced so far.
func (g *Generator) Generated() int {
	return g.nextID - FirstPatientID
}
