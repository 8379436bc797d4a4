package fuzzy

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownResolution is returned for a resolution other than base or fine.
	ErrUnknownResolution = errors.New("unknown universe resolution")
	// ErrInvalidScale is returned for an output scale other than 1 or 10.
	ErrInvalidScale = errors.New("output scale must be 1 or 10")
	// ErrNilPayload is returned when Evaluate is handed a nil payload.
	ErrNilPayload = errors.New("nil satisfaction payload")
)

// NeutralInput is the value assumed for a criterion the caller did not supply.
const NeutralInput = 5.0

// Options configures an Engine. The zero value is the base universe, a 0–10
// output and automatic rescaling of [0,1] inputs.
type Options struct {
	Resolution         Resolution
	OutputScale        int  // 1 or 10; 0 means 10
	DisableUnitRescale bool // keep [0,1] inputs as-is instead of multiplying by 10
}

// Engine evaluates the satisfaction model. It is immutable after NewEngine.
type Engine struct {
	opts     Options
	universe []float64
	rules    []Rule
	// output[term][i] is the membership of universe[i] in the output term.
	output map[string][]float64
}

// NewEngine builds the universe and precomputes the output term curves.
func NewEngine(opts Options) (*Engine, error) {
	if opts.OutputScale == 0 {
		opts.OutputScale = 10
	}
	if opts.OutputScale != 1 && opts.OutputScale != 10 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidScale, opts.OutputScale)
	}
	u, err := Universe(opts.Resolution)
	if err != nil {
		return nil, err
	}
	if err := validateRules(DefaultRules); err != nil {
		return nil, fmt.Errorf("building rule base: %w", err)
	}
	e := &Engine{
		opts:     opts,
		universe: u,
		rules:    DefaultRules,
		output:   make(map[string][]float64, len(outputTerms)),
	}
	for _, t := range outputTerms {
		curve := make([]float64, len(u))
		for i, x := range u {
			curve[i] = t.MF.Degree(x)
		}
		e.output[t.Name] = curve
	}
	return e, nil
}

// Options returns the options the engine was built with (defaults applied).
func (e *Engine) Options() Options {
	return e.opts
}

// UniverseSize returns the number of discretization points.
func (e *Engine) UniverseSize() int {
	return len(e.universe)
}

// Vector holds crisp criterion values on the 0–10 scale.
type Vector map[Variable]float64

func clamp10(x float64) float64 {
	return min(10, max(0, x))
}

// Infer returns the crisp satisfaction score in [0,10] for the vector.
// Missing criteria take NeutralInput; values are clamped to [0,10].
// Pure: identical input yields bit-identical output.
func (e *Engine) Infer(v Vector) float64 {
	crisp := make(map[Variable]float64, len(Inputs))
	for _, in := range Inputs {
		x, ok := v[in]
		if !ok {
			x = NeutralInput
		}
		crisp[in] = clamp10(x)
	}

	// firing strength per output term, max-combined across rules
	strength := make(map[string]float64, len(outputTerms))
	for _, r := range e.rules {
		s := e.fire(r, crisp)
		if s > strength[r.Then] {
			strength[r.Then] = s
		}
	}

	// min-implication then max-aggregation, term by term in fixed order
	var num, den float64
	for i, x := range e.universe {
		var mu float64
		for _, t := range outputTerms {
			mu = max(mu, min(strength[t.Name], e.output[t.Name][i]))
		}
		num += x * mu
		den += mu
	}
	if den == 0 {
		return NeutralInput
	}
	return num / den
}

func (e *Engine) fire(r Rule, crisp map[Variable]float64) float64 {
	var s float64
	for i, c := range r.If {
		mf, _ := findTerm(inputTerms[c.Var], c.Term)
		d := mf.Degree(crisp[c.Var])
		switch {
		case i == 0:
			s = d
		case r.Op == And:
			s = min(s, d)
		default:
			s = max(s, d)
		}
	}
	return s
}

// SatisfactionRecord is one scored questionnaire. Never mutated after creation.
type SatisfactionRecord struct {
	PatientID *int
	Score     float64
	Scale     int // 1 or 10
}

// OnTenScale returns the score expressed on the 0–10 scale.
func (r SatisfactionRecord) OnTenScale() float64 {
	if r.Scale == 1 {
		return r.Score * 10
	}
	return r.Score
}

// Evaluate normalizes a questionnaire payload, infers the score and reports it
// on the configured output scale.
func (e *Engine) Evaluate(p Payload) (SatisfactionRecord, error) {
	if p == nil {
		return SatisfactionRecord{}, ErrNilPayload
	}
	score := e.Infer(p.Vector(!e.opts.DisableUnitRescale))
	if e.opts.OutputScale == 1 {
		score /= 10
	}
	return SatisfactionRecord{
		PatientID: p.PatientID(),
		Score:     score,
		Scale:     e.opts.OutputScale,
	}, nil
}
