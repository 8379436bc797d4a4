package fuzzy

import (
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	e, err := NewEngine(opts)
	require.NoError(t, err)
	return e
}

func TestUniverse_Resolutions(t *testing.T) {
	tests := []struct {
		res  Resolution
		want int
	}{
		{"", 11},
		{ResolutionBase, 11},
		{ResolutionFine, 101},
	}
	for _, tt := range tests {
		t.Run(string(tt.res), func(t *testing.T) {
			u, err := Universe(tt.res)
			require.NoError(t, err)
			assert.Len(t, u, tt.want)
			assert.Equal(t, 0.0, u[0])
			assert.Equal(t, 10.0, u[len(u)-1])
		})
	}
}

func TestUniverse_UnknownResolution_ReturnsError(t *testing.T) {
	_, err := Universe("coarse")
	assert.True(t, errors.Is(err, ErrUnknownResolution), "got %v", err)
}

func TestNewEngine_InvalidScale_ReturnsError(t *testing.T) {
	_, err := NewEngine(Options{OutputScale: 5})
	assert.True(t, errors.Is(err, ErrInvalidScale), "got %v", err)
}

func TestNewEngine_Defaults(t *testing.T) {
	e := newTestEngine(t, Options{})
	assert.Equal(t, 10, e.Options().OutputScale)
	assert.Equal(t, 11, e.UniverseSize())
}

func TestDefaultRules_ThirtyRulesInThreeTiers(t *testing.T) {
	// GIVEN the fixed rule base
	tiers := map[string]int{}
	for _, r := range DefaultRules {
		tiers[r.Then]++
		assert.GreaterOrEqual(t, len(r.If), 1)
		assert.LessOrEqual(t, len(r.If), 3)
	}

	// THEN 30 rules split 10/10/10 and every clause references a known term
	assert.Len(t, DefaultRules, 30)
	assert.Equal(t, map[string]int{High: 10, Medium: 10, Low: 10}, tiers)
	assert.NoError(t, validateRules(DefaultRules))
}

func TestValidateRules_UnknownTerm_ReturnsError(t *testing.T) {
	bad := []Rule{all(High, is(Communication, "excellent"))}
	assert.Error(t, validateRules(bad))
	assert.Error(t, validateRules([]Rule{{Op: And, Then: High}}))
}

func TestInfer_Monotonicity_CommunicationAndStaff(t *testing.T) {
	for _, res := range []Resolution{ResolutionBase, ResolutionFine} {
		t.Run(string(res), func(t *testing.T) {
			// GIVEN an engine and two vectors differing only in communication and staff competence
			e := newTestEngine(t, Options{Resolution: res})

			// WHEN both are inferred with the remaining criteria at their neutral default
			low := e.Infer(Vector{Communication: 1, StaffCompetence: 1})
			high := e.Infer(Vector{Communication: 9, StaffCompetence: 9})

			// THEN the better-rated visit scores higher
			assert.Less(t, low, high)
		})
	}
}

func TestInfer_Extremes_LandInExpectedBands(t *testing.T) {
	e := newTestEngine(t, Options{})
	worst, best := Vector{}, Vector{}
	for _, in := range Inputs {
		worst[in] = 0
		best[in] = 10
	}
	// Cost is inverted: cheap is good.
	worst[Cost] = 10
	best[Cost] = 0

	lo := e.Infer(worst)
	hi := e.Infer(best)

	assert.Less(t, lo, 3.0)
	assert.Greater(t, hi, 7.0)
}

func TestInfer_Deterministic_BitIdentical(t *testing.T) {
	// GIVEN one engine and one input
	e := newTestEngine(t, Options{Resolution: ResolutionFine})
	v := Vector{Communication: 7.3, Outcome: 6.1, Cost: 2.2, Reception: 4.4}

	// WHEN inferred twice
	a := e.Infer(v)
	b := e.Infer(v)

	// THEN the results are bit-identical
	assert.Equal(t, math.Float64bits(a), math.Float64bits(b))
}

func TestInfer_OutOfRangeInputs_Clamped(t *testing.T) {
	e := newTestEngine(t, Options{})
	assert.Equal(t, e.Infer(Vector{Communication: 10}), e.Infer(Vector{Communication: 42}))
	assert.Equal(t, e.Infer(Vector{Communication: 0}), e.Infer(Vector{Communication: -3}))
}

func TestInfer_ScoreWithinUniverse(t *testing.T) {
	e := newTestEngine(t, Options{Resolution: ResolutionFine})
	for x := 0.0; x <= 10; x += 0.5 {
		v := Vector{}
		for _, in := range Inputs {
			v[in] = x
		}
		s := e.Infer(v)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 10.0)
	}
}

func TestInfer_ConcurrentUse_SameResult(t *testing.T) {
	// GIVEN a shared engine
	e := newTestEngine(t, Options{})
	v := Vector{Communication: 8, StaffCompetence: 6, Outcome: 7}
	want := e.Infer(v)

	// WHEN inferred from many goroutines
	var wg sync.WaitGroup
	results := make([]float64, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.Infer(v)
		}(i)
	}
	wg.Wait()

	// THEN every goroutine sees the same score
	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestEvaluate_UnitOutputScale_DividesByTen(t *testing.T) {
	// GIVEN two engines differing only in output scale
	ten := newTestEngine(t, Options{OutputScale: 10})
	one := newTestEngine(t, Options{OutputScale: 1})
	p := Payload{"ci": 8, "po": 7, "sc": 9, "patient_id": 1001}

	// WHEN the same payload is evaluated
	r10, err := ten.Evaluate(p)
	require.NoError(t, err)
	r1, err := one.Evaluate(p)
	require.NoError(t, err)

	// THEN the unit-scale score is the 0–10 score divided by 10 and round-trips
	assert.Equal(t, 10, r10.Scale)
	assert.Equal(t, 1, r1.Scale)
	assert.InDelta(t, r10.Score/10, r1.Score, 1e-12)
	assert.InDelta(t, r10.Score, r1.Score*10, 1e-9)
	assert.InDelta(t, r10.Score, r1.OnTenScale(), 1e-9)
	assert.LessOrEqual(t, r1.Score, 1.0)
	require.NotNil(t, r1.PatientID)
	assert.Equal(t, 1001, *r1.PatientID)
}

func TestEvaluate_NilPayload_ReturnsError(t *testing.T) {
	e := newTestEngine(t, Options{})
	_, err := e.Evaluate(nil)
	assert.ErrorIs(t, err, ErrNilPayload)
}

func TestEvaluate_AliasesAndCanonicalNamesAgree(t *testing.T) {
	e := newTestEngine(t, Options{})
	byAlias, err := e.Evaluate(Payload{"ci": 8, "sc": 7, "po": 9})
	require.NoError(t, err)
	byName, err := e.Evaluate(Payload{"communication": 8, "staff_competence": 7, "outcome": 9})
	require.NoError(t, err)
	byLabel, err := e.Evaluate(Payload{"Communication and Information": 8, "Staff competence": 7, "Perceived Treatment Outcome": 9})
	require.NoError(t, err)

	assert.Equal(t, byName.Score, byAlias.Score)
	assert.Equal(t, byName.Score, byLabel.Score)
	assert.Nil(t, byName.PatientID)
}

func TestEvaluate_UnitRescale_TogglesInterpretation(t *testing.T) {
	// GIVEN a payload on the unit scale
	p := Payload{"ci": 0.8, "sc": 0.9}

	// WHEN evaluated with and without rescaling
	rescaling := newTestEngine(t, Options{})
	literal := newTestEngine(t, Options{DisableUnitRescale: true})
	a, err := rescaling.Evaluate(p)
	require.NoError(t, err)
	b, err := literal.Evaluate(p)
	require.NoError(t, err)

	// THEN rescaling matches the 0–10 payload and the literal reading does not
	want := rescaling.Infer(Vector{Communication: 8, StaffCompetence: 9})
	assert.InDelta(t, want, a.Score, 1e-12)
	assert.Less(t, b.Score, a.Score)
}

func TestPayload_Vector_DropsJunk(t *testing.T) {
	p := Payload{
		"ci":         "7",
		"ra":         json.Number("6"),
		"sc":         true,
		"ei":         "lots",
		"nonsense":   9,
		"po":         math.NaN(),
		"cb":         int64(15),
		"patient_id": 3,
	}
	v := p.Vector(true)

	assert.Equal(t, Vector{Communication: 7, Reception: 6, Cost: 10}, v)
}

func TestPayload_PatientID(t *testing.T) {
	tests := []struct {
		name string
		p    Payload
		want *int
	}{
		{"absent", Payload{"ci": 1}, nil},
		{"int", Payload{"patient_id": 7}, intPtr(7)},
		{"float integral", Payload{"patient_id": 7.0}, intPtr(7)},
		{"string", Payload{"patient_id": "12"}, intPtr(12)},
		{"fractional", Payload{"patient_id": 7.5}, nil},
		{"junk", Payload{"patient_id": "abc"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.PatientID())
		})
	}
}

func TestLookup(t *testing.T) {
	v, ok := Lookup("  RR ")
	assert.True(t, ok)
	assert.Equal(t, ReturnIntention, v)

	v, ok = Lookup("Cost and Billing")
	assert.True(t, ok)
	assert.Equal(t, Cost, v)

	for _, key := range []string{"staffCompetence", "Staff Competence", "staff-competence", "STAFF_COMPETENCE"} {
		v, ok = Lookup(key)
		assert.True(t, ok, key)
		assert.Equal(t, StaffCompetence, v, key)
	}

	_, ok = Lookup("overall satisfaction")
	assert.False(t, ok)
}

func intPtr(v int) *int { return &v }
