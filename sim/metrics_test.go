package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clinicsim/clinicsim/sim/trace"
)

func TestMetrics_Observe_CountsByKind(t *testing.T) {
	// GIVEN one event of each counted kind
	m := NewMetrics()
	m.Observe([]trace.Event{
		{Kind: trace.KindTransition, To: QueueInpatient},
		{Kind: trace.KindTransition, To: QueueConsultation},
		{Kind: trace.KindRetry},
		{Kind: trace.KindDispense},
		{Kind: trace.KindShortage},
		{Kind: trace.KindShortage},
		{Kind: trace.KindLabResult},
		{Kind: trace.KindReprioritize},
		{Kind: trace.KindSatisfaction, Score: 6.5},
	})

	// THEN each counter reflects its events
	assert.Equal(t, 1, m.InpatientRoute)
	assert.Equal(t, 1, m.Retries)
	assert.Equal(t, 1, m.Dispensed)
	assert.Equal(t, 2, m.Shortages)
	assert.Equal(t, 1, m.LabResults)
	assert.Equal(t, 1, m.Reprioritized)
	assert.Equal(t, 1, m.Scored)
	assert.Equal(t, []float64{6.5}, m.Scores)
}

func TestMetrics_Finish_MeanTreatedWait(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, 0.0, m.MeanTreatedWait())

	for i, w := range []float64{2, 4, 9} {
		p := NewPatient(i, AcuityConsultation)
		p.State = StateTreated
		p.WaitTicks = w
		m.Finish(p)
	}
	gone := NewPatient(9, AcuityFollowUp)
	gone.State = StateAbandoned
	gone.WaitTicks = 100
	m.Finish(gone)

	assert.Equal(t, 3, m.Treated)
	assert.Equal(t, 1, m.Abandoned)
	assert.InDelta(t, 5.0, m.MeanTreatedWait(), 1e-12)
}

func TestMetrics_SetLedger_CopiesFinalState(t *testing.T) {
	m := NewMetrics()
	l := NewLedger(intPtr(2), nil, nil, map[string]int{DrugA: 3})
	m.SetLedger(l)
	l.TryAcquire(ResourceDoctors, 1)

	assert.Equal(t, 2, m.FinalSlots[ResourceDoctors])
	assert.Equal(t, 3, m.FinalStock[DrugA])
}
