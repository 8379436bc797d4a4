// Tracks run-wide clinic metrics: patient throughput, wait, contention and
// pharmacy outcomes.

package sim

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/clinicsim/clinicsim/sim/trace"
)

// Metrics aggregates statistics about a run for final reporting.
type Metrics struct {
	Admitted       int // patients placed in the security queue
	Treated        int // patients discharged by the records stage
	Abandoned      int // patients that left before treatment
	InpatientRoute int // emergencies that got a bed
	Retries        int // consultations pushed back for lack of a doctor
	Dispensed      int
	Shortages      int
	LabResults     int
	Reprioritized  int
	Scored         int // satisfaction records produced

	TreatedWaits []float64 // WaitTicks of each treated patient
	Scores       []float64 // satisfaction scores as emitted

	FinalSlots map[Resource]int
	FinalStock map[string]int
}

// NewMetrics returns zeroed metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Observe folds one tick's events into the counters.
func (m *Metrics) Observe(events []trace.Event) {
	for _, e := range events {
		switch e.Kind {
		case trace.KindTransition:
			if e.To == QueueInpatient {
				m.InpatientRoute++
			}
		case trace.KindRetry:
			m.Retries++
		case trace.KindDispense:
			m.Dispensed++
		case trace.KindShortage:
			m.Shortages++
		case trace.KindLabResult:
			m.LabResults++
		case trace.KindReprioritize:
			m.Reprioritized++
		case trace.KindSatisfaction:
			m.Scored++
			m.Scores = append(m.Scores, e.Score)
		}
	}
}

// Finish records a patient that reached a terminal state.
func (m *Metrics) Finish(p *Patient) {
	switch p.State {
	case StateTreated:
		m.Treated++
		m.TreatedWaits = append(m.TreatedWaits, p.WaitTicks)
	case StateAbandoned:
		m.Abandoned++
	}
}

// SetLedger captures the final ledger state.
func (m *Metrics) SetLedger(l *Ledger) {
	snap := l.Snapshot()
	m.FinalSlots = snap.Slots
	m.FinalStock = snap.Stock
}

// MeanTreatedWait returns the mean wait of treated patients, 0 if none.
func (m *Metrics) MeanTreatedWait() float64 {
	if len(m.TreatedWaits) == 0 {
		return 0
	}
	return stat.Mean(m.TreatedWaits, nil)
}

// Print displays aggregated metrics at the end of the run.
func (m *Metrics) Print(ticks int64) {
	fmt.Println("=== Clinic Metrics ===")
	fmt.Printf("Ticks                : %d\n", ticks)
	fmt.Printf("Admitted Patients    : %d\n", m.Admitted)
	fmt.Printf("Treated Patients     : %d\n", m.Treated)
	fmt.Printf("Abandoned Patients   : %d\n", m.Abandoned)
	fmt.Printf("Inpatient Routes     : %d\n", m.InpatientRoute)
	fmt.Printf("Consultation Retries : %d\n", m.Retries)
	fmt.Printf("Dispensed / Shortage : %d / %d\n", m.Dispensed, m.Shortages)
	fmt.Printf("Lab Results          : %d\n", m.LabResults)
	fmt.Printf("Reprioritizations    : %d\n", m.Reprioritized)
	if m.Treated > 0 {
		fmt.Printf("Average Wait         : %.2f ticks\n", m.MeanTreatedWait())
	}
	if m.Scored > 0 {
		fmt.Printf("Average Satisfaction : %.3f (%d scored)\n", stat.Mean(m.Scores, nil), m.Scored)
	}
	if len(m.FinalSlots) > 0 {
		resources := make([]string, 0, len(m.FinalSlots))
		for r := range m.FinalSlots {
			resources = append(resources, string(r))
		}
		sort.Strings(resources)
		for _, r := range resources {
			fmt.Printf("Free %-15s : %d\n", r, m.FinalSlots[Resource(r)])
		}
	}
	if len(m.FinalStock) > 0 {
		drugs := make([]string, 0, len(m.FinalStock))
		for d := range m.FinalStock {
			drugs = append(drugs, d)
		}
		sort.Strings(drugs)
		for _, d := range drugs {
			fmt.Printf("Stock %-14s : %d\n", d, m.FinalStock[d])
		}
	}
}
