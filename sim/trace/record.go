// Package trace provides per-tick event recording for audit and run summaries.
// This package has no dependencies on sim/; it stores pure data types.
package trace

import "fmt"

// EventKind classifies a structured event emitted by a coordination stage.
type EventKind string

const (
	// KindTransition is a patient moving from one queue to another.
	KindTransition EventKind = "transition"
	// KindRetry is a consultation pushed back to the front of its queue.
	KindRetry EventKind = "retry"
	// KindShortage is a prescription that could not be served from stock.
	KindShortage EventKind = "shortage"
	// KindDispense is a prescription served from stock.
	KindDispense EventKind = "dispense"
	// KindLabResult is a completed lab order.
	KindLabResult EventKind = "lab-result"
	// KindReprioritize is an advisory room-to-doctor capacity decision.
	KindReprioritize EventKind = "reprioritize"
	// KindSatisfaction is a satisfaction score produced from a questionnaire.
	KindSatisfaction EventKind = "satisfaction"
	// KindAbandon is a patient leaving the network before treatment.
	KindAbandon EventKind = "abandon"
)

// Event is one structured record. Fields that do not apply to the kind are zero.
type Event struct {
	Tick      int64
	Kind      EventKind
	Policy    string // stage that emitted the event ("patient" for lifecycle updates)
	PatientID int    // 0 when not patient-scoped
	From      string // source queue or capacity
	To        string // destination queue or capacity
	Drug      string
	Need      int
	Have      int
	Score     float64
	Detail    string
}

func (e Event) String() string {
	switch e.Kind {
	case KindShortage:
		return fmt.Sprintf("[tick %06d] %s: shortage %s need=%d have=%d", e.Tick, e.Policy, e.Drug, e.Need, e.Have)
	case KindDispense:
		return fmt.Sprintf("[tick %06d] %s: dispensed %dx %s", e.Tick, e.Policy, e.Need, e.Drug)
	case KindSatisfaction:
		return fmt.Sprintf("[tick %06d] %s: patient %d score=%.3f", e.Tick, e.Policy, e.PatientID, e.Score)
	default:
		return fmt.Sprintf("[tick %06d] %s: %s patient %d %s -> %s %s", e.Tick, e.Policy, e.Kind, e.PatientID, e.From, e.To, e.Detail)
	}
}
