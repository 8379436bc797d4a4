package trace

import "github.com/google/uuid"

// TraceLevel controls the verbosity of event tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents captures every event emitted by every stage.
	TraceLevelEvents TraceLevel = "events"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelEvents: true,
	"":               true, // empty defaults to events
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects event records during a run.
// RunID distinguishes exported traces of separate runs.
type SimulationTrace struct {
	RunID  uuid.UUID
	Config TraceConfig
	Events []Event
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	if config.Level == "" {
		config.Level = TraceLevelEvents
	}
	return &SimulationTrace{
		RunID:  uuid.New(),
		Config: config,
		Events: make([]Event, 0),
	}
}

// Record appends events in order. A nil trace or TraceLevelNone drops them.
func (st *SimulationTrace) Record(events ...Event) {
	if st == nil || st.Config.Level == TraceLevelNone {
		return
	}
	st.Events = append(st.Events, events...)
}

// OfKind returns the recorded events of one kind, in recording order.
func (st *SimulationTrace) OfKind(kind EventKind) []Event {
	if st == nil {
		return nil
	}
	var out []Event
	for _, e := range st.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
