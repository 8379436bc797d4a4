package trace

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ScoreStats describes a set of satisfaction scores.
type ScoreStats struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalEvents     int
	KindCounts      map[EventKind]int
	ShortagesByDrug map[string]int // drug → number of shortage events
	Reprioritized   int
	Satisfaction    ScoreStats
}

// Summarize computes aggregate statistics from a SimulationTrace and the
// satisfaction scores produced during the run.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace, scores []float64) *TraceSummary {
	summary := &TraceSummary{
		KindCounts:      make(map[EventKind]int),
		ShortagesByDrug: make(map[string]int),
		Satisfaction:    describeScores(scores),
	}
	if st == nil {
		return summary
	}

	summary.TotalEvents = len(st.Events)
	for _, e := range st.Events {
		summary.KindCounts[e.Kind]++
		if e.Kind == KindShortage {
			summary.ShortagesByDrug[e.Drug]++
		}
	}
	summary.Reprioritized = summary.KindCounts[KindReprioritize]

	return summary
}

func describeScores(scores []float64) ScoreStats {
	if len(scores) == 0 {
		return ScoreStats{}
	}
	s := ScoreStats{
		Count: len(scores),
		Min:   floats.Min(scores),
		Max:   floats.Max(scores),
	}
	if len(scores) == 1 {
		s.Mean = scores[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(scores, nil)
	return s
}
