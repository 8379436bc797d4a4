package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// Named random streams of a run. Each is seeded independently from the run
// seed, so drawing more from one never shifts another.
const (
	// SubsystemScheduler shuffles the activation list of every tick.
	SubsystemScheduler = "scheduler"
	// SubsystemLifecycle decides patient abandonment.
	SubsystemLifecycle = "lifecycle"
	// SubsystemIntake feeds arrivals, acuity and questionnaires. It is seeded
	// with the run seed itself so a plain rand.NewSource(seed) reproduces it.
	SubsystemIntake = "intake"
)

// Streams hands out one *rand.Rand per subsystem name, created on first use.
// Not safe for concurrent use; the tick loop is single-threaded.
type Streams struct {
	seed    int64
	streams map[string]*rand.Rand
}

// NewStreams creates the stream set for a run seed.
func NewStreams(seed int64) *Streams {
	return &Streams{seed: seed, streams: make(map[string]*rand.Rand, 3)}
}

// ForSubsystem returns the stream for name, always the same instance.
func (s *Streams) ForSubsystem(name string) *rand.Rand {
	if r, ok := s.streams[name]; ok {
		return r
	}
	r := rand.New(rand.NewSource(s.derive(name)))
	s.streams[name] = r
	return r
}

// Seed is the run seed the streams were derived from.
func (s *Streams) Seed() int64 { return s.seed }

func (s *Streams) derive(name string) int64 {
	if name == SubsystemIntake {
		return s.seed
	}
	h := fnv.New64a()
	h.Write([]byte(name))
	return s.seed ^ int64(h.Sum64())
}

// pairHash hashes an (actor id, patient id) pair. Used where an outcome must be
// reproducible for the same pair without consuming any stream.
func pairHash(actorID, patientID int) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%d", actorID, patientID)
	return h.Sum64()
}
