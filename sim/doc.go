// Package sim provides the tick-driven clinic simulation engine.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - patient.go: Patient lifecycle (waiting → oriented → admitted → in-consultation → treated | abandoned)
//   - ledger.go: slot counts and drug stock, mutated only through TryAcquire/Release/Consume
//   - policy.go: the coordination stages and what each does in one activation
//   - clinic.go: the tick loop, activation shuffling and patient unit updates
//
// # Architecture
//
// The sim package owns the shared state (ledger, queue network, live patients);
// sub-packages hold the pieces that do not depend on it:
//   - sim/fuzzy/: the satisfaction model and Mamdani inference engine
//   - sim/trace/: structured event records and run summaries
//   - sim/workload/: the intake collaborator generating patient arrivals
//
// # Contention
//
// Within a tick every policy and every live patient is activated exactly once
// in an order drawn from the scheduler RNG subsystem. State is not
// double-buffered: a slot taken by one activation is gone for the rest of the
// tick. The only arbitration point is Ledger.TryAcquire.
package sim
