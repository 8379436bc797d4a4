// Implements the PatientQueue, the FIFO that connects two coordination stages.
// Patients are enqueued at the back and leave from the front.

package sim

import (
	"fmt"
	"strings"
)

// PatientQueue represents a FIFO queue of patients waiting for the next stage.
// A patient is owned by at most one queue at any instant: Enqueue panics when
// handed a patient that another queue still holds.
type PatientQueue struct {
	name  string
	queue []*Patient // FIFO queue of patients
}

// NewPatientQueue creates an empty named queue.
func NewPatientQueue(name string) *PatientQueue {
	return &PatientQueue{name: name}
}

// Name returns the queue's stage name.
func (pq *PatientQueue) Name() string {
	return pq.name
}

// Enqueue adds a patient to the back of the queue and transfers ownership.
func (pq *PatientQueue) Enqueue(p *Patient) {
	pq.claim(p, "Enqueue")
	pq.queue = append(pq.queue, p)
}

// PrependFront inserts a patient at the front of the queue.
// Used by the consultation retry path: a patient that could not get a doctor
// goes back to the head so it keeps its place for the next tick.
func (pq *PatientQueue) PrependFront(p *Patient) {
	pq.claim(p, "PrependFront")
	pq.queue = append([]*Patient{p}, pq.queue...)
}

func (pq *PatientQueue) claim(p *Patient, op string) {
	if p == nil {
		panic(op + ": patient must not be nil")
	}
	if p.owner != nil {
		panic(fmt.Sprintf("%s: patient %d already owned by queue %q", op, p.ID, p.owner.name))
	}
	p.owner = pq
}

// Dequeue removes the patient at the front of the queue and releases ownership.
// Returns nil if the queue is empty.
func (pq *PatientQueue) Dequeue() *Patient {
	if len(pq.queue) == 0 {
		return nil
	}
	p := pq.queue[0]
	pq.queue[0] = nil
	pq.queue = pq.queue[1:]
	p.owner = nil
	return p
}

// Remove detaches a specific patient wherever it sits in the queue.
// Returns false if the patient is not held by this queue.
func (pq *PatientQueue) Remove(p *Patient) bool {
	if p == nil || p.owner != pq {
		return false
	}
	for i, q := range pq.queue {
		if q == p {
			pq.queue = append(pq.queue[:i], pq.queue[i+1:]...)
			p.owner = nil
			return true
		}
	}
	return false
}

// Len returns the number of patients in the queue.
func (pq *PatientQueue) Len() int {
	return len(pq.queue)
}

// Peek returns the patient at the front of the queue without removing it.
// Returns nil if the queue is empty.
func (pq *PatientQueue) Peek() *Patient {
	if len(pq.queue) == 0 {
		return nil
	}
	return pq.queue[0]
}

// Items returns the queue contents for iteration.
// The returned slice is the queue's internal storage: callers MUST NOT append to or reslice it.
func (pq *PatientQueue) Items() []*Patient {
	return pq.queue
}

func (pq *PatientQueue) String() string {
	var sb strings.Builder
	sb.WriteString(pq.name)
	sb.WriteString("[")
	for i, p := range pq.queue {
		sb.WriteString(fmt.Sprint(p.ID))
		if i < len(pq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Backlog is an unordered-by-priority FIFO collection that a stage drains in bulk
// (lab orders, prescriptions) or one item at a time (satisfaction payloads).
type Backlog[T any] struct {
	items []T
}

// Push appends an item to the back of the backlog.
func (b *Backlog[T]) Push(item T) {
	b.items = append(b.items, item)
}

// Pop removes and returns the front item. ok is false when the backlog is empty.
func (b *Backlog[T]) Pop() (item T, ok bool) {
	if len(b.items) == 0 {
		return item, false
	}
	item = b.items[0]
	var zero T
	b.items[0] = zero
	b.items = b.items[1:]
	return item, true
}

// Drain removes and returns every pending item in FIFO order.
func (b *Backlog[T]) Drain() []T {
	out := b.items
	b.items = nil
	return out
}

// Len returns the number of pending items.
func (b *Backlog[T]) Len() int {
	return len(b.items)
}
