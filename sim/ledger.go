package sim

import (
	"sort"
	"sync"
)

// Resource names a slot-counted capacity in the Ledger.
type Resource string

const (
	ResourceDoctors Resource = "doctors"
	ResourceBeds    Resource = "beds"
	ResourceRooms   Resource = "rooms"
)

// Ledger tracks slot counts for shared resources and stock per drug.
//
// Invariants:
//   - every slot and stock value is >= 0
//   - Acquired(r) - Released(r) == Held(r) for every resource
//
// All mutation goes through TryAcquire, Release and Consume, which run under a
// single mutex so the ledger stays consistent even if stages are ever run in parallel.
type Ledger struct {
	mu        sync.Mutex
	slots     map[Resource]int
	acquired  map[Resource]int64
	released  map[Resource]int64
	stock     map[string]int
	inventory bool // false means no drug inventory is configured at all
}

// NewLedger creates a Ledger. A nil slot pointer leaves the resource untracked,
// which every stage treats as zero capacity. A nil stock map disables inventory.
func NewLedger(doctors, beds, rooms *int, stock map[string]int) *Ledger {
	l := &Ledger{
		slots:    make(map[Resource]int),
		acquired: make(map[Resource]int64),
		released: make(map[Resource]int64),
		stock:    make(map[string]int),
	}
	for r, n := range map[Resource]*int{ResourceDoctors: doctors, ResourceBeds: beds, ResourceRooms: rooms} {
		if n != nil {
			l.slots[r] = max(0, *n)
		}
	}
	if stock != nil {
		l.inventory = true
		for drug, qty := range stock {
			l.stock[drug] = max(0, qty)
		}
	}
	return l
}

// Tracks reports whether the resource was configured.
func (l *Ledger) Tracks(r Resource) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.slots[r]
	return ok
}

// Available returns the free slot count; untracked resources report 0.
func (l *Ledger) Available(r Resource) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.slots[r]
}

// TryAcquire decrements the slot by amount if at least amount is free.
// Leaves state unchanged and returns false otherwise, including for untracked
// resources and non-positive amounts. Never panics.
func (l *Ledger) TryAcquire(r Resource, amount int) bool {
	if amount <= 0 {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	free, ok := l.slots[r]
	if !ok || free < amount {
		return false
	}
	l.slots[r] = free - amount
	l.acquired[r] += int64(amount)
	return true
}

// Release returns amount slots to the resource. Non-positive amounts and
// untracked resources are ignored.
func (l *Ledger) Release(r Resource, amount int) {
	if amount <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.slots[r]; !ok {
		return
	}
	l.slots[r] += amount
	l.released[r] += int64(amount)
}

// Acquired returns the cumulative amount acquired for the resource.
func (l *Ledger) Acquired(r Resource) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.acquired[r]
}

// Released returns the cumulative amount released for the resource.
func (l *Ledger) Released(r Resource) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.released[r]
}

// Held returns the slots currently held by in-progress transactions.
func (l *Ledger) Held(r Resource) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.acquired[r] - l.released[r]
}

// HasInventory reports whether a drug inventory was configured.
func (l *Ledger) HasInventory() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inventory
}

// StockOf returns the current stock of a drug; unknown drugs report 0.
func (l *Ledger) StockOf(drug string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stock[drug]
}

// Consume removes qty units of drug when enough stock exists.
// On failure stock is left untouched and have reports what was on the shelf.
func (l *Ledger) Consume(drug string, qty int) (ok bool, have int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	have = l.stock[drug]
	if !l.inventory || qty <= 0 || have < qty {
		return false, have
	}
	l.stock[drug] = have - qty
	return true, have
}

// Drugs returns the inventory's drug names in sorted order.
func (l *Ledger) Drugs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.stock))
	for d := range l.stock {
		names = append(names, d)
	}
	sort.Strings(names)
	return names
}

// LedgerSnapshot is a point-in-time copy of the ledger counters.
type LedgerSnapshot struct {
	Slots map[Resource]int
	Stock map[string]int
}

// Snapshot copies the current slot and stock values.
func (l *Ledger) Snapshot() LedgerSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := LedgerSnapshot{
		Slots: make(map[Resource]int, len(l.slots)),
		Stock: make(map[string]int, len(l.stock)),
	}
	for r, n := range l.slots {
		s.Slots[r] = n
	}
	for d, n := range l.stock {
		s.Stock[d] = n
	}
	return s
}
