// sim/clinic.go

package sim

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/clinicsim/clinicsim/sim/fuzzy"
	"github.com/clinicsim/clinicsim/sim/trace"
)

// ErrDuplicatePatient is returned when admitting an id that is still live.
var ErrDuplicatePatient = errors.New("patient id already live")

// Intake supplies the patients arriving at a tick. Implementations own their
// randomness; the clinic never draws on their behalf.
type Intake interface {
	Arrivals(tick int64) []*Patient
}

// Clinic is the tick scheduler. It owns the ledger, the queue network and the
// live patient registry, and activates every policy and every live patient
// once per tick in a seeded random order.
type Clinic struct {
	Tick     int64
	Ledger   *Ledger
	Net      *Network
	Engine   *fuzzy.Engine
	Policies []Policy
	Trace    *trace.SimulationTrace
	Metrics  *Metrics

	// OnTick, when set, observes the clinic after every completed tick.
	OnTick func(c *Clinic, events []trace.Event)

	planningThreshold int
	abandonP          float64
	rng               *Streams
	order             *rand.Rand
	lifecycle         *rand.Rand

	patients []*Patient // live, in admission order
	live     map[int]*Patient
}

// NewClinic builds a clinic from cfg. The config is validated first.
func NewClinic(cfg Config) (*Clinic, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid clinic config: %w", err)
	}
	engine, err := fuzzy.NewEngine(cfg.Fuzzy.EngineOptions())
	if err != nil {
		return nil, fmt.Errorf("building satisfaction engine: %w", err)
	}
	rng := NewStreams(cfg.Seed)
	c := &Clinic{
		Ledger:            NewLedger(cfg.Resources.Doctors, cfg.Resources.Beds, cfg.Resources.Rooms, cfg.Drugs),
		Net:               NewNetwork(cfg.Stages.NetworkOptions()),
		Engine:            engine,
		Policies:          NewPolicies(cfg.Stages.ConsultationDesks),
		Trace:             trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(cfg.Trace)}),
		Metrics:           NewMetrics(),
		planningThreshold: cfg.Planning.QueueThreshold,
		abandonP:          cfg.Lifecycle.AbandonProbability,
		rng:               rng,
		order:             rng.ForSubsystem(SubsystemScheduler),
		lifecycle:         rng.ForSubsystem(SubsystemLifecycle),
		live:              make(map[int]*Patient),
	}
	if !c.Ledger.HasInventory() {
		// Nothing would ever dispense them.
		c.Net.Prescriptions = nil
	}
	return c, nil
}

// NewPolicies returns one policy of every kind, with desks consultation
// policies (at least one). IDs are assigned from 1 in pipeline order.
func NewPolicies(desks int) []Policy {
	desks = max(1, desks)
	kinds := []PolicyKind{PolicySecurity, PolicyAdmission, PolicyTriage}
	for range desks {
		kinds = append(kinds, PolicyConsultation)
	}
	kinds = append(kinds, PolicyLab, PolicyPharmacy, PolicyPlanning, PolicyRecords, PolicySatisfaction)
	policies := make([]Policy, len(kinds))
	for i, k := range kinds {
		policies[i] = Policy{ID: i + 1, Kind: k}
	}
	return policies
}

// RNG returns the run's partitioned random source, so collaborators such as
// the intake generator can draw from their own subsystem.
func (c *Clinic) RNG() *Streams {
	return c.rng
}

// Admit registers a new patient and places it in the security queue.
func (c *Clinic) Admit(id int, acuity Acuity) (*Patient, error) {
	p := NewPatient(id, acuity)
	if err := c.AdmitPatient(p); err != nil {
		return nil, err
	}
	return p, nil
}

// AdmitPatient places an intake-built patient in the security queue. The
// patient must not already be live or owned by a queue.
func (c *Clinic) AdmitPatient(p *Patient) error {
	if p == nil {
		return errors.New("admitting nil patient")
	}
	if _, dup := c.live[p.ID]; dup {
		return fmt.Errorf("%w: %d", ErrDuplicatePatient, p.ID)
	}
	if q := p.Queue(); q != nil {
		return fmt.Errorf("admitting patient %d: already queued in %q", p.ID, q.Name())
	}
	if c.Net.Security == nil {
		return errors.New("no security queue configured")
	}
	p.State = StateWaiting
	p.AdmittedTick = c.Tick
	p.WaitTicks = 0
	p.FinishedTick = 0
	c.Net.Security.Enqueue(p)
	c.patients = append(c.patients, p)
	c.live[p.ID] = p
	c.Metrics.Admitted++
	return nil
}

// SubmitSatisfaction queues a questionnaire for the satisfaction stage
// directly, without a patient transiting the network.
func (c *Clinic) SubmitSatisfaction(p fuzzy.Payload) error {
	if p == nil {
		return fuzzy.ErrNilPayload
	}
	if c.Net.SatisfactionInputs == nil {
		return errors.New("no satisfaction input queue configured")
	}
	c.Net.SatisfactionInputs.Push(p)
	return nil
}

// Live returns the live patients in admission order.
func (c *Clinic) Live() []*Patient {
	return c.patients
}

// activation is one slot of the per-tick order: a policy or a patient unit.
type activation struct {
	policy  *Policy
	patient *Patient
}

// Advance runs exactly one tick and returns the events it produced, in
// activation order. Every mutation is visible to later activations of the
// same tick.
func (c *Clinic) Advance() []trace.Event {
	c.Tick++
	st := &State{
		Tick:              c.Tick,
		Net:               c.Net,
		Ledger:            c.Ledger,
		Engine:            c.Engine,
		PlanningThreshold: c.planningThreshold,
	}

	acts := make([]activation, 0, len(c.Policies)+len(c.patients))
	for i := range c.Policies {
		acts = append(acts, activation{policy: &c.Policies[i]})
	}
	for _, p := range c.patients {
		acts = append(acts, activation{patient: p})
	}
	c.order.Shuffle(len(acts), func(i, j int) { acts[i], acts[j] = acts[j], acts[i] })

	var events []trace.Event
	for _, a := range acts {
		if a.policy != nil {
			events = append(events, a.policy.Transition(st)...)
			continue
		}
		if ev, ok := c.updatePatient(a.patient); ok {
			events = append(events, ev)
		}
	}

	c.prune()
	c.Metrics.Observe(events)
	c.Trace.Record(events...)
	if c.OnTick != nil {
		c.OnTick(c, events)
	}
	return events
}

// updatePatient is the patient unit's own step: it accrues a tick of wait and
// may abandon the clinic. An abandoning inpatient gives its bed back.
func (c *Clinic) updatePatient(p *Patient) (trace.Event, bool) {
	if p.State.Terminal() {
		return trace.Event{}, false
	}
	p.WaitTicks++
	if c.abandonP <= 0 || c.lifecycle.Float64() >= c.abandonP {
		return trace.Event{}, false
	}
	from := ""
	if q := p.Queue(); q != nil {
		from = q.Name()
		q.Remove(p)
		if q == c.Net.Inpatient {
			c.Ledger.Release(ResourceBeds, 1)
		}
	}
	p.State = StateAbandoned
	p.FinishedTick = c.Tick
	logrus.Debugf("[tick %06d] patient %d abandoned from %s", c.Tick, p.ID, from)
	return trace.Event{
		Tick: c.Tick, Kind: trace.KindAbandon, Policy: "patient",
		PatientID: p.ID, From: from, To: "abandoned",
	}, true
}

// prune drops terminal patients from the registry and folds them into metrics.
func (c *Clinic) prune() {
	kept := c.patients[:0]
	for _, p := range c.patients {
		if !p.State.Terminal() {
			kept = append(kept, p)
			continue
		}
		delete(c.live, p.ID)
		c.Metrics.Finish(p)
	}
	clear(c.patients[len(kept):])
	c.patients = kept
}

// Run advances ticks times, admitting intake arrivals before each tick.
// intake may be nil. Returns every event of the run in order.
func (c *Clinic) Run(ticks int64, intake Intake) []trace.Event {
	logrus.Infof("Starting clinic run: %d ticks, %d policies, seed %d", ticks, len(c.Policies), c.rng.Seed())
	var all []trace.Event
	for range ticks {
		if intake != nil {
			for _, p := range intake.Arrivals(c.Tick + 1) {
				if err := c.AdmitPatient(p); err != nil {
					logrus.Warnf("[tick %06d] intake: %v", c.Tick+1, err)
				}
			}
		}
		all = append(all, c.Advance()...)
	}
	c.Metrics.SetLedger(c.Ledger)
	logrus.Infof("Clinic run complete at tick %d: %d live patients", c.Tick, len(c.patients))
	return all
}

// CheckInvariants verifies the ledger and network invariants: no negative
// slot or stock, held slots agree with acquired minus released, inpatients
// hold exactly the beds in use, and no patient is owned twice.
func (c *Clinic) CheckInvariants() error {
	snap := c.Ledger.Snapshot()
	for r, n := range snap.Slots {
		if n < 0 {
			return fmt.Errorf("resource %s has negative slots %d", r, n)
		}
		if held := c.Ledger.Held(r); held < 0 || held != c.Ledger.Acquired(r)-c.Ledger.Released(r) {
			return fmt.Errorf("resource %s held %d disagrees with acquired %d - released %d",
				r, held, c.Ledger.Acquired(r), c.Ledger.Released(r))
		}
	}
	for d, n := range snap.Stock {
		if n < 0 {
			return fmt.Errorf("drug %s has negative stock %d", d, n)
		}
	}
	if c.Net.Inpatient != nil && c.Ledger.Tracks(ResourceBeds) {
		if held := c.Ledger.Held(ResourceBeds); held != int64(c.Net.Inpatient.Len()) {
			return fmt.Errorf("%d beds held but %d inpatients queued", held, c.Net.Inpatient.Len())
		}
	}
	if err := c.Net.CheckOwnership(); err != nil {
		return err
	}
	if queued := c.Net.Queued(); queued != len(c.patients) {
		return fmt.Errorf("%d patients queued but %d live", queued, len(c.patients))
	}
	return nil
}
