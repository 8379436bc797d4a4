package sim

import (
	"fmt"
	"maps"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/clinicsim/clinicsim/sim/fuzzy"
	"github.com/clinicsim/clinicsim/sim/trace"
)

// PolicyKind tags one coordination stage. The set is closed, so Transition
// dispatches with a switch rather than an interface.
type PolicyKind int

const (
	PolicySecurity PolicyKind = iota
	PolicyAdmission
	PolicyTriage
	PolicyConsultation
	PolicyLab
	PolicyPharmacy
	PolicyPlanning
	PolicyRecords
	PolicySatisfaction
)

var policyNames = map[PolicyKind]string{
	PolicySecurity:     "security",
	PolicyAdmission:    "admission",
	PolicyTriage:       "triage",
	PolicyConsultation: "consultation",
	PolicyLab:          "lab",
	PolicyPharmacy:     "pharmacy",
	PolicyPlanning:     "planning",
	PolicyRecords:      "records",
	PolicySatisfaction: "satisfaction",
}

func (k PolicyKind) String() string {
	if name, ok := policyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("policy(%d)", int(k))
}

// DefaultPlanningThreshold is the consultation queue length above which the
// planning stage recommends moving room capacity to doctors.
const DefaultPlanningThreshold = 10

// Drugs prescribed at consultation.
const (
	DrugA = "RX-A"
	DrugB = "RX-B"
)

// State is what a policy may touch during its single activation in a tick.
// The scheduler owns the ledger and network and lends them for the call only.
type State struct {
	Tick              int64
	Net               *Network
	Ledger            *Ledger
	Engine            *fuzzy.Engine // nil disables the satisfaction stage
	PlanningThreshold int
}

// Policy is one coordination stage instance. ID distinguishes instances of the
// same kind and seeds the consultation outcome hash.
type Policy struct {
	ID   int
	Kind PolicyKind
}

// Name returns "<kind>#<id>".
func (p Policy) Name() string {
	return fmt.Sprintf("%s#%d", p.Kind, p.ID)
}

// Transition runs the stage once against st and returns the events it produced.
// A stage whose queues or ledger fields are missing does nothing; an empty
// queue does nothing. Transition never panics on collaborator state.
func (p Policy) Transition(st *State) []trace.Event {
	if st == nil || st.Net == nil || st.Ledger == nil {
		return nil
	}
	switch p.Kind {
	case PolicySecurity:
		return p.screen(st)
	case PolicyAdmission:
		return p.orient(st)
	case PolicyTriage:
		return p.route(st)
	case PolicyConsultation:
		return p.consult(st)
	case PolicyLab:
		return p.runLab(st)
	case PolicyPharmacy:
		return p.dispense(st)
	case PolicyPlanning:
		return p.plan(st)
	case PolicyRecords:
		return p.discharge(st)
	case PolicySatisfaction:
		return p.assess(st)
	default:
		return nil
	}
}

func (p Policy) move(st *State, pat *Patient, from, to string, detail string) trace.Event {
	logrus.Debugf("[tick %06d] %s: patient %d %s -> %s", st.Tick, p.Name(), pat.ID, from, to)
	return trace.Event{
		Tick: st.Tick, Kind: trace.KindTransition, Policy: p.Kind.String(),
		PatientID: pat.ID, From: from, To: to, Detail: detail,
	}
}

// screen passes one patient from security to admission unconditionally.
func (p Policy) screen(st *State) []trace.Event {
	n := st.Net
	if n.Security == nil || n.Admission == nil {
		return nil
	}
	pat := n.Security.Dequeue()
	if pat == nil {
		return nil
	}
	n.Admission.Enqueue(pat)
	if n.SecurityChecks != nil {
		*n.SecurityChecks++
	}
	return []trace.Event{p.move(st, pat, QueueSecurity, QueueAdmission, "")}
}

// orient moves one admitted arrival on to triage.
func (p Policy) orient(st *State) []trace.Event {
	n := st.Net
	if n.Admission == nil || n.Triage == nil {
		return nil
	}
	pat := n.Admission.Dequeue()
	if pat == nil {
		return nil
	}
	pat.State = StateOriented
	n.Triage.Enqueue(pat)
	return []trace.Event{p.move(st, pat, QueueAdmission, QueueTriage, "")}
}

// route sends an emergency to the inpatient queue when a bed can be taken,
// everyone else (including emergencies with no bed) to consultation.
// The bed is held until discharge from the inpatient queue.
func (p Policy) route(st *State) []trace.Event {
	n := st.Net
	if n.Triage == nil || n.Consultation == nil {
		return nil
	}
	pat := n.Triage.Dequeue()
	if pat == nil {
		return nil
	}
	pat.State = StateAdmitted
	if pat.Acuity == AcuityEmergency && n.Inpatient != nil && st.Ledger.TryAcquire(ResourceBeds, 1) {
		n.Inpatient.Enqueue(pat)
		return []trace.Event{p.move(st, pat, QueueTriage, QueueInpatient, "bed acquired")}
	}
	n.Consultation.Enqueue(pat)
	return []trace.Event{p.move(st, pat, QueueTriage, QueueConsultation, "")}
}

// consult serves one patient if a doctor slot can be acquired. On failure the
// patient goes back to the front of the queue and the stage stops for the tick.
// Consultation is instantaneous: the doctor is released before returning.
func (p Policy) consult(st *State) []trace.Event {
	n := st.Net
	if n.Consultation == nil || n.PostConsultation == nil || !st.Ledger.Tracks(ResourceDoctors) {
		return nil
	}
	pat := n.Consultation.Dequeue()
	if pat == nil {
		return nil
	}
	if !st.Ledger.TryAcquire(ResourceDoctors, 1) {
		n.Consultation.PrependFront(pat)
		logrus.Debugf("[tick %06d] %s: no doctor for patient %d, retry next tick", st.Tick, p.Name(), pat.ID)
		return []trace.Event{{
			Tick: st.Tick, Kind: trace.KindRetry, Policy: p.Kind.String(),
			PatientID: pat.ID, From: QueueConsultation, To: QueueConsultation, Detail: "no doctor available",
		}}
	}
	pat.State = StateInConsultation

	rx, labOrder := consultationOutcome(p.ID, pat.ID)
	if n.Prescriptions != nil {
		n.Prescriptions.Push(rx)
	}
	if labOrder && n.LabOrders != nil {
		n.LabOrders.Push(LabOrder{ID: labOrderID(st.Tick, p.ID, pat.ID), PatientID: pat.ID})
	}
	st.Ledger.Release(ResourceDoctors, 1)

	n.PostConsultation.Enqueue(pat)
	return []trace.Event{p.move(st, pat, QueueConsultation, QueuePostConsultation,
		fmt.Sprintf("%dx %s", rx.Qty, rx.Drug))}
}

// consultationOutcome derives the prescription, and whether a lab order is
// needed, from the (desk, patient) pair alone so the same pair always gets the
// same outcome.
func consultationOutcome(deskID, patientID int) (Prescription, bool) {
	serviceTicks := 1 + int(pairHash(deskID, patientID)%3)
	drug := DrugB
	if serviceTicks%2 == 0 {
		drug = DrugA
	}
	rx := Prescription{PatientID: patientID, Drug: drug, Qty: 1 + serviceTicks%2}
	return rx, serviceTicks == 3
}

// labOrderID is a name-based UUID so that reruns with the same seed produce
// the same order ids.
func labOrderID(tick int64, deskID, patientID int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("lab:%d:%d:%d", tick, deskID, patientID))).String()
}

// runLab completes every pending order in the same tick.
func (p Policy) runLab(st *State) []trace.Event {
	n := st.Net
	if n.LabOrders == nil {
		return nil
	}
	if n.LabResults == nil {
		n.LabResults = &[]LabResult{}
	}
	orders := n.LabOrders.Drain()
	events := make([]trace.Event, 0, len(orders))
	for _, o := range orders {
		*n.LabResults = append(*n.LabResults, LabResult{OrderID: o.ID, PatientID: o.PatientID, Status: "done", Value: "N/A"})
		events = append(events, trace.Event{
			Tick: st.Tick, Kind: trace.KindLabResult, Policy: p.Kind.String(),
			PatientID: o.PatientID, Detail: o.ID,
		})
		logrus.Debugf("[tick %06d] %s: processed lab order %s", st.Tick, p.Name(), o.ID)
	}
	return events
}

// dispense serves every pending prescription from stock. A prescription that
// cannot be served is dropped with a shortage event; stock is left untouched.
func (p Policy) dispense(st *State) []trace.Event {
	n := st.Net
	if n.Prescriptions == nil || !st.Ledger.HasInventory() {
		return nil
	}
	todo := n.Prescriptions.Drain()
	events := make([]trace.Event, 0, len(todo))
	for _, rx := range todo {
		ok, have := st.Ledger.Consume(rx.Drug, rx.Qty)
		kind := trace.KindDispense
		if ok {
			logrus.Debugf("[tick %06d] %s: dispensed %dx %s", st.Tick, p.Name(), rx.Qty, rx.Drug)
		} else {
			kind = trace.KindShortage
			logrus.Warnf("[tick %06d] %s: shortage for %s: need %d, have %d", st.Tick, p.Name(), rx.Drug, rx.Qty, have)
		}
		events = append(events, trace.Event{
			Tick: st.Tick, Kind: kind, Policy: p.Kind.String(),
			PatientID: rx.PatientID, Drug: rx.Drug, Need: rx.Qty, Have: have,
		})
	}
	return events
}

// plan recommends reassigning a room slot to doctor capacity when the
// consultation queue is long and a room is free. It never touches the ledger.
func (p Policy) plan(st *State) []trace.Event {
	n := st.Net
	if n.PlanningLog == nil {
		return nil
	}
	threshold := st.PlanningThreshold
	if threshold <= 0 {
		threshold = DefaultPlanningThreshold
	}
	queueLen := 0
	if n.Consultation != nil {
		queueLen = n.Consultation.Len()
	}
	rooms := st.Ledger.Available(ResourceRooms)
	if queueLen <= threshold || rooms <= 0 {
		return nil
	}
	d := PlanningDecision{
		Tick: st.Tick, Action: "reprioritize", From: ResourceRooms, To: ResourceDoctors,
		QueueLen: queueLen, Rooms: rooms,
	}
	*n.PlanningLog = append(*n.PlanningLog, d)
	logrus.Debugf("[tick %06d] %s: reprioritize room -> doctor (queue=%d rooms=%d)", st.Tick, p.Name(), queueLen, rooms)
	return []trace.Event{{
		Tick: st.Tick, Kind: trace.KindReprioritize, Policy: p.Kind.String(),
		From: string(ResourceRooms), To: string(ResourceDoctors), Need: queueLen, Have: rooms,
	}}
}

// discharge completes one consulted patient: the record is updated, the
// questionnaire (if any) is handed to the satisfaction stage, and the patient
// leaves the network.
func (p Policy) discharge(st *State) []trace.Event {
	n := st.Net
	if n.PostConsultation == nil {
		return nil
	}
	pat := n.PostConsultation.Dequeue()
	if pat == nil {
		return nil
	}
	pat.State = StateTreated
	pat.FinishedTick = st.Tick
	if n.Records != nil {
		*n.Records = append(*n.Records, RecordEntry{Tick: st.Tick, PatientID: pat.ID, Action: "consultation completed"})
	}
	if pat.Satisfaction != nil && n.SatisfactionInputs != nil {
		payload := maps.Clone(pat.Satisfaction)
		if _, ok := payload[fuzzy.PatientIDKey]; !ok {
			payload[fuzzy.PatientIDKey] = pat.ID
		}
		n.SatisfactionInputs.Push(payload)
	}
	return []trace.Event{p.move(st, pat, QueuePostConsultation, "discharged", "")}
}

// assess scores at most one pending questionnaire per activation.
func (p Policy) assess(st *State) []trace.Event {
	n := st.Net
	if st.Engine == nil || n.SatisfactionInputs == nil || n.Satisfaction == nil {
		return nil
	}
	payload, ok := n.SatisfactionInputs.Pop()
	if !ok {
		return nil
	}
	rec, err := st.Engine.Evaluate(payload)
	if err != nil {
		logrus.Debugf("[tick %06d] %s: dropping payload: %v", st.Tick, p.Name(), err)
		return nil
	}
	*n.Satisfaction = append(*n.Satisfaction, rec)
	ev := trace.Event{Tick: st.Tick, Kind: trace.KindSatisfaction, Policy: p.Kind.String(), Score: rec.Score}
	if rec.PatientID != nil {
		ev.PatientID = *rec.PatientID
	}
	return []trace.Event{ev}
}
