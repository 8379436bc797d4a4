package sim

import (
	"fmt"

	"github.com/clinicsim/clinicsim/sim/fuzzy"
)

// Queue names, also used as the From/To of transition events.
const (
	QueueSecurity         = "security"
	QueueAdmission        = "admission"
	QueueTriage           = "triage"
	QueueConsultation     = "consultation"
	QueuePostConsultation = "post-consultation"
	QueueInpatient        = "inpatient"
)

// Prescription is a dispensing order derived at consultation.
type Prescription struct {
	PatientID int
	Drug      string
	Qty       int
}

// LabOrder is a pending laboratory or imaging request.
type LabOrder struct {
	ID        string
	PatientID int
}

// LabResult is the outcome of a lab order. Turnaround is same-tick.
type LabResult struct {
	OrderID   string
	PatientID int
	Status    string
	Value     string
}

// RecordEntry is one medical-record update for a treated patient.
type RecordEntry struct {
	Tick      int64
	PatientID int
	Action    string
}

// PlanningDecision is advisory output for an external capacity-adjustment collaborator.
type PlanningDecision struct {
	Tick     int64
	Action   string
	From     Resource
	To       Resource
	QueueLen int
	Rooms    int
}

// Network is the fixed queue topology
//
//	security → admission → triage → consultation|inpatient → post-consultation → records
//
// plus the backlogs and output collections the stages share. A nil field means
// the collection is not configured; every stage that needs it is inactive.
type Network struct {
	Security         *PatientQueue
	Admission        *PatientQueue
	Triage           *PatientQueue
	Consultation     *PatientQueue
	PostConsultation *PatientQueue
	Inpatient        *PatientQueue

	LabOrders          *Backlog[LabOrder]
	Prescriptions      *Backlog[Prescription]
	SatisfactionInputs *Backlog[fuzzy.Payload]

	LabResults   *[]LabResult
	Records      *[]RecordEntry
	Satisfaction *[]fuzzy.SatisfactionRecord
	PlanningLog  *[]PlanningDecision

	SecurityChecks *int64
}

// NetworkOptions selects which optional collections exist. The six patient
// queues always exist in a network built by NewNetwork.
type NetworkOptions struct {
	LabOrders      bool
	Prescriptions  bool
	Records        bool
	Satisfaction   bool
	PlanningLog    bool
	SecurityChecks bool
}

// AllCollections enables every optional collection.
var AllCollections = NetworkOptions{
	LabOrders: true, Prescriptions: true, Records: true,
	Satisfaction: true, PlanningLog: true, SecurityChecks: true,
}

// NewNetwork builds the queue topology with the selected optional collections.
func NewNetwork(opts NetworkOptions) *Network {
	n := &Network{
		Security:         NewPatientQueue(QueueSecurity),
		Admission:        NewPatientQueue(QueueAdmission),
		Triage:           NewPatientQueue(QueueTriage),
		Consultation:     NewPatientQueue(QueueConsultation),
		PostConsultation: NewPatientQueue(QueuePostConsultation),
		Inpatient:        NewPatientQueue(QueueInpatient),
	}
	if opts.LabOrders {
		n.LabOrders = &Backlog[LabOrder]{}
		n.LabResults = &[]LabResult{}
	}
	if opts.Prescriptions {
		n.Prescriptions = &Backlog[Prescription]{}
	}
	if opts.Records {
		n.Records = &[]RecordEntry{}
	}
	if opts.Satisfaction {
		n.SatisfactionInputs = &Backlog[fuzzy.Payload]{}
		n.Satisfaction = &[]fuzzy.SatisfactionRecord{}
	}
	if opts.PlanningLog {
		n.PlanningLog = &[]PlanningDecision{}
	}
	if opts.SecurityChecks {
		n.SecurityChecks = new(int64)
	}
	return n
}

// Queues returns the configured patient queues in pipeline order.
func (n *Network) Queues() []*PatientQueue {
	var out []*PatientQueue
	for _, q := range []*PatientQueue{n.Security, n.Admission, n.Triage, n.Consultation, n.PostConsultation, n.Inpatient} {
		if q != nil {
			out = append(out, q)
		}
	}
	return out
}

// Queued returns the total number of patients held by all queues.
func (n *Network) Queued() int {
	total := 0
	for _, q := range n.Queues() {
		total += q.Len()
	}
	return total
}

// CheckOwnership verifies that every queued patient appears exactly once across
// all queues and that its owner pointer agrees with the queue holding it.
func (n *Network) CheckOwnership() error {
	seen := make(map[*Patient]string)
	for _, q := range n.Queues() {
		for _, p := range q.Items() {
			if prev, dup := seen[p]; dup {
				return fmt.Errorf("patient %d held by both %q and %q", p.ID, prev, q.Name())
			}
			seen[p] = q.Name()
			if p.owner != q {
				return fmt.Errorf("patient %d in %q but owned by %v", p.ID, q.Name(), p.owner)
			}
			if p.State.Terminal() {
				return fmt.Errorf("patient %d in %q has terminal state %s", p.ID, q.Name(), p.State)
			}
		}
	}
	return nil
}
