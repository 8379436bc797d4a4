// Defines the Patient struct that models one patient unit moving through the clinic.
// Tracks acuity, lifecycle state, accumulated wait and the queue that currently owns it.

package sim

import (
	"fmt"

	"github.com/clinicsim/clinicsim/sim/fuzzy"
)

// Acuity is the severity category assigned at intake. It drives triage routing.
type Acuity string

const (
	AcuityEmergency       Acuity = "emergency"
	AcuityConsultation    Acuity = "consultation"
	AcuityFollowUp        Acuity = "follow-up"
	AcuityInpatientIntake Acuity = "inpatient-intake"
)

// Acuities lists every category in a stable order (used by intake sampling).
var Acuities = []Acuity{AcuityEmergency, AcuityConsultation, AcuityFollowUp, AcuityInpatientIntake}

// IsValidAcuity returns true if the given string names a known acuity category.
func IsValidAcuity(a string) bool {
	for _, known := range Acuities {
		if string(known) == a {
			return true
		}
	}
	return false
}

// PatientState represents the lifecycle state of a patient.
type PatientState string

const (
	StateWaiting        PatientState = "waiting"
	StateOriented       PatientState = "oriented"
	StateAdmitted       PatientState = "admitted"
	StateInConsultation PatientState = "in-consultation"
	StateTreated        PatientState = "treated"
	StateAbandoned      PatientState = "abandoned"
)

// Terminal reports whether the state ends the patient's transit through the network.
func (s PatientState) Terminal() bool {
	return s == StateTreated || s == StateAbandoned
}

// Patient is mutated only by the policy currently holding it, or by its own
// lifecycle update in the tick scheduler.
type Patient struct {
	ID        int
	Acuity    Acuity
	State     PatientState
	WaitTicks float64 // accumulated wait, never negative

	// Satisfaction is the optional questionnaire handed to the satisfaction
	// stage once the patient is treated. nil means no questionnaire.
	Satisfaction fuzzy.Payload

	AdmittedTick int64 // tick the patient entered the security queue
	FinishedTick int64 // tick the patient reached a terminal state

	owner *PatientQueue // queue currently holding the patient, nil when in transit or gone
}

// NewPatient creates a waiting patient. Unknown acuity strings fall back to consultation.
func NewPatient(id int, acuity Acuity) *Patient {
	if !IsValidAcuity(string(acuity)) {
		acuity = AcuityConsultation
	}
	return &Patient{ID: id, Acuity: acuity, State: StateWaiting}
}

// Queue returns the queue currently owning the patient, or nil.
func (p *Patient) Queue() *PatientQueue {
	return p.owner
}

func (p Patient) String() string {
	return fmt.Sprintf("Patient: (ID: %d, Acuity: %s, State: %s, Wait: %.1f)", p.ID, p.Acuity, p.State, p.WaitTicks)
}
