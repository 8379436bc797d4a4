package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNetwork_OptionalCollections(t *testing.T) {
	bare := NewNetwork(NetworkOptions{})
	assert.Len(t, bare.Queues(), 6)
	assert.Nil(t, bare.LabOrders)
	assert.Nil(t, bare.LabResults)
	assert.Nil(t, bare.Prescriptions)
	assert.Nil(t, bare.SatisfactionInputs)
	assert.Nil(t, bare.PlanningLog)
	assert.Nil(t, bare.SecurityChecks)

	full := NewNetwork(AllCollections)
	assert.NotNil(t, full.LabOrders)
	assert.NotNil(t, full.LabResults)
	assert.NotNil(t, full.Records)
	assert.NotNil(t, full.Satisfaction)
}

func TestNetwork_CheckOwnership(t *testing.T) {
	// GIVEN patients spread over two queues
	n := NewNetwork(NetworkOptions{})
	a, b := NewPatient(1, AcuityConsultation), NewPatient(2, AcuityEmergency)
	n.Triage.Enqueue(a)
	n.Inpatient.Enqueue(b)

	// THEN ownership is consistent
	assert.NoError(t, n.CheckOwnership())
	assert.Equal(t, 2, n.Queued())

	// WHEN a terminal patient is left queued
	a.State = StateTreated

	// THEN the check reports it
	assert.Error(t, n.CheckOwnership())
}

func TestNetwork_CheckOwnership_OwnerMismatch(t *testing.T) {
	n := NewNetwork(NetworkOptions{})
	p := NewPatient(1, AcuityConsultation)
	n.Triage.Enqueue(p)
	p.owner = n.Consultation

	assert.Error(t, n.CheckOwnership())
}
