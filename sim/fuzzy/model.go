package fuzzy

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// Variable names one input criterion of the satisfaction model.
type Variable string

const (
	Communication   Variable = "communication"
	Reception       Variable = "reception"
	StaffCompetence Variable = "staff_competence"
	Environment     Variable = "environment"
	Outcome         Variable = "outcome"
	Cost            Variable = "cost"
	Involvement     Variable = "involvement"
	ReturnIntention Variable = "return_intention"
)

// Inputs lists the eight criteria in model order.
var Inputs = []Variable{
	Communication, Reception, StaffCompetence, Environment,
	Outcome, Cost, Involvement, ReturnIntention,
}

// aliases maps short questionnaire keys and display labels, in snake case, to
// variables.
var aliases = map[string]Variable{
	"ci": Communication,
	"ra": Reception,
	"sc": StaffCompetence,
	"ei": Environment,
	"po": Outcome,
	"cb": Cost,
	"pi": Involvement,
	"rr": ReturnIntention,

	"communication_and_information":     Communication,
	"reception_and_accessibility":       Reception,
	"environment_and_infrastructure":    Environment,
	"perceived_treatment_outcome":       Outcome,
	"cost_and_billing":                  Cost,
	"patient_involvement":               Involvement,
	"intention_to_return_and_recommend": ReturnIntention,
}

// Lookup resolves a canonical name, short alias or display label. Keys are
// compared in snake case, so "Cost and Billing", "costAndBilling" and
// "cost-and-billing" are the same key.
func Lookup(key string) (Variable, bool) {
	k := strcase.ToSnake(strings.TrimSpace(key))
	for _, v := range Inputs {
		if string(v) == k {
			return v, true
		}
	}
	v, ok := aliases[k]
	return v, ok
}

// Term is one linguistic label of a variable with its membership shape.
type Term struct {
	Name string
	MF   MembershipFunc
}

// inputTerms is the fixed partition of every input variable.
var inputTerms = map[Variable][]Term{
	Communication: {
		{"poor", Triangle{0, 0, 5}},
		{"acceptable", Triangle{2, 5, 8}},
		{"good", Triangle{5, 10, 10}},
	},
	Reception: {
		{"poor", Trapezoid{0, 0, 2, 4}},
		{"acceptable", Trapezoid{2, 4, 6, 8}},
		{"good", Trapezoid{6, 8, 10, 10}},
	},
	StaffCompetence: {
		{"poor", Gaussian{2, 1.5}},
		{"acceptable", Gaussian{5, 1.5}},
		{"good", Gaussian{8, 1.5}},
	},
	Environment: {
		{"poor", Trapezoid{0, 0, 2, 4}},
		{"acceptable", Trapezoid{3, 5, 7, 9}},
		{"good", Trapezoid{7, 9, 10, 10}},
	},
	// Sigmoids are centred mid-scale with slope ±1.5 so both ends of the
	// universe are distinguishable.
	Outcome: {
		{"ineffective", Sigmoid{5, -1.5}},
		{"effective", Sigmoid{5, 1.5}},
	},
	Cost: {
		{"affordable", Complement{Sigmoid{5, 1.5}}},
		{"expensive", Sigmoid{5, 1.5}},
	},
	Involvement: {
		{"low", Triangle{0, 0, 5}},
		{"medium", Triangle{2, 5, 8}},
		{"high", Triangle{5, 10, 10}},
	},
	ReturnIntention: {
		{"low", Trapezoid{0, 0, 3, 5}},
		{"high", Trapezoid{5, 7, 10, 10}},
	},
}

// Output terms of overall satisfaction.
const (
	Low    = "low"
	Medium = "medium"
	High   = "high"
)

var outputTerms = []Term{
	{Low, Triangle{0, 0, 5}},
	{Medium, Triangle{3, 5, 7}},
	{High, Triangle{5, 10, 10}},
}

// TermsOf returns the linguistic terms of an input variable.
func TermsOf(v Variable) []Term {
	return inputTerms[v]
}

func findTerm(terms []Term, name string) (MembershipFunc, bool) {
	for _, t := range terms {
		if t.Name == name {
			return t.MF, true
		}
	}
	return nil, false
}
