package fuzzy

import "fmt"

// Connective joins the antecedents of a rule.
type Connective int

const (
	And Connective = iota // minimum of antecedent degrees
	Or                    // maximum of antecedent degrees
)

// Clause is one "variable is term" antecedent.
type Clause struct {
	Var  Variable
	Term string
}

// Rule concludes an output term from one to three clauses.
type Rule struct {
	Op   Connective
	If   []Clause
	Then string
}

func is(v Variable, term string) Clause { return Clause{Var: v, Term: term} }

func all(then string, cs ...Clause) Rule { return Rule{Op: And, If: cs, Then: then} }

func either(then string, cs ...Clause) Rule { return Rule{Op: Or, If: cs, Then: then} }

// DefaultRules is the fixed rule base, grouped by conclusion tier.
var DefaultRules = []Rule{
	// high
	all(High, is(Communication, "good"), is(Outcome, "effective"), is(Reception, "good")),
	all(High, is(Involvement, "high"), is(Communication, "good")),
	all(High, is(ReturnIntention, "high"), is(Environment, "good")),
	all(High, is(Communication, "good"), is(Cost, "affordable"), is(Outcome, "effective")),
	all(High, is(StaffCompetence, "good"), is(Reception, "acceptable")),
	all(High, is(Environment, "good"), is(Outcome, "effective")),
	all(High, is(Communication, "good"), is(Involvement, "high"), is(ReturnIntention, "high")),
	all(High, is(ReturnIntention, "high"), is(Cost, "affordable"), is(Outcome, "effective")),
	all(High, is(Communication, "acceptable"), is(Outcome, "effective"), is(Involvement, "high")),
	all(High, is(Communication, "good"), is(Environment, "good")),

	// medium
	all(Medium, is(Communication, "acceptable"), is(Outcome, "ineffective")),
	all(Medium, is(Reception, "acceptable"), is(Outcome, "ineffective")),
	all(Medium, is(Cost, "affordable"), is(Communication, "acceptable")),
	all(Medium, is(Involvement, "medium"), is(StaffCompetence, "acceptable")),
	all(Medium, is(Environment, "acceptable"), is(Cost, "affordable")),
	all(Medium, is(StaffCompetence, "acceptable"), is(ReturnIntention, "high")),
	all(Medium, is(Communication, "acceptable"), is(Involvement, "medium"), is(Outcome, "ineffective")),
	all(Medium, is(Reception, "acceptable"), is(ReturnIntention, "high")),
	all(Medium, is(Communication, "poor"), is(StaffCompetence, "good")),
	all(Medium, is(Communication, "acceptable"), is(Cost, "expensive")),

	// low
	either(Low, is(Communication, "poor"), is(Outcome, "ineffective")),
	all(Low, is(Environment, "poor"), is(Reception, "poor")),
	all(Low, is(Cost, "expensive"), is(Outcome, "ineffective")),
	all(Low, is(Communication, "poor"), is(Reception, "poor"), is(Cost, "expensive")),
	either(Low, is(ReturnIntention, "low"), is(Environment, "poor")),
	all(Low, is(Involvement, "low"), is(Reception, "poor")),
	all(Low, is(Communication, "poor"), is(Environment, "poor")),
	all(Low, is(Communication, "poor"), is(Cost, "expensive")),
	all(Low, is(Outcome, "ineffective"), is(ReturnIntention, "low")),
	all(Low, is(Involvement, "low"), is(Outcome, "ineffective")),
}

// validateRules checks every clause and conclusion against the model's terms.
func validateRules(rules []Rule) error {
	for i, r := range rules {
		if len(r.If) == 0 {
			return fmt.Errorf("rule %d: no antecedents", i)
		}
		if _, ok := findTerm(outputTerms, r.Then); !ok {
			return fmt.Errorf("rule %d: unknown output term %q", i, r.Then)
		}
		for _, c := range r.If {
			if _, ok := findTerm(inputTerms[c.Var], c.Term); !ok {
				return fmt.Errorf("rule %d: unknown term %q for %s", i, c.Term, c.Var)
			}
		}
	}
	return nil
}
