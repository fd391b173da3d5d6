// Package program holds the normalized form of a probabilistic logic
// program: the deterministic logic text plus the typed probabilistic
// entities a grounder consumes. Values are built once by the
// transformer and never mutated afterwards.
package program

import (
	"fmt"
	"strings"
)

// ProbFact is an atom that holds with the given probability. Prob keeps
// the decimal exactly as written in the source; range checking belongs
// to the consumer.
type ProbFact struct {
	Prob string `json:"prob"`
	Atom string `json:"atom"`
}

func (pf ProbFact) String() string {
	return fmt.Sprintf("%s::%s.", pf.Prob, pf.Atom)
}

// CredalFact is an atom whose probability lies in the closed interval
// [Lower, Upper]. Both bounds are kept as raw numeric text.
type CredalFact struct {
	Lower string `json:"lower"`
	Upper string `json:"upper"`
	Atom  string `json:"atom"`
}

func (cf CredalFact) String() string {
	return fmt.Sprintf("[%s, %s]::%s.", cf.Lower, cf.Upper, cf.Atom)
}

// ProbRule is a probabilistic rule p::head :- body. ID is the
// probability token from the head position; it doubles as the rule
// identifier inside synthesized unify keys. Rule carries the plain
// "head :- body" text without a trailing period.
//
// A propositional rule (IsProp true, head and body both ground) owns a
// synthesized guard: PropFact is the rule text extended with a fresh
// choice atom, and PropPF is the probabilistic fact over that atom.
// A parameterized rule (IsProp false) owns Unify instead, the clause
// the grounder uses to share one probabilistic choice across every
// grounding with the same key.
type ProbRule struct {
	ID       string    `json:"id"`
	Rule     string    `json:"rule"`
	IsProp   bool      `json:"is_prop"`
	Unify    string    `json:"unify,omitempty"`
	PropFact string    `json:"prop_fact,omitempty"`
	PropPF   *ProbFact `json:"prop_pf,omitempty"`
}

func (pr ProbRule) String() string {
	return fmt.Sprintf("%s::%s.", pr.ID, pr.Rule)
}

// Query is one query statement with its literals split by polarity.
// Negative literals are stored bare, without the "not" keyword.
type Query struct {
	Positive []string `json:"positive"`
	Negative []string `json:"negative,omitempty"`
}

func (q Query) String() string {
	parts := make([]string, 0, len(q.Positive)+len(q.Negative))
	parts = append(parts, q.Positive...)
	for _, n := range q.Negative {
		parts = append(parts, "not "+n)
	}
	return fmt.Sprintf("?- %s.", strings.Join(parts, ", "))
}

// Program is the aggregate normalization result. Logic is the
// newline-joined deterministic program text: facts, plain rules,
// constraints, the guard facts of propositional probabilistic rules and
// the unify clauses of parameterized ones. Each list keeps the order in
// which its entries first appeared in the merged syntax tree; the
// consumer numbers probabilistic variables by position.
type Program struct {
	Logic       string       `json:"logic"`
	ProbFacts   []ProbFact   `json:"prob_facts,omitempty"`
	ProbRules   []ProbRule   `json:"prob_rules,omitempty"`
	Queries     []Query      `json:"queries,omitempty"`
	CredalFacts []CredalFact `json:"credal_facts,omitempty"`
}

// String renders the program as commented sections of re-parsable text.
func (p *Program) String() string {
	var sb strings.Builder
	if p.Logic != "" {
		sb.WriteString("% logic program\n")
		sb.WriteString(p.Logic)
		sb.WriteString("\n")
	}
	if len(p.ProbFacts) > 0 {
		sb.WriteString("% probabilistic facts\n")
		for _, pf := range p.ProbFacts {
			sb.WriteString(pf.String())
			sb.WriteString("\n")
		}
	}
	if len(p.ProbRules) > 0 {
		sb.WriteString("% probabilistic rules\n")
		for _, pr := range p.ProbRules {
			sb.WriteString(pr.String())
			sb.WriteString("\n")
		}
	}
	if len(p.CredalFacts) > 0 {
		sb.WriteString("% credal facts\n")
		for _, cf := range p.CredalFacts {
			sb.WriteString(cf.String())
			sb.WriteString("\n")
		}
	}
	if len(p.Queries) > 0 {
		sb.WriteString("% queries\n")
		for _, q := range p.Queries {
			sb.WriteString(q.String())
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
