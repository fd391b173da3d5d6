// Package transform folds a parsed syntax tree bottom-up into a
// program.Program. Literals fold to text fragments, heads and bodies
// additionally collect the names of their non-ground arguments, and
// probabilistic rules are rewritten so the downstream grounder draws
// one probabilistic choice per grounding key.
package transform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"credal/internal/program"
	"credal/internal/syntree"
)

var (
	// ErrUnsafeRule reports a parameterized probabilistic rule whose
	// body contributes no variables to ground the head by.
	ErrUnsafeRule = errors.New("unsafe probabilistic rule")
)

// Transformer folds syntax trees into Programs. The only state is the
// counter minting fresh choice atoms for propositional probabilistic
// rules, so separate instances yield fully independent results.
type Transformer struct {
	choices int
}

// New returns a fresh Transformer.
func New() *Transformer {
	return &Transformer{}
}

// lit is the folded form of one literal: its rendered text, the same
// text without the negation keyword, its polarity, whether every
// component is ground, and the names of its non-ground arguments in
// order of appearance.
type lit struct {
	text   string
	atom   string
	sign   syntree.Sign
	ground bool
	vars   []string
}

// headFold is the folded form of a probabilistic rule head.
type headFold struct {
	text    string
	ground  bool
	functor string
	vars    []string
}

// bodyFold is the folded form of a rule body conjunction.
type bodyFold struct {
	text   string
	ground bool
	vars   []string
}

// Transform normalizes the tree rooted at root into a Program. The
// fold is all-or-nothing: any contract violation aborts with an error
// wrapping syntree.ErrInvalidNode and no partial Program is returned.
func (t *Transformer) Transform(root *syntree.Node) (*program.Program, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil tree", syntree.ErrInvalidNode)
	}
	if root.Kind != syntree.KindPLP {
		return nil, fmt.Errorf("%w: top-level node is %s, want plp", syntree.ErrInvalidNode, root.Kind)
	}
	var logic []string
	prog := &program.Program{}
	for _, child := range root.Children {
		n, ok := child.(*syntree.Node)
		if !ok {
			return nil, fmt.Errorf("%w: top-level child is a bare token", syntree.ErrInvalidNode)
		}
		switch n.Kind {
		case syntree.KindFact:
			line, err := t.foldFact(n)
			if err != nil {
				return nil, err
			}
			logic = append(logic, line)
		case syntree.KindRule:
			line, err := t.foldRule(n)
			if err != nil {
				return nil, err
			}
			logic = append(logic, line)
		case syntree.KindConstraint:
			line, err := t.foldConstraint(n)
			if err != nil {
				return nil, err
			}
			logic = append(logic, line)
		case syntree.KindProbFact:
			pf, err := t.foldPFact(n)
			if err != nil {
				return nil, err
			}
			prog.ProbFacts = append(prog.ProbFacts, pf)
		case syntree.KindProbRule:
			pr, err := t.foldPRule(n)
			if err != nil {
				return nil, err
			}
			prog.ProbRules = append(prog.ProbRules, pr)
			// A propositional rule contributes its guard pieces right
			// here, keeping list positions aligned with source order.
			// A parameterized rule contributes only its unify clause.
			if pr.IsProp {
				logic = append(logic, pr.PropFact)
				prog.ProbFacts = append(prog.ProbFacts, *pr.PropPF)
			} else {
				logic = append(logic, pr.Unify)
			}
		case syntree.KindCredalFact:
			cf, err := t.foldCFact(n)
			if err != nil {
				return nil, err
			}
			prog.CredalFacts = append(prog.CredalFacts, cf)
		case syntree.KindQuery:
			q, err := t.foldQuery(n)
			if err != nil {
				return nil, err
			}
			prog.Queries = append(prog.Queries, q)
		default:
			return nil, fmt.Errorf("%w: unexpected top-level %s", syntree.ErrInvalidNode, n.Kind)
		}
	}
	prog.Logic = strings.Join(logic, "\n")
	return prog, nil
}

// foldTerm renders one argument position: a constant, variable or
// interval. The second result is the term's groundedness.
func (t *Transformer) foldTerm(e syntree.Elem) (string, bool, error) {
	switch x := e.(type) {
	case *syntree.Token:
		switch x.Kind {
		case syntree.KindID, syntree.KindInt, syntree.KindString, syntree.KindProb:
			return x.Text, true, nil
		case syntree.KindVar:
			return x.Text, false, nil
		}
		return "", false, fmt.Errorf("%w: token %s cannot appear as a term", syntree.ErrInvalidNode, x.Kind)
	case *syntree.Node:
		if x.Kind == syntree.KindInterval {
			parts := make([]string, 0, len(x.Children))
			ground := true
			for _, c := range x.Children {
				text, g, err := t.foldTerm(c)
				if err != nil {
					return "", false, err
				}
				parts = append(parts, text)
				ground = ground && g
			}
			return strings.Join(parts, ".."), ground, nil
		}
	}
	return "", false, fmt.Errorf("%w: %s cannot appear as a term", syntree.ErrInvalidNode, e.ElemKind())
}

// foldLiteral dispatches on the literal production kinds.
func (t *Transformer) foldLiteral(e syntree.Elem) (lit, error) {
	switch e.ElemKind() {
	case syntree.KindAtom, syntree.KindGroundAtom:
		return t.foldAtom(e.(*syntree.Node))
	case syntree.KindPred, syntree.KindGroundPred:
		return t.foldPred(e.(*syntree.Node))
	case syntree.KindBinOp:
		return t.foldBinOp(e.(*syntree.Node))
	}
	return lit{}, fmt.Errorf("%w: %s is not a literal", syntree.ErrInvalidNode, e.ElemKind())
}

func (t *Transformer) foldAtom(n *syntree.Node) (lit, error) {
	sign := syntree.AtomSign(n)
	children := n.Children
	if sign == syntree.Negative {
		children = children[1:]
	}
	if len(children) != 1 {
		return lit{}, fmt.Errorf("%w: atom has %d name tokens, want 1", syntree.ErrInvalidNode, len(children))
	}
	name, ground, err := t.foldTerm(children[0])
	if err != nil {
		return lit{}, err
	}
	l := lit{text: name, atom: name, sign: sign, ground: ground}
	if sign == syntree.Negative {
		l.text = "not " + name
	}
	return l, nil
}

func (t *Transformer) foldPred(n *syntree.Node) (lit, error) {
	sign := syntree.PredSign(n)
	children := n.Children
	if sign == syntree.Negative {
		children = children[1:]
	}
	if len(children) < 2 {
		return lit{}, fmt.Errorf("%w: predicate needs a functor and arguments", syntree.ErrInvalidNode)
	}
	functor, ok := children[0].(*syntree.Token)
	if !ok || functor.Kind != syntree.KindID {
		return lit{}, fmt.Errorf("%w: predicate functor must be an identifier", syntree.ErrInvalidNode)
	}
	args := make([]string, 0, len(children)-1)
	var vars []string
	ground := true
	for _, c := range children[1:] {
		text, g, err := t.foldTerm(c)
		if err != nil {
			return lit{}, err
		}
		args = append(args, text)
		ground = ground && g
		if !g {
			vars = append(vars, text)
		}
	}
	atom := fmt.Sprintf("%s(%s)", functor.Text, strings.Join(args, ", "))
	l := lit{text: atom, atom: atom, sign: sign, ground: ground, vars: vars}
	if sign == syntree.Negative {
		l.text = "not " + atom
	}
	return l, nil
}

// foldBinOp renders a comparison literal. Its variables never join a
// unify key: a comparison restricts groundings but cannot bind a fresh
// probabilistic choice.
func (t *Transformer) foldBinOp(n *syntree.Node) (lit, error) {
	if len(n.Children) != 3 {
		return lit{}, fmt.Errorf("%w: binary operation has %d children, want 3", syntree.ErrInvalidNode, len(n.Children))
	}
	op, ok := n.Children[1].(*syntree.Token)
	if !ok || op.Kind != syntree.KindOp {
		return lit{}, fmt.Errorf("%w: binary operation needs an operator token", syntree.ErrInvalidNode)
	}
	left, lg, err := t.foldTerm(n.Children[0])
	if err != nil {
		return lit{}, err
	}
	right, rg, err := t.foldTerm(n.Children[2])
	if err != nil {
		return lit{}, err
	}
	text := fmt.Sprintf("%s %s %s", left, op.Text, right)
	return lit{text: text, atom: text, sign: syntree.Positive, ground: lg && rg}, nil
}

// foldHead folds a probabilistic rule head. A bare head is its functor
// name alone and owns no argument names; a head with arguments renders
// like a predicate and collects the names of its non-ground arguments.
func (t *Transformer) foldHead(n *syntree.Node) (headFold, error) {
	if n.Kind != syntree.KindHead || len(n.Children) == 0 {
		return headFold{}, fmt.Errorf("%w: malformed rule head", syntree.ErrInvalidNode)
	}
	functor, ok := n.Children[0].(*syntree.Token)
	if !ok || functor.Kind != syntree.KindID {
		return headFold{}, fmt.Errorf("%w: rule head functor must be an identifier", syntree.ErrInvalidNode)
	}
	if len(n.Children) == 1 {
		return headFold{text: functor.Text, ground: true, functor: functor.Text}, nil
	}
	args := make([]string, 0, len(n.Children)-1)
	var vars []string
	ground := true
	for _, c := range n.Children[1:] {
		text, g, err := t.foldTerm(c)
		if err != nil {
			return headFold{}, err
		}
		args = append(args, text)
		ground = ground && g
		if !g {
			vars = append(vars, text)
		}
	}
	return headFold{
		text:    fmt.Sprintf("%s(%s)", functor.Text, strings.Join(args, ", ")),
		ground:  ground,
		functor: functor.Text,
		vars:    vars,
	}, nil
}

// foldBody folds a conjunction of literals into comma-joined text and
// the ordered names of the non-ground arguments across all literals.
func (t *Transformer) foldBody(n *syntree.Node) (bodyFold, error) {
	if n.Kind != syntree.KindBody {
		return bodyFold{}, fmt.Errorf("%w: %s is not a body", syntree.ErrInvalidNode, n.Kind)
	}
	texts := make([]string, 0, len(n.Children))
	var vars []string
	ground := true
	for _, c := range n.Children {
		l, err := t.foldLiteral(c)
		if err != nil {
			return bodyFold{}, err
		}
		texts = append(texts, l.text)
		ground = ground && l.ground
		vars = append(vars, l.vars...)
	}
	return bodyFold{text: strings.Join(texts, ", "), ground: ground, vars: vars}, nil
}

func (t *Transformer) foldFact(n *syntree.Node) (string, error) {
	if len(n.Children) != 1 {
		return "", fmt.Errorf("%w: fact has %d children, want 1", syntree.ErrInvalidNode, len(n.Children))
	}
	l, err := t.foldLiteral(n.Children[0])
	if err != nil {
		return "", err
	}
	return l.text + ".", nil
}

func (t *Transformer) foldRule(n *syntree.Node) (string, error) {
	if len(n.Children) != 2 {
		return "", fmt.Errorf("%w: rule has %d children, want 2", syntree.ErrInvalidNode, len(n.Children))
	}
	head, err := t.foldLiteral(n.Children[0])
	if err != nil {
		return "", err
	}
	bodyNode, ok := n.Children[1].(*syntree.Node)
	if !ok {
		return "", fmt.Errorf("%w: rule body must be a node", syntree.ErrInvalidNode)
	}
	body, err := t.foldBody(bodyNode)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s :- %s.", head.text, body.text), nil
}

func (t *Transformer) foldConstraint(n *syntree.Node) (string, error) {
	if len(n.Children) != 1 {
		return "", fmt.Errorf("%w: constraint has %d children, want 1", syntree.ErrInvalidNode, len(n.Children))
	}
	bodyNode, ok := n.Children[0].(*syntree.Node)
	if !ok {
		return "", fmt.Errorf("%w: constraint body must be a node", syntree.ErrInvalidNode)
	}
	body, err := t.foldBody(bodyNode)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(":- %s.", body.text), nil
}

func (t *Transformer) foldPFact(n *syntree.Node) (program.ProbFact, error) {
	if len(n.Children) != 2 {
		return program.ProbFact{}, fmt.Errorf("%w: probabilistic fact has %d children, want 2", syntree.ErrInvalidNode, len(n.Children))
	}
	prob, ok := n.Children[0].(*syntree.Token)
	if !ok || prob.Kind != syntree.KindProb {
		return program.ProbFact{}, fmt.Errorf("%w: probabilistic fact must start with a probability token", syntree.ErrInvalidNode)
	}
	l, err := t.foldLiteral(n.Children[1])
	if err != nil {
		return program.ProbFact{}, err
	}
	return program.ProbFact{Prob: prob.Text, Atom: l.text}, nil
}

func (t *Transformer) foldCFact(n *syntree.Node) (program.CredalFact, error) {
	if len(n.Children) != 3 {
		return program.CredalFact{}, fmt.Errorf("%w: credal fact has %d children, want 3", syntree.ErrInvalidNode, len(n.Children))
	}
	lo, okLo := n.Children[0].(*syntree.Token)
	hi, okHi := n.Children[1].(*syntree.Token)
	if !okLo || !okHi || lo.Kind != syntree.KindProb || hi.Kind != syntree.KindProb {
		return program.CredalFact{}, fmt.Errorf("%w: credal fact bounds must be probability tokens", syntree.ErrInvalidNode)
	}
	l, err := t.foldLiteral(n.Children[2])
	if err != nil {
		return program.CredalFact{}, err
	}
	return program.CredalFact{Lower: lo.Text, Upper: hi.Text, Atom: l.text}, nil
}

// foldQuery splits the query literals by polarity. Negative literals
// are stored without the negation keyword.
func (t *Transformer) foldQuery(n *syntree.Node) (program.Query, error) {
	var q program.Query
	if len(n.Children) == 0 {
		return q, fmt.Errorf("%w: empty query", syntree.ErrInvalidNode)
	}
	for _, c := range n.Children {
		l, err := t.foldLiteral(c)
		if err != nil {
			return program.Query{}, err
		}
		if l.sign == syntree.Negative {
			q.Negative = append(q.Negative, l.atom)
		} else {
			q.Positive = append(q.Positive, l.text)
		}
	}
	return q, nil
}

// foldPRule implements the probabilistic rule rewrite.
//
// A fully ground rule is a probabilistic fact gating a plain rule: the
// rule text is guarded with a fresh choice atom and the probability
// moves onto that atom.
//
// A rule with variables instead gets a unify clause
//
//	name(unify("rid", name, k, m, h_1, ..., h_k, "b_1", ..., "b_m")) :- body.
//
// where h are the non-ground head argument names (unquoted, resolved
// per grounding) and b are the non-ground body argument names (quoted,
// naming which variables form the key). For one key the grounder hands
// back one stable choice identifier, so every grounding sharing the
// key reuses a single probabilistic draw. Argument order, quoting and
// the two arity values are what the grounder resolves keys by.
func (t *Transformer) foldPRule(n *syntree.Node) (program.ProbRule, error) {
	if len(n.Children) != 3 {
		return program.ProbRule{}, fmt.Errorf("%w: probabilistic rule has %d children, want 3", syntree.ErrInvalidNode, len(n.Children))
	}
	rid, ok := n.Children[0].(*syntree.Token)
	if !ok || rid.Kind != syntree.KindProb {
		return program.ProbRule{}, fmt.Errorf("%w: probabilistic rule must start with a probability token", syntree.ErrInvalidNode)
	}
	headNode, ok := n.Children[1].(*syntree.Node)
	if !ok {
		return program.ProbRule{}, fmt.Errorf("%w: probabilistic rule head must be a node", syntree.ErrInvalidNode)
	}
	bodyNode, ok := n.Children[2].(*syntree.Node)
	if !ok {
		return program.ProbRule{}, fmt.Errorf("%w: probabilistic rule body must be a node", syntree.ErrInvalidNode)
	}
	head, err := t.foldHead(headNode)
	if err != nil {
		return program.ProbRule{}, err
	}
	body, err := t.foldBody(bodyNode)
	if err != nil {
		return program.ProbRule{}, err
	}
	rule := fmt.Sprintf("%s :- %s", head.text, body.text)

	if head.ground && body.ground {
		choice := t.nextChoice()
		pf := &program.ProbFact{Prob: rid.Text, Atom: choice}
		return program.ProbRule{
			ID:       rid.Text,
			Rule:     rule,
			IsProp:   true,
			PropFact: fmt.Sprintf("%s, %s.", rule, choice),
			PropPF:   pf,
		}, nil
	}

	if len(body.vars) == 0 {
		return program.ProbRule{}, fmt.Errorf("%w: %s", ErrUnsafeRule, rule)
	}
	quoted := make([]string, len(body.vars))
	for i, v := range body.vars {
		quoted[i] = strconv.Quote(v)
	}
	headPart := ""
	if len(head.vars) > 0 {
		headPart = strings.Join(head.vars, ", ") + ", "
	}
	unify := fmt.Sprintf("%s(unify(%q, %s, %d, %d, %s%s)) :- %s.",
		head.functor, rid.Text, head.functor, len(head.vars), len(body.vars),
		headPart, strings.Join(quoted, ", "), body.text)
	return program.ProbRule{ID: rid.Text, Rule: rule, IsProp: false, Unify: unify}, nil
}

func (t *Transformer) nextChoice() string {
	name := fmt.Sprintf("__choice_%d", t.choices)
	t.choices++
	return name
}
