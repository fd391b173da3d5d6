package syntree

import (
	"fmt"
	"strconv"
)

// Sign is the three-valued polarity of a literal. AtomSign and PredSign
// return NotApplicable for elements that are not literals of the asked
// shape, and callers branch on all three values.
type Sign int

const (
	// NotApplicable marks elements that are not atoms or predicates.
	NotApplicable Sign = iota
	// Positive marks literals without default negation.
	Positive
	// Negative marks literals under default negation.
	Negative
)

func (s Sign) String() string {
	switch s {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "n/a"
	}
}

func isNode(x Elem, kinds ...Kind) bool {
	n, ok := x.(*Node)
	if !ok {
		return false
	}
	for _, k := range kinds {
		if n.Kind == k {
			return true
		}
	}
	return false
}

// IsFact reports whether x is a fact production.
func IsFact(x Elem) bool { return isNode(x, KindFact) }

// IsPFact reports whether x is a probabilistic fact production.
func IsPFact(x Elem) bool { return isNode(x, KindProbFact) }

// IsRule reports whether x is a plain rule production.
func IsRule(x Elem) bool { return isNode(x, KindRule) }

// IsPRule reports whether x is a probabilistic rule production.
func IsPRule(x Elem) bool { return isNode(x, KindProbRule) }

// IsCFact reports whether x is a credal fact production.
func IsCFact(x Elem) bool { return isNode(x, KindCredalFact) }

// IsAtom reports whether x is a propositional literal, covering both
// the ground and the non-ground production variants.
func IsAtom(x Elem) bool { return isNode(x, KindAtom, KindGroundAtom) }

// IsPred reports whether x is a predicate literal, covering both the
// ground and the non-ground production variants.
func IsPred(x Elem) bool { return isNode(x, KindPred, KindGroundPred) }

// IsProb reports whether x is a probabilistic production, that is,
// whether its first child is a probability token.
func IsProb(x Elem) bool {
	n, ok := x.(*Node)
	if !ok || len(n.Children) == 0 {
		return false
	}
	t, ok := n.Children[0].(*Token)
	return ok && t.Kind == KindProb
}

func signOf(n *Node) Sign {
	if len(n.Children) > 0 {
		if t, ok := n.Children[0].(*Token); ok && t.Kind == KindNeg {
			return Negative
		}
	}
	return Positive
}

// AtomSign returns the polarity of an atom literal, or NotApplicable
// when x is not an atom.
func AtomSign(x Elem) Sign {
	if !IsAtom(x) {
		return NotApplicable
	}
	return signOf(x.(*Node))
}

// PredSign returns the polarity of a predicate literal, or
// NotApplicable when x is not a predicate.
func PredSign(x Elem) Sign {
	if !IsPred(x) {
		return NotApplicable
	}
	return signOf(x.(*Node))
}

// ExpandInterval returns the inclusive integer bounds of an interval
// node. Anything other than a well-formed interval is a contract
// violation reported as ErrInvalidNode.
func ExpandInterval(x Elem) (int, int, error) {
	n, ok := x.(*Node)
	if !ok || n.Kind != KindInterval {
		return 0, 0, fmt.Errorf("%w: expected interval, got %s", ErrInvalidNode, x.ElemKind())
	}
	if len(n.Children) != 2 {
		return 0, 0, fmt.Errorf("%w: interval has %d children, want 2", ErrInvalidNode, len(n.Children))
	}
	lo, okLo := n.Children[0].(*Token)
	hi, okHi := n.Children[1].(*Token)
	if !okLo || !okHi {
		return 0, 0, fmt.Errorf("%w: interval bounds must be tokens", ErrInvalidNode)
	}
	l, err := strconv.Atoi(lo.Text)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: lower bound %q is not an integer", ErrInvalidNode, lo.Text)
	}
	u, err := strconv.Atoi(hi.Text)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: upper bound %q is not an integer", ErrInvalidNode, hi.Text)
	}
	return l, u, nil
}
