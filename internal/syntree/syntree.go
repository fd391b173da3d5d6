// Package syntree defines the syntax tree produced by parsing a
// probabilistic logic program, together with the classification and
// groundedness helpers the normalizer runs over it. Trees are built by
// the parser but may also be constructed directly through NewNode and
// NewToken.
package syntree

// Kind tags every tree element with its grammar production or terminal
// class. The set is closed: the transformer dispatches exhaustively on
// it and treats anything unknown as a contract violation.
type Kind int

const (
	KindInvalid Kind = iota

	// Production kinds carried by interior nodes.
	KindPLP        // top-level program, children are statements
	KindFact       // atom.
	KindProbFact   // p::atom.
	KindRule       // head :- body.
	KindProbRule   // p::head :- body.
	KindCredalFact // [l, u]::atom.
	KindConstraint // :- body.
	KindQuery      // ?- literals.
	KindAtom       // propositional literal, possibly negated
	KindGroundAtom // lexically ground variant of KindAtom
	KindPred       // predicate literal with arguments
	KindGroundPred // lexically ground variant of KindPred
	KindHead       // probabilistic rule head: functor plus arguments
	KindBody       // conjunction of literals
	KindBinOp      // comparison literal, e.g. X < 3
	KindInterval   // integer range l..u

	// Terminal kinds carried by leaf tokens.
	KindID     // lowercase identifier
	KindVar    // uppercase-initial variable
	KindProb   // probability decimal
	KindInt    // integer literal
	KindString // quoted string constant
	KindOp     // comparison or arithmetic operator
	KindNeg    // the "not" keyword
)

var kindNames = [...]string{
	KindInvalid:    "invalid",
	KindPLP:        "plp",
	KindFact:       "fact",
	KindProbFact:   "pfact",
	KindRule:       "rule",
	KindProbRule:   "prule",
	KindCredalFact: "cfact",
	KindConstraint: "constraint",
	KindQuery:      "query",
	KindAtom:       "atom",
	KindGroundAtom: "gratom",
	KindPred:       "pred",
	KindGroundPred: "grpred",
	KindHead:       "head",
	KindBody:       "body",
	KindBinOp:      "bop",
	KindInterval:   "interval",
	KindID:         "ID",
	KindVar:        "VAR",
	KindProb:       "PROB",
	KindInt:        "INT",
	KindString:     "STRING",
	KindOp:         "OP",
	KindNeg:        "NEG",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// Elem is one element of the tree: an interior *Node or a leaf *Token.
// Elements have pointer identity, stable for the lifetime of one parse.
// The groundedness walk and the loader's merge dedup both rely on that
// identity, so elements must not be copied while a tree is in use.
type Elem interface {
	ElemKind() Kind
	isElem()
}

// Node is an interior node holding the ordered children of one
// production. Children are either nested nodes or leaf tokens.
type Node struct {
	Kind     Kind
	Children []Elem
}

// Token is a leaf carrying the matched text of one terminal. Line and
// Col are 1-based source coordinates; zero when the token was built by
// hand rather than scanned.
type Token struct {
	Kind Kind
	Text string
	Line int
	Col  int
}

func (n *Node) ElemKind() Kind {
	if n == nil {
		return KindInvalid
	}
	return n.Kind
}

func (n *Node) isElem() {}

func (t *Token) ElemKind() Kind {
	if t == nil {
		return KindInvalid
	}
	return t.Kind
}

func (t *Token) isElem() {}

// NewNode builds an interior node from its ordered children.
func NewNode(kind Kind, children ...Elem) *Node {
	return &Node{Kind: kind, Children: children}
}

// NewToken builds a leaf token without position information.
func NewToken(kind Kind, text string) *Token {
	return &Token{Kind: kind, Text: text}
}

// Find walks the subtree under x depth-first and returns every element
// matching pred, in visit order. Shared subtrees are visited once.
func Find(x Elem, pred func(Elem) bool) []Elem {
	var out []Elem
	seen := make(map[Elem]bool)
	var visit func(Elem)
	visit = func(e Elem) {
		if e == nil || seen[e] {
			return
		}
		seen[e] = true
		if pred(e) {
			out = append(out, e)
		}
		if n, ok := e.(*Node); ok {
			for _, c := range n.Children {
				visit(c)
			}
		}
	}
	visit(x)
	return out
}

// Facts returns every fact node under x.
func Facts(x Elem) []Elem { return Find(x, IsFact) }

// PFacts returns every probabilistic fact node under x.
func PFacts(x Elem) []Elem { return Find(x, IsPFact) }

// Rules returns every rule node under x.
func Rules(x Elem) []Elem { return Find(x, IsRule) }

// PRules returns every probabilistic rule node under x.
func PRules(x Elem) []Elem { return Find(x, IsPRule) }

// Probs returns every probabilistic fact or rule node under x.
func Probs(x Elem) []Elem {
	return Find(x, func(e Elem) bool { return IsPFact(e) || IsPRule(e) })
}
