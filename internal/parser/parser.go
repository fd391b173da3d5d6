// Package parser turns probabilistic logic program text into syntax
// trees. The surface syntax covers facts, rules, integrity constraints,
// probabilistic facts and rules, credal facts, queries, comparison
// literals and integer intervals:
//
//	c(1).
//	0.3::a.
//	0.5::b(X) :- c(X).
//	[0.2, 0.5]::d.
//	:- b(1).
//	?- a, not b.
//
// Comments run from % to the end of the line. Variables start with an
// uppercase letter, identifiers with a lowercase one.
package parser

import (
	"fmt"

	"credal/internal/syntree"
)

// Parse scans and parses one source into its syntax tree.
func Parse(src string) (*syntree.Node, error) {
	toks, err := scan(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.program()
}

type parser struct {
	toks []lexed
	pos  int
}

func (p *parser) done() bool { return p.pos >= len(p.toks) }

func (p *parser) at(id int) bool {
	return p.pos < len(p.toks) && p.toks[p.pos].id == id
}

func (p *parser) peekAt(offset, id int) bool {
	i := p.pos + offset
	return i < len(p.toks) && p.toks[i].id == id
}

func (p *parser) advance() lexed {
	t := p.toks[p.pos]
	p.pos++
	return t
}

func (p *parser) expect(id int) (lexed, error) {
	if p.done() {
		return lexed{}, p.errEOF(tokenName(id))
	}
	if !p.at(id) {
		t := p.toks[p.pos]
		return lexed{}, &ParseError{Line: t.line, Col: t.col,
			Msg: fmt.Sprintf("expected %s, got %q", tokenName(id), t.text)}
	}
	return p.advance(), nil
}

func (p *parser) errEOF(what string) error {
	var line, col int
	if n := len(p.toks); n > 0 {
		line, col = p.toks[n-1].line, p.toks[n-1].col
	}
	return &ParseError{Line: line, Col: col, Msg: "unexpected end of input, expected " + what}
}

func syn(kind syntree.Kind, t lexed) *syntree.Token {
	return &syntree.Token{Kind: kind, Text: t.text, Line: t.line, Col: t.col}
}

func (p *parser) program() (*syntree.Node, error) {
	var stmts []syntree.Elem
	for !p.done() {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return syntree.NewNode(syntree.KindPLP, stmts...), nil
}

func (p *parser) statement() (*syntree.Node, error) {
	switch {
	case p.at(tokProb), p.at(tokInt) && p.peekAt(1, tokProbSep):
		return p.probStatement()
	case p.at(tokLBrack):
		return p.credalFact()
	case p.at(tokImplies):
		return p.constraint()
	case p.at(tokQuery):
		return p.query()
	case p.at(tokID):
		return p.factOrRule()
	}
	if p.done() {
		return nil, p.errEOF("a statement")
	}
	t := p.toks[p.pos]
	return nil, &ParseError{Line: t.line, Col: t.col,
		Msg: fmt.Sprintf("unexpected %q at statement start", t.text)}
}

// probStatement parses p::atom. and p::head :- body. statements. The
// probability may be written as a decimal or a bare integer.
func (p *parser) probStatement() (*syntree.Node, error) {
	prob := p.advance()
	if _, err := p.expect(tokProbSep); err != nil {
		return nil, err
	}
	name, err := p.expect(tokID)
	if err != nil {
		return nil, err
	}
	var args []syntree.Elem
	hasArgs := false
	if p.at(tokLParen) {
		hasArgs = true
		if args, err = p.argList(); err != nil {
			return nil, err
		}
	}
	probTok := syn(syntree.KindProb, prob)
	if p.at(tokImplies) {
		p.advance()
		b, err := p.body()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokDot); err != nil {
			return nil, err
		}
		children := append([]syntree.Elem{syn(syntree.KindID, name)}, args...)
		hd := syntree.NewNode(syntree.KindHead, children...)
		return syntree.NewNode(syntree.KindProbRule, probTok, hd, b), nil
	}
	if _, err := p.expect(tokDot); err != nil {
		return nil, err
	}
	return syntree.NewNode(syntree.KindProbFact, probTok, p.literalNode(nil, name, args, hasArgs)), nil
}

func (p *parser) factOrRule() (*syntree.Node, error) {
	head, err := p.atomOrPred(false)
	if err != nil {
		return nil, err
	}
	if p.at(tokImplies) {
		p.advance()
		b, err := p.body()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokDot); err != nil {
			return nil, err
		}
		return syntree.NewNode(syntree.KindRule, head, b), nil
	}
	if _, err := p.expect(tokDot); err != nil {
		return nil, err
	}
	return syntree.NewNode(syntree.KindFact, head), nil
}

func (p *parser) constraint() (*syntree.Node, error) {
	p.advance()
	b, err := p.body()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokDot); err != nil {
		return nil, err
	}
	return syntree.NewNode(syntree.KindConstraint, b), nil
}

func (p *parser) query() (*syntree.Node, error) {
	p.advance()
	var lits []syntree.Elem
	for {
		l, err := p.atomOrPred(true)
		if err != nil {
			return nil, err
		}
		lits = append(lits, l)
		if p.at(tokComma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(tokDot); err != nil {
		return nil, err
	}
	return syntree.NewNode(syntree.KindQuery, lits...), nil
}

func (p *parser) credalFact() (*syntree.Node, error) {
	if _, err := p.expect(tokLBrack); err != nil {
		return nil, err
	}
	lo, err := p.probBound()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokComma); err != nil {
		return nil, err
	}
	hi, err := p.probBound()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRBrack); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokProbSep); err != nil {
		return nil, err
	}
	lit, err := p.atomOrPred(false)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokDot); err != nil {
		return nil, err
	}
	return syntree.NewNode(syntree.KindCredalFact, lo, hi, lit), nil
}

func (p *parser) probBound() (*syntree.Token, error) {
	if p.at(tokProb) || p.at(tokInt) {
		return syn(syntree.KindProb, p.advance()), nil
	}
	if p.done() {
		return nil, p.errEOF("a probability bound")
	}
	t := p.toks[p.pos]
	return nil, &ParseError{Line: t.line, Col: t.col,
		Msg: fmt.Sprintf("expected a probability bound, got %q", t.text)}
}

func (p *parser) body() (*syntree.Node, error) {
	var lits []syntree.Elem
	for {
		l, err := p.bodyLiteral()
		if err != nil {
			return nil, err
		}
		lits = append(lits, l)
		if p.at(tokComma) {
			p.advance()
			continue
		}
		break
	}
	return syntree.NewNode(syntree.KindBody, lits...), nil
}

// bodyLiteral parses one conjunct: a possibly negated atom or
// predicate, or a comparison between two terms.
func (p *parser) bodyLiteral() (*syntree.Node, error) {
	if p.at(tokNot) {
		return p.atomOrPred(true)
	}
	if p.at(tokID) && !p.peekAt(1, tokOp) {
		return p.atomOrPred(true)
	}
	return p.binOp()
}

func (p *parser) binOp() (*syntree.Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	op, err := p.expect(tokOp)
	if err != nil {
		return nil, err
	}
	right, err := p.term()
	if err != nil {
		return nil, err
	}
	return syntree.NewNode(syntree.KindBinOp, left, syn(syntree.KindOp, op), right), nil
}

func (p *parser) atomOrPred(allowNeg bool) (*syntree.Node, error) {
	var neg *lexed
	if p.at(tokNot) {
		if !allowNeg {
			t := p.toks[p.pos]
			return nil, &ParseError{Line: t.line, Col: t.col, Msg: "negation is not allowed here"}
		}
		n := p.advance()
		neg = &n
	}
	name, err := p.expect(tokID)
	if err != nil {
		return nil, err
	}
	if p.at(tokLParen) {
		args, err := p.argList()
		if err != nil {
			return nil, err
		}
		return p.literalNode(neg, name, args, true), nil
	}
	return p.literalNode(neg, name, nil, false), nil
}

// literalNode assembles an atom or predicate node. The ground kind
// variants are chosen by inspecting the parsed arguments, so trees
// coming out of the parser already classify lexical groundedness.
func (p *parser) literalNode(neg *lexed, name lexed, args []syntree.Elem, hasArgs bool) *syntree.Node {
	var children []syntree.Elem
	if neg != nil {
		children = append(children, syn(syntree.KindNeg, *neg))
	}
	children = append(children, syn(syntree.KindID, name))
	if !hasArgs {
		return syntree.NewNode(syntree.KindGroundAtom, children...)
	}
	children = append(children, args...)
	kind := syntree.KindGroundPred
	if syntree.IsNonGround(args...) {
		kind = syntree.KindPred
	}
	return syntree.NewNode(kind, children...)
}

func (p *parser) argList() ([]syntree.Elem, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	var args []syntree.Elem
	for {
		t, err := p.term()
		if err != nil {
			return nil, err
		}
		args = append(args, t)
		if p.at(tokComma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	return args, nil
}

// term parses one argument position: a constant, a variable, or an
// integer interval l..u.
func (p *parser) term() (syntree.Elem, error) {
	if p.done() {
		return nil, p.errEOF("a term")
	}
	t := p.toks[p.pos]
	switch t.id {
	case tokID:
		p.advance()
		return syn(syntree.KindID, t), nil
	case tokVar:
		p.advance()
		return syn(syntree.KindVar, t), nil
	case tokString:
		p.advance()
		return syn(syntree.KindString, t), nil
	case tokProb:
		p.advance()
		return syn(syntree.KindProb, t), nil
	case tokInt:
		p.advance()
		if p.at(tokDots) {
			p.advance()
			hi, err := p.expect(tokInt)
			if err != nil {
				return nil, err
			}
			return syntree.NewNode(syntree.KindInterval, syn(syntree.KindInt, t), syn(syntree.KindInt, hi)), nil
		}
		return syn(syntree.KindInt, t), nil
	}
	return nil, &ParseError{Line: t.line, Col: t.col,
		Msg: fmt.Sprintf("expected a term, got %q", t.text)}
}
