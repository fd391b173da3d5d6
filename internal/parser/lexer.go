package parser

import (
	"fmt"
	"sync"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// Scanner token types. The scanner wraps every match into a
// *lexmachine.Token carrying one of these ids.
const (
	tokID = iota
	tokVar
	tokProb
	tokInt
	tokString
	tokOp
	tokNot
	tokDot
	tokDots
	tokComma
	tokLParen
	tokRParen
	tokLBrack
	tokRBrack
	tokImplies
	tokQuery
	tokProbSep
)

var tokenNames = map[int]string{
	tokID:      "identifier",
	tokVar:     "variable",
	tokProb:    "probability",
	tokInt:     "integer",
	tokString:  "string",
	tokOp:      "operator",
	tokNot:     "'not'",
	tokDot:     "'.'",
	tokDots:    "'..'",
	tokComma:   "','",
	tokLParen:  "'('",
	tokRParen:  "')'",
	tokLBrack:  "'['",
	tokRBrack:  "']'",
	tokImplies: "':-'",
	tokQuery:   "'?-'",
	tokProbSep: "'::'",
}

func tokenName(id int) string {
	if n, ok := tokenNames[id]; ok {
		return n
	}
	return fmt.Sprintf("token(%d)", id)
}

var (
	lexOnce   sync.Once
	sharedLex *lexmachine.Lexer
	lexErr    error
)

// newLexer compiles the scanner DFA once and shares it. A compiled
// lexer only ever hands out independent scanners, so sharing is safe
// across goroutines.
func newLexer() (*lexmachine.Lexer, error) {
	lexOnce.Do(func() {
		lex := lexmachine.NewLexer()
		lex.Add([]byte(`%[^\n]*`), skip)
		lex.Add([]byte(`( |\t|\n|\r)+`), skip)
		lex.Add([]byte(`::`), token(tokProbSep))
		lex.Add([]byte(`:-`), token(tokImplies))
		lex.Add([]byte(`\?-`), token(tokQuery))
		lex.Add([]byte(`\.\.`), token(tokDots))
		lex.Add([]byte(`not`), token(tokNot))
		lex.Add([]byte(`"[^"]*"`), token(tokString))
		lex.Add([]byte(`[0-9]+\.[0-9]+`), token(tokProb))
		lex.Add([]byte(`[a-z][a-zA-Z0-9_]*`), token(tokID))
		lex.Add([]byte(`[A-Z][a-zA-Z0-9_]*`), token(tokVar))
		lex.Add([]byte(`[0-9]+`), token(tokInt))
		lex.Add([]byte(`!=|<=|>=|=|<|>`), token(tokOp))
		lex.Add([]byte(`\.`), token(tokDot))
		lex.Add([]byte(`,`), token(tokComma))
		lex.Add([]byte(`\(`), token(tokLParen))
		lex.Add([]byte(`\)`), token(tokRParen))
		lex.Add([]byte(`\[`), token(tokLBrack))
		lex.Add([]byte(`\]`), token(tokRBrack))
		if err := lex.Compile(); err != nil {
			lexErr = fmt.Errorf("failed to compile scanner: %w", err)
			return
		}
		sharedLex = lex
	})
	return sharedLex, lexErr
}

func token(id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// lexed is one scanned token with its source position.
type lexed struct {
	id   int
	text string
	line int
	col  int
}

// scan tokenizes src, failing on the first unscannable input.
func scan(src string) ([]lexed, error) {
	lex, err := newLexer()
	if err != nil {
		return nil, err
	}
	s, err := lex.Scanner([]byte(src))
	if err != nil {
		return nil, &ParseError{Msg: "scanner setup failed", Err: err}
	}
	var out []lexed
	for tk, err, eof := s.Next(); !eof; tk, err, eof = s.Next() {
		if err != nil {
			if ui, ok := err.(*machines.UnconsumedInput); ok {
				return nil, &ParseError{
					Line: ui.FailLine,
					Col:  ui.FailColumn,
					Msg:  "unexpected character",
					Err:  err,
				}
			}
			return nil, &ParseError{Msg: "scan failed", Err: err}
		}
		lt := tk.(*lexmachine.Token)
		out = append(out, lexed{
			id:   lt.Type,
			text: lt.Value.(string),
			line: lt.StartLine,
			col:  lt.StartColumn,
		})
	}
	return out, nil
}
