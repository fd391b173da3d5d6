package parser

import "fmt"

// ParseError reports where reading a source failed and why. Scanner
// failures stay reachable through Unwrap.
type ParseError struct {
	Line int
	Col  int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Col, e.Msg)
	}
	return "parse error: " + e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }
