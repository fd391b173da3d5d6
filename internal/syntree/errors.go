package syntree

import "errors"

var (
	// ErrInvalidNode reports a tree element whose shape violates the
	// contract of the operation applied to it. It marks a programming
	// error in the caller, not bad user input.
	ErrInvalidNode = errors.New("invalid syntax tree node")
)
