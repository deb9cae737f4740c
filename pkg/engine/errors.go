package engine

import (
	"github.com/relcypher/graphengine/pkg/eval"
	"github.com/relcypher/graphengine/pkg/params"
	"github.com/relcypher/graphengine/pkg/parser"
)

// Kind is one of spec §7's eight error categories.
type Kind string

const (
	ParseErrorKind         Kind = "ParseError"
	UnsupportedQueryKind   Kind = "UnsupportedQuery"
	UnboundVariableKind    Kind = "UnboundVariable"
	TypeMismatchKind       Kind = "TypeMismatch"
	ConstraintViolationKind Kind = "ConstraintViolation"
	InvalidParameterKind   Kind = "InvalidParameter"
	BackendErrorKind       Kind = "BackendError"
	InternalErrorKind      Kind = "InternalError"
)

// Error is engine's own failure shape. Every package beneath it returns
// ordinary Go errors (pkg/eval.Error, pkg/parser.ParseError,
// pkg/params.ParseError, or a bare error surfacing from pkg/relstore);
// classify is the one place that reconciles them into spec §7's Kind enum,
// so nothing downstream of pkg/engine needs to know this enum exists.
type Error struct {
	Kind    Kind
	Message string
	Line    int
	Col     int
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Message }

// classify turns any error this package sees into an *Error. A type this
// switch doesn't recognize (relstore's own ErrNotFound/ErrAlreadyExists/
// ErrInvalidData sentinels, or a badger error bubbling straight up) is
// BackendError: spec §7 names that Kind for exactly "propagated from
// Relational Backend" failures.
func classify(err error) *Error {
	if err == nil {
		return nil
	}
	switch x := err.(type) {
	case *Error:
		return x
	case *parser.ParseError:
		return &Error{Kind: ParseErrorKind, Message: x.Msg, Line: x.Line, Col: x.Col}
	case *params.ParseError:
		return &Error{Kind: InvalidParameterKind, Message: x.Error()}
	case *eval.Error:
		return &Error{Kind: Kind(x.Kind), Message: x.Message}
	}
	return &Error{Kind: BackendErrorKind, Message: err.Error()}
}
