package gocas

import (
	"fmt"

	"github.com/njchilds90/gocas/number"
	"github.com/pkg/errors"
)

// ============================================================
// MathError
// ============================================================

// ErrorKind classifies a MathError.
type ErrorKind uint8

const (
	KindDivisionByZero ErrorKind = iota
	KindDomainError
	KindPole
	KindBranchCut
	KindUndefined
	KindNumericOverflow
	KindNotImplemented
	KindNoSolution
)

var errorKindNames = [...]string{
	KindDivisionByZero:  "DivisionByZero",
	KindDomainError:     "DomainError",
	KindPole:            "Pole",
	KindBranchCut:       "BranchCut",
	KindUndefined:       "Undefined",
	KindNumericOverflow: "NumericOverflow",
	KindNotImplemented:  "NotImplemented",
	KindNoSolution:      "NoSolution",
}

func (k ErrorKind) String() string { return errorKindNames[k] }

// MathError is the typed failure returned by Evaluate, the matrix engine and
// the tool layer. Only the fields relevant to Kind are set.
type MathError struct {
	Kind       ErrorKind
	Operation  string
	Function   string
	Value      string
	At         string
	Expression string
	Reason     string
	Feature    string
}

func (e *MathError) Error() string {
	switch e.Kind {
	case KindDivisionByZero:
		if e.Operation != "" {
			return e.Operation + ": division by zero"
		}
		return "division by zero"
	case KindDomainError:
		msg := fmt.Sprintf("domain error in %s", e.Operation)
		if e.Value != "" {
			msg += " at " + e.Value
		}
		if e.Reason != "" {
			msg += ": " + e.Reason
		}
		return msg
	case KindPole:
		return fmt.Sprintf("%s has a pole at %s", e.Function, e.At)
	case KindBranchCut:
		return fmt.Sprintf("%s is not real on its branch cut at %s", e.Function, e.Value)
	case KindUndefined:
		return fmt.Sprintf("%s is undefined: %s", e.Expression, e.Reason)
	case KindNumericOverflow:
		return "numeric overflow: " + e.Reason
	case KindNotImplemented:
		return "not implemented: " + e.Feature
	case KindNoSolution:
		return e.Operation + ": no solution"
	}
	return "math error"
}

// Is matches any MathError of the same kind, so
// errors.Is(err, ErrDivisionByZero) works on wrapped errors.
func (e *MathError) Is(target error) bool {
	t, ok := target.(*MathError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrDivisionByZero  = &MathError{Kind: KindDivisionByZero}
	ErrDomain          = &MathError{Kind: KindDomainError}
	ErrPole            = &MathError{Kind: KindPole}
	ErrBranchCut       = &MathError{Kind: KindBranchCut}
	ErrUndefined       = &MathError{Kind: KindUndefined}
	ErrNumericOverflow = &MathError{Kind: KindNumericOverflow}
	ErrNotImplemented  = &MathError{Kind: KindNotImplemented}
	ErrNoSolution      = &MathError{Kind: KindNoSolution}
)

func divisionByZero(op string) error { return errors.WithStack(&MathError{Kind: KindDivisionByZero, Operation: op}) }

func domainError(op, value, reason string) error {
	return errors.WithStack(&MathError{Kind: KindDomainError, Operation: op, Value: value, Reason: reason})
}

func poleError(fn, at string) error {
	return errors.WithStack(&MathError{Kind: KindPole, Function: fn, At: at})
}

func branchCutError(fn, value string) error {
	return errors.WithStack(&MathError{Kind: KindBranchCut, Function: fn, Value: value})
}

func undefinedError(expr, reason string) error {
	return errors.WithStack(&MathError{Kind: KindUndefined, Expression: expr, Reason: reason})
}

func notImplemented(feature string) error {
	return errors.WithStack(&MathError{Kind: KindNotImplemented, Feature: feature})
}

func noSolution(op string) error {
	return errors.WithStack(&MathError{Kind: KindNoSolution, Operation: op})
}

// fromArith converts a number tower error into a MathError.
func fromArith(op string, err error) error {
	if err == nil {
		return nil
	}
	if isDivisionByZero(err) {
		return divisionByZero(op)
	}
	var of *number.OverflowError
	if errors.As(err, &of) {
		return errors.WithStack(&MathError{Kind: KindNumericOverflow, Reason: of.Reason, Operation: op})
	}
	return errors.Wrap(err, op)
}

func isDivisionByZero(err error) bool {
	return errors.Is(err, number.ErrDivisionByZero)
}
