package pdf

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the library reports.
type ErrorKind int

const (
	KindFileLoad ErrorKind = iota + 1
	KindInvalidFormat
	KindInvalidInfoFile
	KindInvalidInput
	KindOutOfRange
	KindPolicy
	KindInitialization
	KindNotSupport
)

// Sentinels for errors.Is matching. An *Error matches the sentinel of its kind.
var (
	ErrFileLoad        = errors.New("file load error")
	ErrInvalidFormat   = errors.New("invalid format")
	ErrInvalidInfoFile = errors.New("invalid info file")
	ErrInvalidInput    = errors.New("invalid input")
	ErrOutOfRange      = errors.New("out of range")
	ErrPolicy          = errors.New("unsupported policy")
	ErrInitialization  = errors.New("initialization error")
	ErrNotSupport      = errors.New("not supported")
)

var kindSentinels = map[ErrorKind]error{
	KindFileLoad:        ErrFileLoad,
	KindInvalidFormat:   ErrInvalidFormat,
	KindInvalidInfoFile: ErrInvalidInfoFile,
	KindInvalidInput:    ErrInvalidInput,
	KindOutOfRange:      ErrOutOfRange,
	KindPolicy:          ErrPolicy,
	KindInitialization:  ErrInitialization,
	KindNotSupport:      ErrNotSupport,
}

func (k ErrorKind) String() string {
	if s, ok := kindSentinels[k]; ok {
		return s.Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Class groups kinds by remediation: "data" errors need a fixed dataset,
// "query" errors need different arguments, "config" errors need different options.
func (k ErrorKind) Class() string {
	switch k {
	case KindFileLoad, KindInvalidFormat, KindInvalidInfoFile:
		return "data"
	case KindInvalidInput, KindOutOfRange:
		return "query"
	default:
		return "config"
	}
}

// Error is the single error type returned across package boundaries.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// Errorf builds an *Error of the given kind. The format supports %w.
func Errorf(kind ErrorKind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap tags err with kind unless it already carries one.
func Wrap(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
