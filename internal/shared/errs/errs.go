// Package errs defines the error taxonomy shared by the host probes, the
// file action engine and the HTTP dispatch layer.
//
// Kinds:
//   - NotFound: target path or PID absent
//   - PermissionDenied: the agent lacks access
//   - InvalidFormat: a mandatory field could not be parsed
//   - AlreadySatisfied: goal state already reached (internal, never surfaced)
//   - ZeroDivision: derived metric undefined for the input
//   - InvalidArgument: the caller supplied an unusable request
//   - Other: any remaining I/O failure
//
// Example Usage:
//
//	if err != nil {
//	    return errs.FromIO("probe", path, err)
//	}
//	if errors.Is(err, errs.ErrNotFound) { ... }
package errs

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Kind classifies an error for the caller of the core.
type Kind int

const (
	KindOther Kind = iota
	KindNotFound
	KindPermissionDenied
	KindInvalidFormat
	KindAlreadySatisfied
	KindZeroDivision
	KindInvalidArgument
)

// String returns the wire name of the kind
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindPermissionDenied:
		return "permission_denied"
	case KindInvalidFormat:
		return "invalid_format"
	case KindAlreadySatisfied:
		return "already_satisfied"
	case KindZeroDivision:
		return "zero_division"
	case KindInvalidArgument:
		return "invalid_argument"
	default:
		return "other"
	}
}

// MarshalText encodes the kind by name
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name; unknown names decode as KindOther
func (k *Kind) UnmarshalText(text []byte) error {
	name := string(text)
	for candidate := KindOther; candidate <= KindInvalidArgument; candidate++ {
		if candidate.String() == name {
			*k = candidate
			return nil
		}
	}
	*k = KindOther
	return nil
}

// Sentinels for errors.Is matching.
var (
	ErrNotFound         = &sentinel{KindNotFound}
	ErrPermissionDenied = &sentinel{KindPermissionDenied}
	ErrInvalidFormat    = &sentinel{KindInvalidFormat}
	ErrAlreadySatisfied = &sentinel{KindAlreadySatisfied}
	ErrZeroDivision     = &sentinel{KindZeroDivision}
	ErrInvalidArgument  = &sentinel{KindInvalidArgument}
	ErrOther            = &sentinel{KindOther}
)

type sentinel struct {
	kind Kind
}

func (s *sentinel) Error() string {
	return s.kind.String()
}

// Error is a classified failure of a single operation.
type Error struct {
	Op   string
	Path string
	Kind Kind
	Err  error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e's kind
func (e *Error) Is(target error) bool {
	s, ok := target.(*sentinel)
	return ok && s.kind == e.Kind
}

// New builds a classified error.
func New(kind Kind, op, path string, err error) *Error {
	return &Error{Op: op, Path: path, Kind: kind, Err: err}
}

// Newf builds a classified error with a formatted cause.
func Newf(kind Kind, op, path, format string, args ...interface{}) *Error {
	return &Error{Op: op, Path: path, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// FromIO classifies an I/O error returned by the os or unix packages.
// A nil err yields nil.
func FromIO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	return &Error{Op: op, Path: path, Kind: classify(err), Err: err}
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR), errors.Is(err, syscall.ESRCH):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission), errors.Is(err, syscall.EACCES), errors.Is(err, syscall.EPERM):
		return KindPermissionDenied
	default:
		return KindOther
	}
}

// KindOf returns the kind of the first classified error in err's chain,
// falling back to raw I/O classification.
func KindOf(err error) Kind {
	if err == nil {
		return KindOther
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	var s *sentinel
	if errors.As(err, &s) {
		return s.kind
	}
	return classify(err)
}
