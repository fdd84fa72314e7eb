// Package validator implements the message validator (spec.md component
// C2): structural, encoding, signature, semantic and authorization-binding
// checks, in the order spec.md §4.1 specifies.
package validator

import "errors"

// Failure is a typed, non-retryable validation failure (spec.md §4.1,
// §7: "Rejection errors ... Not retried. Logged; counter incremented per
// kind.").
type Failure struct {
	Kind Kind
	err  error
}

func (f *Failure) Error() string {
	if f.err != nil {
		return f.Kind.String() + ": " + f.err.Error()
	}
	return f.Kind.String()
}

func (f *Failure) Unwrap() error { return f.err }

func newFailure(kind Kind, err error) *Failure {
	return &Failure{Kind: kind, err: err}
}

// Kind enumerates the failure kinds of spec.md §4.1.
type Kind uint8

const (
	KindMalformedBytes Kind = iota
	KindHashMismatch
	KindBadSignature
	KindUnauthorizedSigner
	KindBodyConstraintViolated
	KindUnknownFid
	KindFutureTimestamp
	KindWrongNetwork
)

func (k Kind) String() string {
	switch k {
	case KindMalformedBytes:
		return "MalformedBytes"
	case KindHashMismatch:
		return "HashMismatch"
	case KindBadSignature:
		return "BadSignature"
	case KindUnauthorizedSigner:
		return "UnauthorizedSigner"
	case KindBodyConstraintViolated:
		return "BodyConstraintViolated"
	case KindUnknownFid:
		return "UnknownFid"
	case KindFutureTimestamp:
		return "FutureTimestamp"
	case KindWrongNetwork:
		return "WrongNetwork"
	default:
		return "Unknown"
	}
}

// IsKind reports whether err is a *Failure of the given kind.
func IsKind(err error, kind Kind) bool {
	var f *Failure
	if !errors.As(err, &f) {
		return false
	}
	return f.Kind == kind
}
