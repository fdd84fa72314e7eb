package diffsync

import "errors"

// ErrPeerFaulty is returned immediately for a peer the Tracker has
// already marked faulty this session (spec.md §4.5).
var ErrPeerFaulty = errors.New("diffsync: peer marked faulty for this session")

// Kind enumerates the integrity-error kinds of spec.md §7 that a
// misbehaving sync peer can trigger. Detecting one aborts the current
// diff-sync cycle and marks the peer faulty.
type Kind uint8

const (
	KindTrieRootMismatch Kind = iota
	KindSyncIdNotFound
	KindMessageRootMismatch
)

func (k Kind) String() string {
	switch k {
	case KindTrieRootMismatch:
		return "TrieRootMismatch"
	case KindSyncIdNotFound:
		return "SyncIdNotFound"
	case KindMessageRootMismatch:
		return "MessageRootMismatch"
	default:
		return "Unknown"
	}
}

// IntegrityError signals a peer that advertised state inconsistent with
// what it actually served (spec.md §7: "Integrity errors (peer
// misbehaving)"). Callers that observe one should mark the offending
// peer faulty via Tracker.MarkFaulty.
type IntegrityError struct {
	Kind Kind
	err  error
}

func newIntegrityError(kind Kind, err error) *IntegrityError {
	return &IntegrityError{Kind: kind, err: err}
}

func (e *IntegrityError) Error() string {
	if e.err != nil {
		return "diffsync: " + e.Kind.String() + ": " + e.err.Error()
	}
	return "diffsync: " + e.Kind.String()
}

func (e *IntegrityError) Unwrap() error { return e.err }

// TransientError wraps a peer/transport failure the subsystem retries
// internally with bounded backoff before surfacing to the caller
// (spec.md §7: "Transient errors (peer/I/O) ... Retried ... surfaced to
// the caller only after exhaustion."). Peer implementations should wrap
// retryable failures (timeouts, connection resets) in a TransientError;
// anything else is treated as non-retryable.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "diffsync: transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

func isTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}
