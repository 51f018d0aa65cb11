package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophdiary/internal/client/codec"
)

// Failure kinds. Match them with errors.Is against a *SubmissionError or
// *QueryError.
var (
	ErrNoSigner       = errors.New("no signer session available")
	ErrInvalid        = errors.New("invalid entry")
	ErrRejected       = errors.New("submission rejected by signer")
	ErrAlreadyPending = errors.New("a submission is already pending")
	ErrLedgerFailure  = errors.New("ledger failure")
	ErrAbandoned      = errors.New("stopped waiting for confirmation")
	ErrUnreachable    = errors.New("ledger unreachable")
)

// SubmissionError describes why an entry was not (or not observably)
// committed. Validation is set for ErrInvalid; TxHash is set once the
// transaction has been broadcast.
type SubmissionError struct {
	Kind       error
	Validation *codec.ValidationError
	TxHash     string
	Cause      error
}

func (e *SubmissionError) Error() string {
	msg := e.Kind.Error()
	if e.TxHash != "" {
		msg = fmt.Sprintf("%s (tx %s)", msg, e.TxHash)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *SubmissionError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Retryable reports whether repeating the submission may succeed.
func (e *SubmissionError) Retryable() bool {
	return errors.Is(e.Kind, ErrLedgerFailure)
}

// QueryError is returned by QueryService.Refresh.
type QueryError struct {
	Kind  error
	Cause error
}

func (e *QueryError) Error() string {
	if e.Cause == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *QueryError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}
