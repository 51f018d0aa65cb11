package ledger

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

var (
	ErrUnavailable       = errors.New("ledger unavailable")
	ErrReverted          = errors.New("transaction reverted")
	ErrMalformedResponse = errors.New("malformed ledger response")
)

// mapError classifies transport and execution failures. Context errors stay
// matchable with errors.Is next to ErrUnavailable.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrReverted) {
		return err
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	case errors.Is(err, syscall.ECONNREFUSED), errors.As(err, &netErr):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	case strings.Contains(err.Error(), "execution reverted"):
		return fmt.Errorf("%w: %w", ErrReverted, err)
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
