package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/sony/gobreaker/v2"

	"github.com/jsamuelsen11/go-envelope-gateway/internal/domain"
)

// translateError maps a transport failure onto a domain sentinel while
// keeping the original error in the chain for errors.Is and logging.
//
//   - open or saturated breaker, refused dial -> domain.ErrUnavailable
//   - deadline or network timeout             -> domain.ErrTimeout
//   - anything else                           -> domain.ErrUpstream
func translateError(err error) error {
	if err == nil {
		return domain.ErrUpstream
	}

	var netErr net.Error
	var opErr *net.OpError

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	case errors.As(err, &opErr) && opErr.Op == "dial":
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
}
