package remote

import (
	"context"
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// Error is an application-level rejection from the server (4xx/5xx with a
// response body). It must propagate to the caller: applying a rejected
// mutation locally would diverge from server truth.
type Error struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf(`response %d "%s"`, e.StatusCode, e.Message)
}

// IsNotFound reports a 404.
func (e *Error) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsNetworkError reports whether err is a transport-level failure: the
// request never produced a response. Only these trigger offline fallback.
// A server rejection (*Error) is never a network error.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var rejection *Error
	if errors.As(err, &rejection) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	// url.Error wraps dial/DNS failures that do not implement net.Error.
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return errors.Is(err, ErrUnreachable)
}

// ErrUnreachable marks failures the transport could not classify further.
var ErrUnreachable = errors.New("remote: server unreachable")
