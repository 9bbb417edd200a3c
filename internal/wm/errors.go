package wm

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb"

	"github.com/macwm/macwm/internal/x11"
)

// ErrAnotherWM is returned by Start when another client already redirects
// the root window's substructure.
var ErrAnotherWM = errors.New("another window manager is already running")

// InvariantError is the panic value for broken internal invariants, such as
// framing a client twice. It signals a bug, never a runtime condition.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "wm invariant violated: " + e.Msg
}

func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(&InvariantError{Msg: fmt.Sprintf(format, args...)})
	}
}

// reportXError is the error handler installed for normal operation. It logs
// and returns; the failed request simply has no effect.
func (m *Manager) reportXError(err xgb.Error) {
	info := x11.DescribeError(err)
	m.log.Warn("X protocol error",
		"request", info.MajorOpcode,
		"request_name", info.Request(),
		"error_code", info.Code,
		"error", info.Name,
		"resource", fmt.Sprintf("0x%x", info.ResourceID),
	)
}

// report logs a failed transport call. Protocol errors are routed through
// the X error handler so they are formatted the same way wherever they
// surface.
func (m *Manager) report(op string, err error) {
	if err == nil {
		return
	}
	var xerr xgb.Error
	if errors.As(err, &xerr) {
		m.log.Debug("request failed", "op", op)
		m.reportXError(xerr)
		return
	}
	m.log.Warn("request failed", "op", op, "error", err)
}
