package connection

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SessionDriver adapts a prompt-framed Session to the ProtocolDriver
// interface. Commands run strictly one at a time in issue order.
type SessionDriver struct {
	session *Session
	timeout time.Duration
}

func NewSessionDriver(session *Session, timeout time.Duration) *SessionDriver {
	if timeout <= 0 {
		timeout = SessionCapability.Timeout
	}
	return &SessionDriver{session: session, timeout: timeout}
}

func (d *SessionDriver) ProtocolType() Protocol {
	return ProtocolSSH
}

func (d *SessionDriver) GetCapability() ProtocolCapability {
	return SessionCapability
}

// Session exposes the underlying session for callers that need the raw
// Execute contract.
func (d *SessionDriver) Session() *Session {
	return d.session
}

func (d *SessionDriver) Execute(ctx context.Context, req *ProtocolRequest) (*ProtocolResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}
	if req.CommandType != CommandTypeCommands {
		return nil, ErrUnsupportedCommandType
	}
	cmds, ok := req.Payload.([]string)
	if !ok {
		return nil, fmt.Errorf("invalid commands payload")
	}

	timeout := d.timeout
	if ctx != nil {
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	var out strings.Builder
	for i, cmd := range cmds {
		result, err := d.session.Execute(cmd, timeout)
		if err != nil {
			return nil, err
		}
		out.WriteString(result)
		if i < len(cmds)-1 {
			out.WriteString("\n")
		}
	}
	return &ProtocolResponse{Success: true, RawData: []byte(out.String())}, nil
}

func (d *SessionDriver) Close() error {
	return d.session.Close()
}
