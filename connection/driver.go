package connection

import (
	"context"
)

// ProtocolDriver is the uniform face over the prompt-framed SSH session and
// the scrapligo-managed driver.
type ProtocolDriver interface {
	ProtocolType() Protocol
	Close() error
	Execute(ctx context.Context, req *ProtocolRequest) (*ProtocolResponse, error)
	GetCapability() ProtocolCapability
}

type ProtocolRequest struct {
	CommandType CommandType
	Payload     interface{} // []string for CommandTypeCommands
}

type ProtocolResponse struct {
	Success bool
	RawData []byte
}
