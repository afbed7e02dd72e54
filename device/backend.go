package device

import (
	"time"

	"github.com/charlesren/switchconf/snmp"
)

// Kind names the class of device object a property belongs to.
type Kind string

const (
	KindVLAN      Kind = "vlan"
	KindPort      Kind = "port"
	KindInterface Kind = "interface"
)

// Property is a scalar attribute of a device object. Values cross the
// backend boundary as strings; the domain types convert.
type Property string

const (
	PropName         Property = "name"
	PropEnabled      Property = "enabled"
	PropOperational  Property = "operational"
	PropUntaggedVLAN Property = "untagged-vlan"
)

// Ref addresses one device object: a VLAN id, a port identifier or an
// interface identifier.
type Ref struct {
	Kind Kind
	ID   string
}

// PropertyBackend reads and writes scalar properties of device objects.
// Two adapters exist, one over the CLI session and one over the MIB client;
// domain objects bind to one at construction. Writing an empty string
// deconfigures properties that can be absent (names).
type PropertyBackend interface {
	Read(ref Ref, prop Property) (string, error)
	Write(ref Ref, prop Property, value string) error
}

// CommandRunner is the narrow session contract the CLI backend needs.
// *connection.Session satisfies it.
type CommandRunner interface {
	Execute(command string, timeout time.Duration) (string, error)
}

// QueryClient is the narrow MIB contract. *snmp.Client satisfies it.
type QueryClient interface {
	Get(oid string) (interface{}, error)
	Set(vbs ...snmp.VarBind) error
	GetSubtree(prefix string) ([]snmp.VarBind, error)
}
