package device

import (
	"strconv"
)

// Port is one physical switch port.
type Port struct {
	sw    *Switch
	ID    string
	props PropertyBackend
}

func (p *Port) ref() Ref {
	return Ref{Kind: KindPort, ID: p.ID}
}

// IfIndex resolves the port's interface index through the configured
// layout.
func (p *Port) IfIndex() (int, error) {
	return p.sw.layout.IfIndexForIdentifier(p.ID)
}

// Enabled reports the admin status.
func (p *Port) Enabled() (bool, error) {
	value, err := p.props.Read(p.ref(), PropEnabled)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(value)
}

// SetEnabled sets the admin status.
func (p *Port) SetEnabled(enabled bool) error {
	return p.props.Write(p.ref(), PropEnabled, strconv.FormatBool(enabled))
}

// Operational reports the link status. MIB only; the CLI backend does not
// expose it.
func (p *Port) Operational() (bool, error) {
	value, err := p.props.Read(p.ref(), PropOperational)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(value)
}

// UntaggedVLAN returns the PVID.
func (p *Port) UntaggedVLAN() (int, error) {
	value, err := p.props.Read(p.ref(), PropUntaggedVLAN)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

// Name reads the friendly name, always via the CLI: the friendly name is
// not in any table the device serves.
func (p *Port) Name() (string, error) {
	if p.sw.cli == nil {
		return "", NewDeviceError(ErrCodeUnsupported, "no cli session configured")
	}
	return p.sw.cli.Read(p.ref(), PropName)
}

// SetName configures the friendly name via the CLI.
func (p *Port) SetName(name string) error {
	if p.sw.cli == nil {
		return NewDeviceError(ErrCodeUnsupported, "no cli session configured")
	}
	return p.sw.cli.Write(p.ref(), PropName, name)
}

// TaggedVLANs lists the VLAN ids carried tagged on this port, from the
// running configuration's membership ranges.
func (p *Port) TaggedVLANs() ([]int, error) {
	if p.sw.cli == nil {
		return nil, NewDeviceError(ErrCodeUnsupported, "no cli session configured")
	}
	vlans, err := p.sw.cli.VLANs()
	if err != nil {
		return nil, err
	}
	var vids []int
	for _, vlan := range vlans {
		for _, member := range vlan.Tagged {
			if member == p.ID {
				vids = append(vids, vlan.VID)
				break
			}
		}
	}
	return vids, nil
}
