package device

import (
	"net/netip"
	"strconv"
)

// VLAN is one 802.1Q VLAN on a switch. Scalar properties go through the
// bound PropertyBackend; membership and addressing are MIB operations.
type VLAN struct {
	sw    *Switch
	VID   int
	props PropertyBackend
}

func (v *VLAN) ref() Ref {
	return Ref{Kind: KindVLAN, ID: strconv.Itoa(v.VID)}
}

// Name returns the configured VLAN name.
func (v *VLAN) Name() (string, error) {
	return v.props.Read(v.ref(), PropName)
}

// SetName configures the VLAN name. Characters the vendor forbids in VLAN
// names are rejected before touching the device.
func (v *VLAN) SetName(name string) error {
	return v.props.Write(v.ref(), PropName, name)
}

// IfIndex is the interface index of the VLAN's routing interface.
func (v *VLAN) IfIndex() int {
	return v.sw.layout.VLANIfIndex(v.VID)
}

// IPv4Addresses lists the VLAN interface's IPv4 addresses.
func (v *VLAN) IPv4Addresses() ([]netip.Prefix, error) {
	return v.sw.mib.IPv4Addresses(v.VID)
}

// AddIPv4Address configures an IPv4 address on the VLAN interface.
func (v *VLAN) AddIPv4Address(prefix netip.Prefix) error {
	return v.sw.mib.AddIPv4Address(v.VID, prefix)
}

// RemoveIPv4Address removes an IPv4 address from the VLAN interface.
func (v *VLAN) RemoveIPv4Address(prefix netip.Prefix) error {
	return v.sw.mib.RemoveIPv4Address(v.VID, prefix)
}

// IPv6Addresses lists the VLAN interface's IPv6 addresses.
func (v *VLAN) IPv6Addresses() ([]netip.Prefix, error) {
	return v.sw.mib.IPv6Addresses(v.VID)
}

// AddIPv6Address configures an IPv6 address on the VLAN interface.
func (v *VLAN) AddIPv6Address(prefix netip.Prefix) error {
	return v.sw.mib.AddIPv6Address(v.VID, prefix)
}

// RemoveIPv6Address removes an IPv6 address from the VLAN interface.
func (v *VLAN) RemoveIPv6Address(prefix netip.Prefix) error {
	return v.sw.mib.RemoveIPv6Address(v.VID, prefix)
}

// TaggedPorts lists the ports carrying this VLAN tagged.
func (v *VLAN) TaggedPorts() ([]string, error) {
	return v.sw.mib.TaggedPorts(v.VID)
}

// AddTaggedPort configures this VLAN as tagged on the port.
func (v *VLAN) AddTaggedPort(identifier string) error {
	return v.sw.mib.SetPortTagged(v.VID, identifier, true)
}

// RemoveTaggedPort removes this VLAN as tagged from the port.
func (v *VLAN) RemoveTaggedPort(identifier string) error {
	return v.sw.mib.SetPortTagged(v.VID, identifier, false)
}

// UntaggedPorts lists the ports carrying this VLAN untagged.
func (v *VLAN) UntaggedPorts() ([]string, error) {
	return v.sw.mib.UntaggedPorts(v.VID)
}

// AddUntaggedPort configures this VLAN as untagged on the port and points
// the port's PVID here.
func (v *VLAN) AddUntaggedPort(identifier string) error {
	return v.sw.mib.SetPortUntagged(v.VID, identifier, true)
}

// RemoveUntaggedPort removes this VLAN as untagged from the port.
func (v *VLAN) RemoveUntaggedPort(identifier string) error {
	return v.sw.mib.SetPortUntagged(v.VID, identifier, false)
}
