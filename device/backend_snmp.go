package device

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"sync"

	"github.com/charlesren/ylog"

	"github.com/charlesren/switchconf/codec"
	"github.com/charlesren/switchconf/snmp"
)

// MIBBackend is the management-query client: properties resolve to columns
// of the standard bridge and interface tables, set-valued state to port
// bitmaps and the HP address table. Reads always go to the device; the only
// local state is the write-through address cache that papers over the
// agent's lag between a row write and its appearance in a walk.
type MIBBackend struct {
	client QueryClient
	layout PortLayout

	mu        sync.Mutex
	addrCache map[int]map[netip.Prefix]bool
}

func NewMIBBackend(client QueryClient, layout PortLayout) *MIBBackend {
	return &MIBBackend{
		client:    client,
		layout:    layout,
		addrCache: make(map[int]map[netip.Prefix]bool),
	}
}

func (b *MIBBackend) Read(ref Ref, prop Property) (string, error) {
	switch ref.Kind {
	case KindPort:
		return b.readPort(ref.ID, prop)
	case KindVLAN:
		return b.readVLAN(ref.ID, prop)
	default:
		return "", NewDeviceError(ErrCodeUnsupported,
			fmt.Sprintf("mib backend cannot read %s of %s", prop, ref.Kind))
	}
}

func (b *MIBBackend) Write(ref Ref, prop Property, value string) error {
	switch {
	case ref.Kind == KindPort && prop == PropEnabled:
		ifindex, err := b.layout.IfIndexForIdentifier(ref.ID)
		if err != nil {
			return err
		}
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return NewDeviceErrorWithCause(ErrCodeParseFailed, fmt.Sprintf("bad enabled value %q", value), err)
		}
		status := snmp.AdminStatusUp
		if !enabled {
			status = snmp.AdminStatusDown
		}
		return b.set(snmp.VarBind{
			OID:   snmp.Append(snmp.OIDIfAdminStatus, ifindex),
			Type:  snmp.TypeInteger,
			Value: status,
		})
	case ref.Kind == KindVLAN && prop == PropName:
		vid, err := parseVID(ref.ID)
		if err != nil {
			return err
		}
		if strings.ContainsAny(value, illegalVLANNameChars) {
			return NewDeviceError(ErrCodeInvalidName, fmt.Sprintf("vlan name %q contains illegal characters", value))
		}
		return b.set(snmp.VarBind{
			OID:   snmp.Append(snmp.OIDDot1qVlanStaticName, vid),
			Type:  snmp.TypeOctetString,
			Value: []byte(value),
		})
	default:
		return NewDeviceError(ErrCodeUnsupported,
			fmt.Sprintf("mib backend cannot write %s of %s", prop, ref.Kind))
	}
}

func (b *MIBBackend) readPort(identifier string, prop Property) (string, error) {
	ifindex, err := b.layout.IfIndexForIdentifier(identifier)
	if err != nil {
		return "", err
	}
	switch prop {
	case PropEnabled:
		status, err := b.getInt(snmp.Append(snmp.OIDIfAdminStatus, ifindex))
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(status == snmp.AdminStatusUp), nil
	case PropOperational:
		status, err := b.getInt(snmp.Append(snmp.OIDIfOperStatus, ifindex))
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(status == snmp.AdminStatusUp), nil
	case PropUntaggedVLAN:
		// base port and ifindex coincide on this layout
		vid, err := b.getInt(snmp.Append(snmp.OIDDot1qPvid, ifindex))
		if err != nil {
			return "", err
		}
		return strconv.Itoa(vid), nil
	default:
		return "", NewDeviceError(ErrCodeUnsupported,
			fmt.Sprintf("mib backend cannot read %s of port", prop))
	}
}

func (b *MIBBackend) readVLAN(id string, prop Property) (string, error) {
	vid, err := parseVID(id)
	if err != nil {
		return "", err
	}
	if prop != PropName {
		return "", NewDeviceError(ErrCodeUnsupported,
			fmt.Sprintf("mib backend cannot read %s of vlan", prop))
	}
	value, err := b.get(snmp.Append(snmp.OIDDot1qVlanStaticName, vid))
	if err != nil {
		return "", err
	}
	raw, ok := value.([]byte)
	if !ok {
		return "", NewDeviceError(ErrCodeNotConfigured, fmt.Sprintf("vlan %d has no name", vid))
	}
	return string(raw), nil
}

// EnsureVLAN makes sure the static row for vid exists, creating it with
// createAndGo when missing.
func (b *MIBBackend) EnsureVLAN(vid int) error {
	status, err := b.get(snmp.Append(snmp.OIDDot1qVlanStaticRowStatus, vid))
	if err != nil {
		return err
	}
	if n, ok := status.(int); ok && n == snmp.RowStatusActive {
		return nil
	}
	ylog.Infof("mib", "creating vlan %d", vid)
	return b.set(snmp.VarBind{
		OID:   snmp.Append(snmp.OIDDot1qVlanStaticRowStatus, vid),
		Type:  snmp.TypeInteger,
		Value: snmp.RowStatusCreateAndGo,
	})
}

// TaggedPorts lists the ports carrying vid tagged.
func (b *MIBBackend) TaggedPorts(vid int) ([]string, error) {
	return b.portList(snmp.Append(snmp.OIDDot1qVlanStaticEgressPorts, vid))
}

// UntaggedPorts lists the ports carrying vid untagged.
func (b *MIBBackend) UntaggedPorts(vid int) ([]string, error) {
	return b.portList(snmp.Append(snmp.OIDDot1qVlanStaticUntaggedPorts, vid))
}

// SetPortTagged adds or removes vid as tagged on one port through a
// read-modify-write of the egress bitmap. A bit already in the requested
// state is a CacheInconsistency: converged, but the caller's expectation
// was stale.
func (b *MIBBackend) SetPortTagged(vid int, identifier string, tagged bool) error {
	return b.updatePortList(snmp.Append(snmp.OIDDot1qVlanStaticEgressPorts, vid), vid, identifier, tagged, nil)
}

// SetPortUntagged is SetPortTagged for the untagged bitmap. Adding also
// repoints the port's PVID at vid, matching what the CLI does for an
// untagged assignment.
func (b *MIBBackend) SetPortUntagged(vid int, identifier string, untagged bool) error {
	var follow []snmp.VarBind
	if untagged {
		ifindex, err := b.layout.IfIndexForIdentifier(identifier)
		if err != nil {
			return err
		}
		follow = append(follow, snmp.VarBind{
			OID:   snmp.Append(snmp.OIDDot1qPvid, ifindex),
			Type:  snmp.TypeGauge32,
			Value: vid,
		})
	}
	return b.updatePortList(snmp.Append(snmp.OIDDot1qVlanStaticUntaggedPorts, vid), vid, identifier, untagged, follow)
}

func (b *MIBBackend) updatePortList(oid string, vid int, identifier string, member bool, follow []snmp.VarBind) error {
	ifindex, err := b.layout.IfIndexForIdentifier(identifier)
	if err != nil {
		return err
	}
	value, err := b.get(oid)
	if err != nil {
		return err
	}
	bitmap, ok := value.([]byte)
	if !ok {
		return NewDeviceError(ErrCodeBackendError, fmt.Sprintf("vlan %d has no port list at %s", vid, oid))
	}
	updated, err := codec.SetPortBit(bitmap, ifindex, member)
	if err != nil {
		return NewDeviceErrorWithCause(ErrCodeInvalidPort, fmt.Sprintf("port %s", identifier), err)
	}
	var stale bool
	if memberOf(bitmap, ifindex) == member {
		// already converged on the device; still write through so the PVID
		// follow-up applies, and report the stale expectation
		stale = true
	}
	vbs := append([]snmp.VarBind{{OID: oid, Type: snmp.TypeOctetString, Value: updated}}, follow...)
	if err := b.set(vbs...); err != nil {
		return err
	}
	if stale {
		return newCacheInconsistency("port %s membership of vlan %d already %v", identifier, vid, member)
	}
	return nil
}

func memberOf(bitmap []byte, port int) bool {
	for _, p := range codec.DecodePortList(bitmap) {
		if p == port {
			return true
		}
	}
	return false
}

// IPv4Addresses lists the addresses configured on the VLAN interface, read
// from the prefix-length column whose row index embeds the address.
func (b *MIBBackend) IPv4Addresses(vid int) ([]netip.Prefix, error) {
	return b.addresses(vid, codec.FamilyIPv4)
}

// IPv6Addresses is IPv4Addresses for the v6 rows of the same table.
func (b *MIBBackend) IPv6Addresses(vid int) ([]netip.Prefix, error) {
	return b.addresses(vid, codec.FamilyIPv6)
}

func (b *MIBBackend) addresses(vid, family int) ([]netip.Prefix, error) {
	ifindex := b.layout.VLANIfIndex(vid)
	rows, err := b.client.GetSubtree(snmp.OIDHpicfIpAddressPrefixLength)
	if err != nil {
		return nil, NewDeviceErrorWithCause(ErrCodeBackendError, "address table walk", err)
	}
	var prefixes []netip.Prefix
	for _, row := range rows {
		suffix, err := snmp.SuffixInts(row.OID, snmp.OIDHpicfIpAddressPrefixLength)
		if err != nil || len(suffix) < 1 || suffix[0] != ifindex {
			continue
		}
		rowFamily, addr, err := codec.DecodeAddressKey(suffix[1:])
		if err != nil || rowFamily != family {
			continue
		}
		bits, ok := row.Value.(int)
		if !ok {
			return nil, NewDeviceError(ErrCodeParseFailed, fmt.Sprintf("bad prefix length for %s", addr))
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr, bits))
	}
	b.cacheReplace(ifindex, prefixes)
	return prefixes, nil
}

// AddIPv4Address configures addr on the VLAN interface: enables v4 on the
// interface, pins DHCP off, then creates the address row.
func (b *MIBBackend) AddIPv4Address(vid int, prefix netip.Prefix) error {
	if !prefix.Addr().Is4() {
		return NewDeviceError(ErrCodeInvalidAddress, fmt.Sprintf("%s is not IPv4", prefix))
	}
	ifindex := b.layout.VLANIfIndex(vid)
	existing, err := b.IPv4Addresses(vid)
	if err != nil {
		return err
	}
	if containsPrefix(existing, prefix) {
		b.cacheAdd(ifindex, prefix)
		return newCacheInconsistency("address %s already configured on vlan %d", prefix, vid)
	}
	key, err := codec.EncodeAddressKey(codec.FamilyIPv4, prefix.Addr())
	if err != nil {
		return NewDeviceErrorWithCause(ErrCodeInvalidAddress, prefix.String(), err)
	}
	row := append([]int{ifindex}, key...)
	err = b.set(
		snmp.VarBind{OID: snmp.Append(snmp.OIDIPv4InterfaceEnableStatus, ifindex), Type: snmp.TypeInteger, Value: snmp.StatusEnabled},
		snmp.VarBind{OID: snmp.Append(snmp.OIDHpicfIpv4InterfaceDhcpEnable, ifindex), Type: snmp.TypeInteger, Value: snmp.StatusDisabled},
		snmp.VarBind{OID: snmp.Append(snmp.OIDHpicfIpAddressPrefixLength, row...), Type: snmp.TypeGauge32, Value: prefix.Bits()},
		snmp.VarBind{OID: snmp.Append(snmp.OIDHpicfIpAddressType, row...), Type: snmp.TypeInteger, Value: snmp.AddressTypeUnicast},
		snmp.VarBind{OID: snmp.Append(snmp.OIDHpicfIpAddressRowStatus, row...), Type: snmp.TypeInteger, Value: snmp.RowStatusCreateAndGo},
	)
	if err != nil {
		return err
	}
	b.cacheAdd(ifindex, prefix)
	return nil
}

// RemoveIPv4Address destroys the address row.
func (b *MIBBackend) RemoveIPv4Address(vid int, prefix netip.Prefix) error {
	return b.removeAddress(vid, codec.FamilyIPv4, prefix)
}

// AddIPv6Address is AddIPv4Address for v6: enables the interface, switches
// it to manual address configuration, then creates the row.
func (b *MIBBackend) AddIPv6Address(vid int, prefix netip.Prefix) error {
	if !prefix.Addr().Is6() || prefix.Addr().Is4In6() {
		return NewDeviceError(ErrCodeInvalidAddress, fmt.Sprintf("%s is not IPv6", prefix))
	}
	ifindex := b.layout.VLANIfIndex(vid)
	existing, err := b.IPv6Addresses(vid)
	if err != nil {
		return err
	}
	if containsPrefix(existing, prefix) {
		b.cacheAdd(ifindex, prefix)
		return newCacheInconsistency("address %s already configured on vlan %d", prefix, vid)
	}
	key, err := codec.EncodeAddressKey(codec.FamilyIPv6, prefix.Addr())
	if err != nil {
		return NewDeviceErrorWithCause(ErrCodeInvalidAddress, prefix.String(), err)
	}
	row := append([]int{ifindex}, key...)
	err = b.set(
		snmp.VarBind{OID: snmp.Append(snmp.OIDHpicfIpv6InterfaceCfgEnableStatus, ifindex), Type: snmp.TypeInteger, Value: snmp.StatusEnabled},
		snmp.VarBind{OID: snmp.Append(snmp.OIDHpicfIpv6InterfaceManual, ifindex), Type: snmp.TypeInteger, Value: snmp.StatusEnabled},
		snmp.VarBind{OID: snmp.Append(snmp.OIDIPv6InterfaceEnableStatus, ifindex), Type: snmp.TypeInteger, Value: snmp.StatusEnabled},
		snmp.VarBind{OID: snmp.Append(snmp.OIDHpicfIpAddressPrefixLength, row...), Type: snmp.TypeGauge32, Value: prefix.Bits()},
		snmp.VarBind{OID: snmp.Append(snmp.OIDHpicfIpAddressType, row...), Type: snmp.TypeInteger, Value: snmp.AddressTypeUnicast},
		snmp.VarBind{OID: snmp.Append(snmp.OIDHpicfIpAddressRowStatus, row...), Type: snmp.TypeInteger, Value: snmp.RowStatusCreateAndGo},
	)
	if err != nil {
		return err
	}
	b.cacheAdd(ifindex, prefix)
	return nil
}

// RemoveIPv6Address destroys the address row.
func (b *MIBBackend) RemoveIPv6Address(vid int, prefix netip.Prefix) error {
	return b.removeAddress(vid, codec.FamilyIPv6, prefix)
}

func (b *MIBBackend) removeAddress(vid, family int, prefix netip.Prefix) error {
	ifindex := b.layout.VLANIfIndex(vid)
	existing, err := b.addresses(vid, family)
	if err != nil {
		return err
	}
	if !containsPrefix(existing, prefix) {
		b.cacheRemove(ifindex, prefix)
		return newCacheInconsistency("address %s not configured on vlan %d", prefix, vid)
	}
	key, err := codec.EncodeAddressKey(family, prefix.Addr())
	if err != nil {
		return NewDeviceErrorWithCause(ErrCodeInvalidAddress, prefix.String(), err)
	}
	row := append([]int{ifindex}, key...)
	err = b.set(snmp.VarBind{
		OID:   snmp.Append(snmp.OIDHpicfIpAddressRowStatus, row...),
		Type:  snmp.TypeInteger,
		Value: snmp.RowStatusDestroy,
	})
	if err != nil {
		return err
	}
	b.cacheRemove(ifindex, prefix)
	return nil
}

// CachedAddresses returns the last written-through view for the VLAN
// interface, for auditing after a CacheInconsistency outcome.
func (b *MIBBackend) CachedAddresses(vid int) []netip.Prefix {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := b.addrCache[b.layout.VLANIfIndex(vid)]
	prefixes := make([]netip.Prefix, 0, len(set))
	for prefix := range set {
		prefixes = append(prefixes, prefix)
	}
	return prefixes
}

func (b *MIBBackend) cacheReplace(ifindex int, prefixes []netip.Prefix) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := make(map[netip.Prefix]bool, len(prefixes))
	for _, prefix := range prefixes {
		set[prefix] = true
	}
	b.addrCache[ifindex] = set
}

func (b *MIBBackend) cacheAdd(ifindex int, prefix netip.Prefix) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.addrCache[ifindex] == nil {
		b.addrCache[ifindex] = make(map[netip.Prefix]bool)
	}
	b.addrCache[ifindex][prefix] = true
}

func (b *MIBBackend) cacheRemove(ifindex int, prefix netip.Prefix) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.addrCache[ifindex], prefix)
}

func (b *MIBBackend) portList(oid string) ([]string, error) {
	value, err := b.get(oid)
	if err != nil {
		return nil, err
	}
	bitmap, ok := value.([]byte)
	if !ok {
		return nil, NewDeviceError(ErrCodeBackendError, fmt.Sprintf("no port list at %s", oid))
	}
	var identifiers []string
	for _, port := range codec.DecodePortList(bitmap) {
		identifier, err := b.layout.IdentifierForIfIndex(port)
		if err != nil {
			return nil, err
		}
		identifiers = append(identifiers, identifier)
	}
	return identifiers, nil
}

func (b *MIBBackend) get(oid string) (interface{}, error) {
	value, err := b.client.Get(oid)
	if err != nil {
		return nil, NewDeviceErrorWithCause(ErrCodeBackendError, oid, err)
	}
	return value, nil
}

func (b *MIBBackend) getInt(oid string) (int, error) {
	value, err := b.get(oid)
	if err != nil {
		return 0, err
	}
	n, ok := value.(int)
	if !ok {
		return 0, NewDeviceError(ErrCodeParseFailed, fmt.Sprintf("non-integer value at %s", oid))
	}
	return n, nil
}

func (b *MIBBackend) set(vbs ...snmp.VarBind) error {
	if err := b.client.Set(vbs...); err != nil {
		return NewDeviceErrorWithCause(ErrCodeBackendError, firstOIDOf(vbs), err)
	}
	return nil
}

func firstOIDOf(vbs []snmp.VarBind) string {
	if len(vbs) == 0 {
		return ""
	}
	return vbs[0].OID
}

func parseVID(id string) (int, error) {
	vid, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil || vid < 1 || vid > 4094 {
		return 0, NewDeviceError(ErrCodeParseFailed, fmt.Sprintf("bad vlan id %q", id))
	}
	return vid, nil
}
