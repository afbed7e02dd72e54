package device

import (
	"fmt"
	"strconv"
	"strings"
)

// PortLayout maps between port identifiers ("B3"), stack unit/port
// locations and interface indexes. The stride between stack units varies by
// device family and firmware, so it is a configured constant with a tested
// default rather than a hardcoded formula. Base port (the dot1d index) and
// ifIndex coincide on these devices.
type PortLayout struct {
	// PortsPerUnit is the ifIndex stride between stack units.
	PortsPerUnit int

	// VLANIfIndexOffset is added to a VLAN id to get the ifIndex of its
	// routing interface.
	VLANIfIndexOffset int
}

func DefaultLayout() PortLayout {
	return PortLayout{PortsPerUnit: 24, VLANIfIndexOffset: 577}
}

func (l PortLayout) portsPerUnit() int {
	if l.PortsPerUnit <= 0 {
		return 24
	}
	return l.PortsPerUnit
}

// ParseIdentifier splits "B3" into unit 2, port 3.
func (l PortLayout) ParseIdentifier(identifier string) (unit, port int, err error) {
	id := strings.TrimSpace(identifier)
	if len(id) < 2 {
		return 0, 0, NewDeviceError(ErrCodeInvalidPort, fmt.Sprintf("bad port identifier %q", identifier))
	}
	letter := id[0]
	switch {
	case letter >= 'A' && letter <= 'Z':
		unit = int(letter-'A') + 1
	case letter >= 'a' && letter <= 'z':
		unit = int(letter-'a') + 1
	default:
		return 0, 0, NewDeviceError(ErrCodeInvalidPort, fmt.Sprintf("bad port identifier %q", identifier))
	}
	port, convErr := strconv.Atoi(id[1:])
	if convErr != nil || port < 1 || port > l.portsPerUnit() {
		return 0, 0, NewDeviceError(ErrCodeInvalidPort, fmt.Sprintf("bad port identifier %q", identifier))
	}
	return unit, port, nil
}

// IfIndexForIdentifier resolves a port identifier to its interface index.
func (l PortLayout) IfIndexForIdentifier(identifier string) (int, error) {
	unit, port, err := l.ParseIdentifier(identifier)
	if err != nil {
		return 0, err
	}
	return (unit-1)*l.portsPerUnit() + port, nil
}

// IdentifierForIfIndex is the inverse of IfIndexForIdentifier.
func (l PortLayout) IdentifierForIfIndex(ifindex int) (string, error) {
	if ifindex < 1 {
		return "", NewDeviceError(ErrCodeInvalidPort, fmt.Sprintf("bad ifindex %d", ifindex))
	}
	unit := (ifindex-1)/l.portsPerUnit() + 1
	port := (ifindex-1)%l.portsPerUnit() + 1
	if unit > 26 {
		return "", NewDeviceError(ErrCodeInvalidPort, fmt.Sprintf("ifindex %d beyond unit Z", ifindex))
	}
	return fmt.Sprintf("%c%d", 'A'+unit-1, port), nil
}

// VLANIfIndex returns the ifIndex of the VLAN's routing interface.
func (l PortLayout) VLANIfIndex(vid int) int {
	offset := l.VLANIfIndexOffset
	if offset == 0 {
		offset = 577
	}
	return vid + offset
}
