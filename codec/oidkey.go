package codec

import (
	"errors"
	"fmt"
	"net/netip"
)

// Address family tags used by the hpicfIpAddressTable index.
const (
	FamilyIPv4 = 1
	FamilyIPv6 = 2
)

var (
	ErrUnsupportedFamily = errors.New("unsupported address family tag")
	ErrMalformedKey      = errors.New("malformed address key")
)

// DecodeAddressKey reconstructs an IP address from the trailing index
// components of a table row OID: a family tag, an octet count, then the raw
// address octets. Round-trips with EncodeAddressKey for every valid key.
func DecodeAddressKey(suffix []int) (int, netip.Addr, error) {
	if len(suffix) < 2 {
		return 0, netip.Addr{}, fmt.Errorf("%w: %d components", ErrMalformedKey, len(suffix))
	}
	family, size := suffix[0], suffix[1]
	var want int
	switch family {
	case FamilyIPv4:
		want = 4
	case FamilyIPv6:
		want = 16
	default:
		return 0, netip.Addr{}, fmt.Errorf("%w: %d", ErrUnsupportedFamily, family)
	}
	if size != want || len(suffix) != 2+want {
		return 0, netip.Addr{}, fmt.Errorf("%w: family %d with length %d and %d trailing components",
			ErrMalformedKey, family, size, len(suffix)-2)
	}
	raw := make([]byte, want)
	for i, component := range suffix[2:] {
		if component < 0 || component > 255 {
			return 0, netip.Addr{}, fmt.Errorf("%w: octet %d out of range", ErrMalformedKey, component)
		}
		raw[i] = byte(component)
	}
	addr, ok := netip.AddrFromSlice(raw)
	if !ok {
		return 0, netip.Addr{}, fmt.Errorf("%w: %v", ErrMalformedKey, raw)
	}
	return family, addr, nil
}

// EncodeAddressKey builds the index suffix for addr: family tag, octet
// count, then the address octets.
func EncodeAddressKey(family int, addr netip.Addr) ([]int, error) {
	switch family {
	case FamilyIPv4:
		if !addr.Is4() {
			return nil, fmt.Errorf("%w: %s is not IPv4", ErrMalformedKey, addr)
		}
	case FamilyIPv6:
		if !addr.Is6() || addr.Is4In6() {
			return nil, fmt.Errorf("%w: %s is not IPv6", ErrMalformedKey, addr)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFamily, family)
	}
	raw := addr.AsSlice()
	suffix := make([]int, 0, 2+len(raw))
	suffix = append(suffix, family, len(raw))
	for _, octet := range raw {
		suffix = append(suffix, int(octet))
	}
	return suffix, nil
}

// AddressKeyFor picks the family tag matching addr.
func AddressKeyFor(addr netip.Addr) ([]int, error) {
	if addr.Is4() {
		return EncodeAddressKey(FamilyIPv4, addr)
	}
	return EncodeAddressKey(FamilyIPv6, addr)
}
