package device

import (
	"fmt"
	"net/netip"
)

// Route is a static route: a destination network reached via a gateway.
// Both ends must agree on the address family; use the family-specific
// constructors.
type Route struct {
	Destination netip.Prefix
	Gateway     netip.Addr
}

// NewIPv4Route validates and builds an IPv4 static route.
func NewIPv4Route(destination netip.Prefix, gateway netip.Addr) (Route, error) {
	if !destination.IsValid() || !destination.Addr().Is4() {
		return Route{}, NewDeviceError(ErrCodeInvalidAddress,
			fmt.Sprintf("destination %s is not an IPv4 network", destination))
	}
	if !gateway.Is4() {
		return Route{}, NewDeviceError(ErrCodeInvalidAddress,
			fmt.Sprintf("gateway %s is not an IPv4 address", gateway))
	}
	return Route{Destination: destination.Masked(), Gateway: gateway}, nil
}

// NewIPv6Route validates and builds an IPv6 static route.
func NewIPv6Route(destination netip.Prefix, gateway netip.Addr) (Route, error) {
	if !destination.IsValid() || !destination.Addr().Is6() || destination.Addr().Is4In6() {
		return Route{}, NewDeviceError(ErrCodeInvalidAddress,
			fmt.Sprintf("destination %s is not an IPv6 network", destination))
	}
	if !gateway.Is6() || gateway.Is4In6() {
		return Route{}, NewDeviceError(ErrCodeInvalidAddress,
			fmt.Sprintf("gateway %s is not an IPv6 address", gateway))
	}
	return Route{Destination: destination.Masked(), Gateway: gateway}, nil
}

// IsIPv6 reports the route's address family.
func (r Route) IsIPv6() bool {
	return r.Destination.Addr().Is6() && !r.Destination.Addr().Is4In6()
}

func (r Route) String() string {
	return fmt.Sprintf("%s via %s", r.Destination, r.Gateway)
}

func containsPrefix(prefixes []netip.Prefix, prefix netip.Prefix) bool {
	for _, p := range prefixes {
		if p == prefix {
			return true
		}
	}
	return false
}
