package device

import (
	"fmt"
	"net"
	"net/netip"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charlesren/ylog"

	"github.com/charlesren/switchconf/codec"
)

// cliField declares how one scalar property is read and written on the CLI:
// a show command, a fixed-format line pattern with a single capture group,
// and the command sequences that set or clear the value. %s expands to the
// object id, %v to the value being written. The grammar is vendor specific
// and deliberately lives in one table instead of being scattered through
// ad hoc matching.
type cliField struct {
	show    string
	pattern *regexp.Regexp
	set     []string
	clear   []string
}

var cliGrammar = map[Kind]map[Property]cliField{
	KindInterface: {
		PropName: {
			show:    "show running-config interface %s",
			pattern: regexp.MustCompile(`(?m)^   name "(.*?)"\s*$`),
			set:     []string{"config", "interface %s name %v", "exit"},
			clear:   []string{"config", "no interface %s name", "exit"},
		},
	},
	KindPort: {
		PropName: {
			show:    "show running-config interface %s",
			pattern: regexp.MustCompile(`(?m)^   name "(.*?)"\s*$`),
			set:     []string{"config", "interface %s name %v", "exit"},
			clear:   []string{"config", "no interface %s name", "exit"},
		},
		PropEnabled: {
			// running-config carries a "disable" line when the port is shut
			show:    "show running-config interface %s",
			pattern: regexp.MustCompile(`(?m)^   (disable)\s*$`),
		},
	},
	KindVLAN: {
		PropName: {
			show:    "show running-config vlan %s",
			pattern: regexp.MustCompile(`(?m)^   name "(.*?)"\s*$`),
			set:     []string{"config", "vlan %s name %v", "exit"},
		},
	},
}

// cliErrorLiterals maps the device's inline error strings to typed codes.
// The CLI reports errors as plain output, never via exit status.
var cliErrorLiterals = []struct {
	substr string
	code   ErrorCode
}{
	{"bad ip address", ErrCodeInvalidAddress},
	{"bad mask", ErrCodeInvalidAddress},
	{"already exists", ErrCodeAlreadyExists},
	{"not configured", ErrCodeNotConfigured},
	{"does not exist", ErrCodeNotConfigured},
	{"invalid input", ErrCodeParseFailed},
	{"invalid vlan", ErrCodeParseFailed},
}

// Names accepted for interfaces and ports, per the vendor's management
// guide. VLAN names are looser; see illegalVLANNameChars.
var interfaceNamePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

const illegalVLANNameChars = `"'@#$^&*`

// CLIBackend is the configuration-text client: it drives properties through
// the interactive session and screen-scrapes fixed-format lines out of the
// output.
type CLIBackend struct {
	runner  CommandRunner
	timeout time.Duration
}

func NewCLIBackend(runner CommandRunner, timeout time.Duration) *CLIBackend {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CLIBackend{runner: runner, timeout: timeout}
}

// run executes one command and surfaces inline device errors as typed
// outcomes.
func (b *CLIBackend) run(command string) (string, error) {
	out, err := b.runner.Execute(command, b.timeout)
	if err != nil {
		return "", NewDeviceErrorWithCause(ErrCodeBackendError, fmt.Sprintf("command %q", command), err)
	}
	if err := classifyCLIOutput(command, out); err != nil {
		return out, err
	}
	return out, nil
}

// runSequence executes a config command sequence, failing on the first
// typed error. The surrounding config/exit commands come from the grammar.
func (b *CLIBackend) runSequence(commands []string) error {
	for _, command := range commands {
		if _, err := b.run(command); err != nil {
			return err
		}
	}
	return nil
}

func classifyCLIOutput(command, out string) error {
	lowered := strings.ToLower(out)
	for _, literal := range cliErrorLiterals {
		if strings.Contains(lowered, literal.substr) {
			return NewDeviceError(literal.code, fmt.Sprintf("command %q: %s", command, strings.TrimSpace(out)))
		}
	}
	return nil
}

func expand(template, id, value string) string {
	out := strings.ReplaceAll(template, "%s", id)
	return strings.ReplaceAll(out, "%v", value)
}

// Read looks a property up in the grammar, runs the show command and
// applies the line pattern. A missing name reads as the empty string, not
// an error; absence of the disable line means a port is enabled.
func (b *CLIBackend) Read(ref Ref, prop Property) (string, error) {
	field, ok := cliGrammar[ref.Kind][prop]
	if !ok || field.show == "" {
		return "", NewDeviceError(ErrCodeUnsupported,
			fmt.Sprintf("cli backend cannot read %s of %s", prop, ref.Kind))
	}
	out, err := b.run(expand(field.show, ref.ID, ""))
	if err != nil {
		return "", err
	}
	match := field.pattern.FindStringSubmatch(out)
	if prop == PropEnabled {
		if match != nil {
			return "false", nil
		}
		return "true", nil
	}
	if match == nil {
		return "", nil
	}
	return match[1], nil
}

// Write validates the value and replays the grammar's set (or clear, for an
// empty value) sequence.
func (b *CLIBackend) Write(ref Ref, prop Property, value string) error {
	field, ok := cliGrammar[ref.Kind][prop]
	if !ok {
		return NewDeviceError(ErrCodeUnsupported,
			fmt.Sprintf("cli backend cannot write %s of %s", prop, ref.Kind))
	}
	if prop == PropEnabled {
		return b.writeEnabled(ref, value)
	}

	sequence := field.set
	if value == "" {
		sequence = field.clear
	}
	if len(sequence) == 0 {
		return NewDeviceError(ErrCodeUnsupported,
			fmt.Sprintf("cli backend cannot write %s of %s", prop, ref.Kind))
	}
	if value != "" && prop == PropName {
		if err := validateName(ref.Kind, value); err != nil {
			return err
		}
	}
	commands := make([]string, 0, len(sequence))
	for _, template := range sequence {
		commands = append(commands, expand(template, ref.ID, value))
	}
	ylog.Debugf("cli", "write %s %s.%s", ref.Kind, ref.ID, prop)
	return b.runSequence(commands)
}

func (b *CLIBackend) writeEnabled(ref Ref, value string) error {
	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return NewDeviceErrorWithCause(ErrCodeParseFailed, fmt.Sprintf("bad enabled value %q", value), err)
	}
	verb := "enable"
	if !enabled {
		verb = "disable"
	}
	return b.runSequence([]string{"config", fmt.Sprintf("interface %s %s", ref.ID, verb), "exit"})
}

func validateName(kind Kind, name string) error {
	if kind == KindVLAN {
		if strings.ContainsAny(name, illegalVLANNameChars) {
			return NewDeviceError(ErrCodeInvalidName, fmt.Sprintf("vlan name %q contains illegal characters", name))
		}
		return nil
	}
	if !interfaceNamePattern.MatchString(name) {
		return NewDeviceError(ErrCodeInvalidName, fmt.Sprintf("name %q must be alphanumeric", name))
	}
	return nil
}

// VLANConfig is one vlan block of the running configuration.
type VLANConfig struct {
	VID      int
	Name     string
	Untagged []string
	Tagged   []string
}

var (
	vlanBlockStart = regexp.MustCompile(`^vlan (\d+)\s*$`)
	vlanNameLine   = regexp.MustCompile(`^   name "(.*?)"\s*$`)
	vlanPortsLine  = regexp.MustCompile(`^   (untagged|tagged) (\S+)\s*$`)
)

// VLANs parses every vlan block out of the running configuration. Port
// membership lines use the range-list encoding ("untagged A1-A4,B2").
func (b *CLIBackend) VLANs() ([]VLANConfig, error) {
	out, err := b.run("show running-config")
	if err != nil {
		return nil, err
	}
	var vlans []VLANConfig
	var current *VLANConfig
	for _, line := range strings.Split(out, "\n") {
		if m := vlanBlockStart.FindStringSubmatch(line); m != nil {
			vid, _ := strconv.Atoi(m[1])
			vlans = append(vlans, VLANConfig{VID: vid})
			current = &vlans[len(vlans)-1]
			continue
		}
		if current == nil {
			continue
		}
		if !strings.HasPrefix(line, "   ") {
			// block over; anything not indented belongs to the next section
			current = nil
			continue
		}
		if m := vlanNameLine.FindStringSubmatch(line); m != nil {
			current.Name = m[1]
			continue
		}
		if m := vlanPortsLine.FindStringSubmatch(line); m != nil {
			ports, err := codec.DecodeRangeList(m[2])
			if err != nil {
				return nil, NewDeviceErrorWithCause(ErrCodeParseFailed,
					fmt.Sprintf("vlan %d %s ports", current.VID, m[1]), err)
			}
			if m[1] == "untagged" {
				current.Untagged = ports
			} else {
				current.Tagged = ports
			}
		}
	}
	return vlans, nil
}

var (
	ipv4RouteLine = regexp.MustCompile(`^ip route (\S+) (\S+) (\S+)\s*$`)
	ipv6RouteLine = regexp.MustCompile(`^ipv6 route (\S+) (\S+)\s*$`)
)

// StaticRoutes parses the static route lines of the running configuration.
// IPv4 routes are printed with a dotted mask, IPv6 routes in prefix form.
func (b *CLIBackend) StaticRoutes() ([]Route, error) {
	out, err := b.run("show running-config")
	if err != nil {
		return nil, err
	}
	var routes []Route
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, " ")
		if m := ipv4RouteLine.FindStringSubmatch(line); m != nil {
			route, err := parseIPv4RouteLine(m[1], m[2], m[3])
			if err != nil {
				return nil, err
			}
			routes = append(routes, route)
			continue
		}
		if m := ipv6RouteLine.FindStringSubmatch(line); m != nil {
			route, err := parseIPv6RouteLine(m[1], m[2])
			if err != nil {
				return nil, err
			}
			routes = append(routes, route)
		}
	}
	return routes, nil
}

// AddStaticRoute configures a static route. A route the device already
// carries is reported as CacheInconsistency: the intended state holds, but
// the caller believed otherwise.
func (b *CLIBackend) AddStaticRoute(route Route) error {
	existing, err := b.StaticRoutes()
	if err != nil {
		return err
	}
	if containsRoute(existing, route) {
		return newCacheInconsistency("route %s already configured", route)
	}
	if err := b.runSequence([]string{"config", routeCommand(route), "exit"}); err != nil {
		if IsCode(err, ErrCodeAlreadyExists) {
			return newCacheInconsistency("route %s already configured", route)
		}
		return err
	}
	return nil
}

// RemoveStaticRoute removes a static route, with the mirror-image
// CacheInconsistency treatment when it is already gone.
func (b *CLIBackend) RemoveStaticRoute(route Route) error {
	existing, err := b.StaticRoutes()
	if err != nil {
		return err
	}
	if !containsRoute(existing, route) {
		return newCacheInconsistency("route %s not configured", route)
	}
	if err := b.runSequence([]string{"config", "no " + routeCommand(route), "exit"}); err != nil {
		if IsCode(err, ErrCodeNotConfigured) {
			return newCacheInconsistency("route %s not configured", route)
		}
		return err
	}
	return nil
}

func containsRoute(routes []Route, route Route) bool {
	for _, r := range routes {
		if r.Destination == route.Destination && r.Gateway == route.Gateway {
			return true
		}
	}
	return false
}

func routeCommand(route Route) string {
	if route.IsIPv6() {
		return fmt.Sprintf("ipv6 route %s %s", route.Destination, route.Gateway)
	}
	mask := net.CIDRMask(route.Destination.Bits(), 32)
	return fmt.Sprintf("ip route %s %s %s", route.Destination.Addr(), net.IP(mask), route.Gateway)
}

func parseIPv4RouteLine(dst, mask, gw string) (Route, error) {
	addr, err := netip.ParseAddr(dst)
	if err != nil || !addr.Is4() {
		return Route{}, NewDeviceError(ErrCodeParseFailed, fmt.Sprintf("bad route destination %q", dst))
	}
	maskAddr, err := netip.ParseAddr(mask)
	if err != nil || !maskAddr.Is4() {
		return Route{}, NewDeviceError(ErrCodeParseFailed, fmt.Sprintf("bad route mask %q", mask))
	}
	bits, total := net.IPMask(maskAddr.AsSlice()).Size()
	if total != 32 {
		// Size reports 0,0 for a non-contiguous mask
		return Route{}, NewDeviceError(ErrCodeParseFailed, fmt.Sprintf("bad route mask %q", mask))
	}
	gateway, err := netip.ParseAddr(gw)
	if err != nil || !gateway.Is4() {
		return Route{}, NewDeviceError(ErrCodeParseFailed, fmt.Sprintf("bad route gateway %q", gw))
	}
	return NewIPv4Route(netip.PrefixFrom(addr, bits), gateway)
}

func parseIPv6RouteLine(dst, gw string) (Route, error) {
	prefix, err := netip.ParsePrefix(dst)
	if err != nil || !prefix.Addr().Is6() {
		return Route{}, NewDeviceError(ErrCodeParseFailed, fmt.Sprintf("bad route destination %q", dst))
	}
	gateway, err := netip.ParseAddr(gw)
	if err != nil || !gateway.Is6() {
		return Route{}, NewDeviceError(ErrCodeParseFailed, fmt.Sprintf("bad route gateway %q", gw))
	}
	return NewIPv6Route(prefix, gateway)
}
