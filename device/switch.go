package device

import (
	"time"
)

// Switch owns the two backend clients for one device and hands out domain
// objects bound to them. The session is exclusively owned here: nothing
// else may interleave commands on it.
type Switch struct {
	Hostname string

	layout PortLayout
	cli    *CLIBackend
	mib    *MIBBackend
}

// Options tunes a Switch. The zero value uses the default layout and a 30s
// command timeout.
type Options struct {
	Layout         PortLayout
	CommandTimeout time.Duration
}

// NewSwitch wires a switch façade over an interactive session and a MIB
// client. Either may be nil when only one backend is in use; operations
// needing the missing backend fail with ErrCodeUnsupported.
func NewSwitch(hostname string, runner CommandRunner, query QueryClient, opts Options) *Switch {
	layout := opts.Layout
	if layout.PortsPerUnit == 0 && layout.VLANIfIndexOffset == 0 {
		layout = DefaultLayout()
	}
	s := &Switch{Hostname: hostname, layout: layout}
	if runner != nil {
		s.cli = NewCLIBackend(runner, opts.CommandTimeout)
	}
	if query != nil {
		s.mib = NewMIBBackend(query, layout)
	}
	return s
}

func (s *Switch) Layout() PortLayout {
	return s.layout
}

// CLI exposes the configuration-text client.
func (s *Switch) CLI() *CLIBackend {
	return s.cli
}

// MIB exposes the management-query client.
func (s *Switch) MIB() *MIBBackend {
	return s.mib
}

// ExecuteCommand runs one raw command on the device shell.
func (s *Switch) ExecuteCommand(command string) (string, error) {
	if s.cli == nil {
		return "", NewDeviceError(ErrCodeUnsupported, "no cli session configured")
	}
	return s.cli.run(command)
}

// VLAN binds a VLAN object to the MIB backend, creating the static row on
// the device if it does not exist yet.
func (s *Switch) VLAN(vid int) (*VLAN, error) {
	if s.mib == nil {
		return nil, NewDeviceError(ErrCodeUnsupported, "no mib client configured")
	}
	if err := s.mib.EnsureVLAN(vid); err != nil {
		return nil, err
	}
	return &VLAN{sw: s, VID: vid, props: s.mib}, nil
}

// Port binds a port object to the MIB backend for state and the CLI for its
// name, mirroring what each protocol exposes.
func (s *Switch) Port(identifier string) (*Port, error) {
	if _, _, err := s.layout.ParseIdentifier(identifier); err != nil {
		return nil, err
	}
	var props PropertyBackend
	if s.mib != nil {
		props = s.mib
	} else if s.cli != nil {
		props = s.cli
	} else {
		return nil, NewDeviceError(ErrCodeUnsupported, "no backend configured")
	}
	return &Port{sw: s, ID: identifier, props: props}, nil
}

// Interface binds a physical interface object to the CLI backend.
func (s *Switch) Interface(identifier string) (*Interface, error) {
	if s.cli == nil {
		return nil, NewDeviceError(ErrCodeUnsupported, "no cli session configured")
	}
	return &Interface{sw: s, ID: identifier, props: s.cli}, nil
}
