package device

import (
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRunner plays back canned command output. Unknown commands return
// an empty string, which is what config-mode commands produce on success.
type scriptedRunner struct {
	outputs  map[string]string
	commands []string
	err      error
}

func (r *scriptedRunner) Execute(command string, timeout time.Duration) (string, error) {
	r.commands = append(r.commands, command)
	if r.err != nil {
		return "", r.err
	}
	return r.outputs[command], nil
}

const runningConfig = `Running configuration:

hostname "switch"

vlan 1
   name "DEFAULT_VLAN"
   untagged A1-A24
   exit

vlan 10
   name "users"
   untagged A1-A3,A5
   tagged B1
   exit

ip route 10.0.0.0 255.0.0.0 192.168.1.1
ipv6 route 2001:db8::/32 fe80::1
`

func TestCLIReadName(t *testing.T) {
	runner := &scriptedRunner{outputs: map[string]string{
		"show running-config interface A1": "interface A1\n   name \"uplink\"\n   exit\n",
		"show running-config interface A2": "interface A2\n   exit\n",
	}}
	backend := NewCLIBackend(runner, 0)

	name, err := backend.Read(Ref{Kind: KindInterface, ID: "A1"}, PropName)
	require.NoError(t, err)
	assert.Equal(t, "uplink", name)

	name, err = backend.Read(Ref{Kind: KindInterface, ID: "A2"}, PropName)
	require.NoError(t, err)
	assert.Equal(t, "", name, "unnamed interface reads as empty, not as an error")
}

func TestCLIReadEnabled(t *testing.T) {
	runner := &scriptedRunner{outputs: map[string]string{
		"show running-config interface A1": "interface A1\n   disable\n   exit\n",
		"show running-config interface A2": "interface A2\n   exit\n",
	}}
	backend := NewCLIBackend(runner, 0)

	enabled, err := backend.Read(Ref{Kind: KindPort, ID: "A1"}, PropEnabled)
	require.NoError(t, err)
	assert.Equal(t, "false", enabled)

	enabled, err = backend.Read(Ref{Kind: KindPort, ID: "A2"}, PropEnabled)
	require.NoError(t, err)
	assert.Equal(t, "true", enabled)
}

func TestCLIWriteName(t *testing.T) {
	t.Run("set", func(t *testing.T) {
		runner := &scriptedRunner{}
		backend := NewCLIBackend(runner, 0)
		require.NoError(t, backend.Write(Ref{Kind: KindInterface, ID: "A1"}, PropName, "core"))
		assert.Equal(t, []string{"config", "interface A1 name core", "exit"}, runner.commands)
	})

	t.Run("clear", func(t *testing.T) {
		runner := &scriptedRunner{}
		backend := NewCLIBackend(runner, 0)
		require.NoError(t, backend.Write(Ref{Kind: KindInterface, ID: "A1"}, PropName, ""))
		assert.Equal(t, []string{"config", "no interface A1 name", "exit"}, runner.commands)
	})

	t.Run("rejects non-alphanumeric interface name", func(t *testing.T) {
		runner := &scriptedRunner{}
		backend := NewCLIBackend(runner, 0)
		err := backend.Write(Ref{Kind: KindInterface, ID: "A1"}, PropName, "up link!")
		assert.True(t, IsCode(err, ErrCodeInvalidName))
		assert.Empty(t, runner.commands, "validation happens before the device sees anything")
	})

	t.Run("rejects illegal vlan name characters", func(t *testing.T) {
		runner := &scriptedRunner{}
		backend := NewCLIBackend(runner, 0)
		err := backend.Write(Ref{Kind: KindVLAN, ID: "10"}, PropName, `us"ers`)
		assert.True(t, IsCode(err, ErrCodeInvalidName))
	})

	t.Run("vlan names allow spaces", func(t *testing.T) {
		runner := &scriptedRunner{}
		backend := NewCLIBackend(runner, 0)
		require.NoError(t, backend.Write(Ref{Kind: KindVLAN, ID: "10"}, PropName, "guest wifi"))
		assert.Equal(t, []string{"config", "vlan 10 name guest wifi", "exit"}, runner.commands)
	})
}

func TestCLIWriteEnabled(t *testing.T) {
	runner := &scriptedRunner{}
	backend := NewCLIBackend(runner, 0)

	require.NoError(t, backend.Write(Ref{Kind: KindPort, ID: "B3"}, PropEnabled, "false"))
	assert.Equal(t, []string{"config", "interface B3 disable", "exit"}, runner.commands)

	runner.commands = nil
	require.NoError(t, backend.Write(Ref{Kind: KindPort, ID: "B3"}, PropEnabled, "true"))
	assert.Equal(t, []string{"config", "interface B3 enable", "exit"}, runner.commands)
}

func TestCLIErrorClassification(t *testing.T) {
	t.Run("inline device error", func(t *testing.T) {
		runner := &scriptedRunner{outputs: map[string]string{
			"show running-config interface Z9": "Invalid input: Z9\n",
		}}
		backend := NewCLIBackend(runner, 0)
		_, err := backend.Read(Ref{Kind: KindInterface, ID: "Z9"}, PropName)
		assert.True(t, IsCode(err, ErrCodeParseFailed))
	})

	t.Run("session failure", func(t *testing.T) {
		runner := &scriptedRunner{err: errors.New("connection lost")}
		backend := NewCLIBackend(runner, 0)
		_, err := backend.Read(Ref{Kind: KindInterface, ID: "A1"}, PropName)
		assert.True(t, IsCode(err, ErrCodeBackendError))
	})

	t.Run("unsupported property", func(t *testing.T) {
		backend := NewCLIBackend(&scriptedRunner{}, 0)
		_, err := backend.Read(Ref{Kind: KindVLAN, ID: "10"}, PropOperational)
		assert.True(t, IsCode(err, ErrCodeUnsupported))
	})
}

func TestCLIVLANs(t *testing.T) {
	runner := &scriptedRunner{outputs: map[string]string{
		"show running-config": runningConfig,
	}}
	backend := NewCLIBackend(runner, 0)

	vlans, err := backend.VLANs()
	require.NoError(t, err)
	require.Len(t, vlans, 2)

	assert.Equal(t, 1, vlans[0].VID)
	assert.Equal(t, "DEFAULT_VLAN", vlans[0].Name)
	assert.Len(t, vlans[0].Untagged, 24)

	assert.Equal(t, 10, vlans[1].VID)
	assert.Equal(t, "users", vlans[1].Name)
	assert.Equal(t, []string{"A1", "A2", "A3", "A5"}, vlans[1].Untagged)
	assert.Equal(t, []string{"B1"}, vlans[1].Tagged)
}

func TestCLIStaticRoutes(t *testing.T) {
	runner := &scriptedRunner{outputs: map[string]string{
		"show running-config": runningConfig,
	}}
	backend := NewCLIBackend(runner, 0)

	routes, err := backend.StaticRoutes()
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, "10.0.0.0/8 via 192.168.1.1", routes[0].String())
	assert.Equal(t, "2001:db8::/32 via fe80::1", routes[1].String())
}

func TestCLIAddStaticRoute(t *testing.T) {
	t.Run("new route", func(t *testing.T) {
		runner := &scriptedRunner{outputs: map[string]string{
			"show running-config": runningConfig,
		}}
		backend := NewCLIBackend(runner, 0)
		route, err := NewIPv4Route(netip.MustParsePrefix("172.16.0.0/12"), netip.MustParseAddr("192.168.1.254"))
		require.NoError(t, err)
		require.NoError(t, backend.AddStaticRoute(route))
		assert.Contains(t, runner.commands, "ip route 172.16.0.0 255.240.0.0 192.168.1.254")
	})

	t.Run("already configured", func(t *testing.T) {
		runner := &scriptedRunner{outputs: map[string]string{
			"show running-config": runningConfig,
		}}
		backend := NewCLIBackend(runner, 0)
		route, err := NewIPv4Route(netip.MustParsePrefix("10.0.0.0/8"), netip.MustParseAddr("192.168.1.1"))
		require.NoError(t, err)
		err = backend.AddStaticRoute(route)
		assert.True(t, IsCacheInconsistency(err))
		assert.Len(t, runner.commands, 1, "only the precondition read reaches the device")
	})
}

func TestCLIRemoveStaticRoute(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		runner := &scriptedRunner{outputs: map[string]string{
			"show running-config": runningConfig,
		}}
		backend := NewCLIBackend(runner, 0)
		route, err := NewIPv6Route(netip.MustParsePrefix("2001:db8::/32"), netip.MustParseAddr("fe80::1"))
		require.NoError(t, err)
		require.NoError(t, backend.RemoveStaticRoute(route))
		assert.Contains(t, runner.commands, "no ipv6 route 2001:db8::/32 fe80::1")
	})

	t.Run("not configured", func(t *testing.T) {
		runner := &scriptedRunner{outputs: map[string]string{
			"show running-config": runningConfig,
		}}
		backend := NewCLIBackend(runner, 0)
		route, err := NewIPv4Route(netip.MustParsePrefix("172.16.0.0/12"), netip.MustParseAddr("192.168.1.254"))
		require.NoError(t, err)
		err = backend.RemoveStaticRoute(route)
		assert.True(t, IsCacheInconsistency(err))
	})
}
