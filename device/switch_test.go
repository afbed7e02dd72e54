package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlesren/switchconf/snmp"
)

func TestSwitchVLAN(t *testing.T) {
	agent := newFakeAgent()
	sw := NewSwitch("switch", nil, agent, Options{})

	vlan, err := sw.VLAN(10)
	require.NoError(t, err)
	assert.Equal(t, 10, vlan.VID)
	assert.Equal(t, 587, vlan.IfIndex())
	assert.Equal(t, snmp.RowStatusCreateAndGo,
		agent.store[snmp.Append(snmp.OIDDot1qVlanStaticRowStatus, 10)],
		"binding a vlan creates its static row when missing")

	require.NoError(t, vlan.SetName("users"))
	name, err := vlan.Name()
	require.NoError(t, err)
	assert.Equal(t, "users", name)
}

func TestSwitchPort(t *testing.T) {
	agent := newFakeAgent()
	agent.store[snmp.Append(snmp.OIDIfAdminStatus, 27)] = snmp.AdminStatusUp
	sw := NewSwitch("switch", nil, agent, Options{})

	port, err := sw.Port("B3")
	require.NoError(t, err)

	ifindex, err := port.IfIndex()
	require.NoError(t, err)
	assert.Equal(t, 27, ifindex)

	enabled, err := port.Enabled()
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, port.SetEnabled(false))
	enabled, err = port.Enabled()
	require.NoError(t, err)
	assert.False(t, enabled)

	_, err = sw.Port("Q99")
	assert.True(t, IsCode(err, ErrCodeInvalidPort))

	_, err = port.Name()
	assert.True(t, IsCode(err, ErrCodeUnsupported), "no session means no friendly names")

	t.Run("no backend at all", func(t *testing.T) {
		bare := NewSwitch("switch", nil, nil, Options{})
		_, err := bare.Port("B3")
		assert.True(t, IsCode(err, ErrCodeUnsupported))
	})
}

func TestSwitchInterface(t *testing.T) {
	runner := &scriptedRunner{outputs: map[string]string{
		"show running-config interface A1": "interface A1\n   name \"uplink\"\n   exit\n",
	}}
	sw := NewSwitch("switch", runner, nil, Options{})

	iface, err := sw.Interface("A1")
	require.NoError(t, err)

	name, err := iface.Name()
	require.NoError(t, err)
	assert.Equal(t, "uplink", name)

	require.NoError(t, iface.SetName(""))
	assert.Contains(t, runner.commands, "no interface A1 name")

	_, err = sw.VLAN(10)
	assert.True(t, IsCode(err, ErrCodeUnsupported), "vlan objects need the mib client")
}

func TestSwitchExecuteCommand(t *testing.T) {
	runner := &scriptedRunner{outputs: map[string]string{"show version": "WB.16.04"}}
	sw := NewSwitch("switch", runner, nil, Options{})

	out, err := sw.ExecuteCommand("show version")
	require.NoError(t, err)
	assert.Equal(t, "WB.16.04", out)

	mibOnly := NewSwitch("switch", nil, newFakeAgent(), Options{})
	_, err = mibOnly.ExecuteCommand("show version")
	assert.True(t, IsCode(err, ErrCodeUnsupported))
}
