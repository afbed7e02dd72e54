package device

import (
	"net/netip"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlesren/switchconf/snmp"
)

// fakeAgent is an in-memory OID store. Sets are recorded and applied, and a
// destroy of an address row drops the row's other columns the way a real
// agent would.
type fakeAgent struct {
	store map[string]interface{}
	sets  [][]snmp.VarBind
	err   error
}

func newFakeAgent() *fakeAgent {
	return &fakeAgent{store: map[string]interface{}{}}
}

func (a *fakeAgent) Get(oid string) (interface{}, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.store[oid], nil
}

func (a *fakeAgent) Set(vbs ...snmp.VarBind) error {
	if a.err != nil {
		return a.err
	}
	a.sets = append(a.sets, vbs)
	for _, vb := range vbs {
		if n, ok := vb.Value.(int); ok && n == snmp.RowStatusDestroy &&
			strings.HasPrefix(vb.OID, snmp.OIDHpicfIpAddressRowStatus+".") {
			suffix := strings.TrimPrefix(vb.OID, snmp.OIDHpicfIpAddressRowStatus)
			delete(a.store, snmp.OIDHpicfIpAddressPrefixLength+suffix)
			delete(a.store, vb.OID)
			continue
		}
		a.store[vb.OID] = vb.Value
	}
	return nil
}

func (a *fakeAgent) GetSubtree(prefix string) ([]snmp.VarBind, error) {
	if a.err != nil {
		return nil, a.err
	}
	var rows []snmp.VarBind
	for oid, value := range a.store {
		if strings.HasPrefix(oid, prefix+".") {
			rows = append(rows, snmp.VarBind{OID: oid, Value: value})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].OID < rows[j].OID })
	return rows, nil
}

func (a *fakeAgent) lastSet() []snmp.VarBind {
	if len(a.sets) == 0 {
		return nil
	}
	return a.sets[len(a.sets)-1]
}

func TestMIBReadPort(t *testing.T) {
	agent := newFakeAgent()
	agent.store[snmp.Append(snmp.OIDIfAdminStatus, 27)] = snmp.AdminStatusUp
	agent.store[snmp.Append(snmp.OIDIfOperStatus, 27)] = snmp.AdminStatusDown
	agent.store[snmp.Append(snmp.OIDDot1qPvid, 27)] = 10
	backend := NewMIBBackend(agent, DefaultLayout())

	enabled, err := backend.Read(Ref{Kind: KindPort, ID: "B3"}, PropEnabled)
	require.NoError(t, err)
	assert.Equal(t, "true", enabled)

	operational, err := backend.Read(Ref{Kind: KindPort, ID: "B3"}, PropOperational)
	require.NoError(t, err)
	assert.Equal(t, "false", operational)

	pvid, err := backend.Read(Ref{Kind: KindPort, ID: "B3"}, PropUntaggedVLAN)
	require.NoError(t, err)
	assert.Equal(t, "10", pvid)
}

func TestMIBWritePortEnabled(t *testing.T) {
	agent := newFakeAgent()
	backend := NewMIBBackend(agent, DefaultLayout())

	require.NoError(t, backend.Write(Ref{Kind: KindPort, ID: "B3"}, PropEnabled, "false"))
	require.Len(t, agent.sets, 1)
	assert.Equal(t, snmp.Append(snmp.OIDIfAdminStatus, 27), agent.sets[0][0].OID)
	assert.Equal(t, snmp.AdminStatusDown, agent.sets[0][0].Value)
}

func TestMIBVLANName(t *testing.T) {
	agent := newFakeAgent()
	agent.store[snmp.Append(snmp.OIDDot1qVlanStaticName, 10)] = []byte("users")
	backend := NewMIBBackend(agent, DefaultLayout())

	name, err := backend.Read(Ref{Kind: KindVLAN, ID: "10"}, PropName)
	require.NoError(t, err)
	assert.Equal(t, "users", name)

	require.NoError(t, backend.Write(Ref{Kind: KindVLAN, ID: "10"}, PropName, "guests"))
	assert.Equal(t, []byte("guests"), agent.store[snmp.Append(snmp.OIDDot1qVlanStaticName, 10)])

	err = backend.Write(Ref{Kind: KindVLAN, ID: "10"}, PropName, `gue"sts`)
	assert.True(t, IsCode(err, ErrCodeInvalidName))
}

func TestMIBEnsureVLAN(t *testing.T) {
	t.Run("existing row untouched", func(t *testing.T) {
		agent := newFakeAgent()
		agent.store[snmp.Append(snmp.OIDDot1qVlanStaticRowStatus, 10)] = snmp.RowStatusActive
		backend := NewMIBBackend(agent, DefaultLayout())
		require.NoError(t, backend.EnsureVLAN(10))
		assert.Empty(t, agent.sets)
	})

	t.Run("missing row created", func(t *testing.T) {
		agent := newFakeAgent()
		backend := NewMIBBackend(agent, DefaultLayout())
		require.NoError(t, backend.EnsureVLAN(10))
		require.Len(t, agent.sets, 1)
		assert.Equal(t, snmp.RowStatusCreateAndGo, agent.sets[0][0].Value)
	})
}

func TestMIBPortMembership(t *testing.T) {
	egress := snmp.Append(snmp.OIDDot1qVlanStaticEgressPorts, 10)

	t.Run("list", func(t *testing.T) {
		agent := newFakeAgent()
		agent.store[egress] = []byte{0x80, 0x40}
		backend := NewMIBBackend(agent, DefaultLayout())
		ports, err := backend.TaggedPorts(10)
		require.NoError(t, err)
		assert.Equal(t, []string{"A1", "A10"}, ports)
	})

	t.Run("add", func(t *testing.T) {
		agent := newFakeAgent()
		agent.store[egress] = []byte{0x80, 0x00}
		backend := NewMIBBackend(agent, DefaultLayout())
		require.NoError(t, backend.SetPortTagged(10, "A2", true))
		assert.Equal(t, []byte{0xc0, 0x00}, agent.store[egress])
	})

	t.Run("remove", func(t *testing.T) {
		agent := newFakeAgent()
		agent.store[egress] = []byte{0xc0, 0x00}
		backend := NewMIBBackend(agent, DefaultLayout())
		require.NoError(t, backend.SetPortTagged(10, "A2", false))
		assert.Equal(t, []byte{0x80, 0x00}, agent.store[egress])
	})

	t.Run("already member converges and flags stale state", func(t *testing.T) {
		agent := newFakeAgent()
		agent.store[egress] = []byte{0x80, 0x00}
		backend := NewMIBBackend(agent, DefaultLayout())
		err := backend.SetPortTagged(10, "A1", true)
		assert.True(t, IsCacheInconsistency(err))
		require.Len(t, agent.sets, 1, "the write still goes through")
		assert.Equal(t, []byte{0x80, 0x00}, agent.store[egress])
	})
}

func TestMIBUntaggedRepointsPVID(t *testing.T) {
	untagged := snmp.Append(snmp.OIDDot1qVlanStaticUntaggedPorts, 10)
	agent := newFakeAgent()
	agent.store[untagged] = []byte{0x00}
	backend := NewMIBBackend(agent, DefaultLayout())

	require.NoError(t, backend.SetPortUntagged(10, "A2", true))
	require.Len(t, agent.lastSet(), 2)
	assert.Equal(t, snmp.Append(snmp.OIDDot1qPvid, 2), agent.lastSet()[1].OID)
	assert.Equal(t, 10, agent.lastSet()[1].Value)
}

func TestMIBAddresses(t *testing.T) {
	layout := DefaultLayout()
	ifindex := layout.VLANIfIndex(10)

	seed := func() *fakeAgent {
		agent := newFakeAgent()
		agent.store[snmp.Append(snmp.OIDHpicfIpAddressPrefixLength,
			append([]int{ifindex}, 1, 4, 192, 168, 1, 1)...)] = 24
		agent.store[snmp.Append(snmp.OIDHpicfIpAddressPrefixLength,
			append([]int{layout.VLANIfIndex(99)}, 1, 4, 10, 0, 0, 1)...)] = 8
		return agent
	}

	t.Run("lists only this interface", func(t *testing.T) {
		backend := NewMIBBackend(seed(), layout)
		prefixes, err := backend.IPv4Addresses(10)
		require.NoError(t, err)
		assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("192.168.1.1/24")}, prefixes)
	})

	t.Run("add creates row and converges cache", func(t *testing.T) {
		agent := seed()
		backend := NewMIBBackend(agent, layout)
		require.NoError(t, backend.AddIPv4Address(10, netip.MustParsePrefix("10.1.1.1/16")))

		prefixes, err := backend.IPv4Addresses(10)
		require.NoError(t, err)
		assert.Len(t, prefixes, 2)

		row := agent.lastSet()
		require.Len(t, row, 5)
		assert.Equal(t, snmp.RowStatusCreateAndGo, row[4].Value)
	})

	t.Run("adding present address is a cache inconsistency", func(t *testing.T) {
		backend := NewMIBBackend(seed(), layout)
		err := backend.AddIPv4Address(10, netip.MustParsePrefix("192.168.1.1/24"))
		assert.True(t, IsCacheInconsistency(err))
		assert.Contains(t, backend.CachedAddresses(10), netip.MustParsePrefix("192.168.1.1/24"),
			"the intended state holds even though the expectation was stale")
	})

	t.Run("remove destroys row", func(t *testing.T) {
		agent := seed()
		backend := NewMIBBackend(agent, layout)
		require.NoError(t, backend.RemoveIPv4Address(10, netip.MustParsePrefix("192.168.1.1/24")))

		prefixes, err := backend.IPv4Addresses(10)
		require.NoError(t, err)
		assert.Empty(t, prefixes)
		assert.Empty(t, backend.CachedAddresses(10))
	})

	t.Run("removing absent address is a cache inconsistency", func(t *testing.T) {
		backend := NewMIBBackend(seed(), layout)
		err := backend.RemoveIPv4Address(10, netip.MustParsePrefix("172.16.0.1/12"))
		assert.True(t, IsCacheInconsistency(err))
	})

	t.Run("rejects wrong family", func(t *testing.T) {
		backend := NewMIBBackend(seed(), layout)
		err := backend.AddIPv4Address(10, netip.MustParsePrefix("2001:db8::1/64"))
		assert.True(t, IsCode(err, ErrCodeInvalidAddress))
	})
}

func TestMIBIPv6Addresses(t *testing.T) {
	layout := DefaultLayout()
	agent := newFakeAgent()
	backend := NewMIBBackend(agent, layout)

	require.NoError(t, backend.AddIPv6Address(10, netip.MustParsePrefix("2001:db8::1/64")))

	prefixes, err := backend.IPv6Addresses(10)
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("2001:db8::1/64")}, prefixes)

	v4, err := backend.IPv4Addresses(10)
	require.NoError(t, err)
	assert.Empty(t, v4, "v6 rows do not leak into the v4 listing")

	require.NoError(t, backend.RemoveIPv6Address(10, netip.MustParsePrefix("2001:db8::1/64")))
	prefixes, err = backend.IPv6Addresses(10)
	require.NoError(t, err)
	assert.Empty(t, prefixes)
}

func TestMIBBackendErrors(t *testing.T) {
	agent := newFakeAgent()
	agent.err = assert.AnError
	backend := NewMIBBackend(agent, DefaultLayout())

	_, err := backend.Read(Ref{Kind: KindPort, ID: "A1"}, PropEnabled)
	assert.True(t, IsCode(err, ErrCodeBackendError))

	_, err = backend.IPv4Addresses(10)
	assert.True(t, IsCode(err, ErrCodeBackendError))

	_, err = backend.Read(Ref{Kind: KindInterface, ID: "A1"}, PropName)
	assert.True(t, IsCode(err, ErrCodeUnsupported))
}
