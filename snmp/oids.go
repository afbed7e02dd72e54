package snmp

// Q-BRIDGE-MIB dot1qVlanStaticTable (1.3.6.1.2.1.17.7.1.4.3.1), indexed by
// VLAN id.
const (
	OIDDot1qVlanStaticName          = "1.3.6.1.2.1.17.7.1.4.3.1.1"
	OIDDot1qVlanStaticEgressPorts   = "1.3.6.1.2.1.17.7.1.4.3.1.2"
	OIDDot1qVlanStaticUntaggedPorts = "1.3.6.1.2.1.17.7.1.4.3.1.4"
	OIDDot1qVlanStaticRowStatus     = "1.3.6.1.2.1.17.7.1.4.3.1.5"
)

// Q-BRIDGE-MIB dot1qPortVlanTable, indexed by base port.
const (
	OIDDot1qPvid = "1.3.6.1.2.1.17.7.1.4.5.1.1"
)

// IF-MIB ifTable (1.3.6.1.2.1.2.2.1), indexed by ifIndex.
const (
	OIDIfAdminStatus = "1.3.6.1.2.1.2.2.1.7"
	OIDIfOperStatus  = "1.3.6.1.2.1.2.2.1.8"
)

// IP-MIB per-interface enable columns.
const (
	OIDIPv4InterfaceEnableStatus = "1.3.6.1.2.1.4.28.1.3"
	OIDIPv6InterfaceEnableStatus = "1.3.6.1.2.1.4.30.1.5"
)

// HP-ICF-IPCONFIG hpicfIpAddressTable columns, indexed by
// (ifIndex, address family tag, address length, address octets...).
const (
	OIDHpicfIpAddressPrefixLength = "1.3.6.1.4.1.11.2.14.11.1.10.4.1.1.3"
	OIDHpicfIpAddressType         = "1.3.6.1.4.1.11.2.14.11.1.10.4.1.1.4"
	OIDHpicfIpAddressRowStatus    = "1.3.6.1.4.1.11.2.14.11.1.10.4.1.1.5"
)

// HP-ICF-IPCONFIG per-interface configuration columns, indexed by ifIndex.
const (
	OIDHpicfIpv4InterfaceDhcpEnable      = "1.3.6.1.4.1.11.2.14.11.1.10.2.1.1.2"
	OIDHpicfIpv6InterfaceManual          = "1.3.6.1.4.1.11.2.14.11.1.10.3.2.1.1.2"
	OIDHpicfIpv6InterfaceCfgEnableStatus = "1.3.6.1.4.1.11.2.14.11.1.10.3.2.1.1.6"
)

// Well-known column values.
const (
	RowStatusActive      = 1
	RowStatusCreateAndGo = 4
	RowStatusDestroy     = 6

	AdminStatusUp   = 1
	AdminStatusDown = 2

	AddressTypeUnicast = 1

	StatusEnabled  = 1
	StatusDisabled = 2
)
