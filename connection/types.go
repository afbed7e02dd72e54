package connection

type (
	Platform    string
	Protocol    string
	CommandType string
)

const (
	PlatformProcurve   Platform = "hp_procurve"
	PlatformCiscoIOSXE Platform = "cisco_iosxe"
	PlatformAristaEOS  Platform = "arista_eos"

	ProtocolSSH     Protocol = "ssh"
	ProtocolScrapli Protocol = "scrapli"

	CommandTypeCommands CommandType = "commands"
)
