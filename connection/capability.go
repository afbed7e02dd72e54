package connection

import "time"

type ProtocolCapability struct {
	Protocol        Protocol
	PlatformSupport []Platform

	CommandTypesSupport []CommandType

	// MaxConcurrent is per connection. The interactive protocol has no
	// multiplexing, so the session driver is strictly 1.
	MaxConcurrent int
	Timeout       time.Duration
}

var SessionCapability = ProtocolCapability{
	Protocol:            ProtocolSSH,
	PlatformSupport:     []Platform{PlatformProcurve},
	CommandTypesSupport: []CommandType{CommandTypeCommands},
	MaxConcurrent:       1,
	Timeout:             30 * time.Second,
}

var ScrapliCapability = ProtocolCapability{
	Protocol:            ProtocolScrapli,
	PlatformSupport:     []Platform{PlatformCiscoIOSXE, PlatformAristaEOS},
	CommandTypesSupport: []CommandType{CommandTypeCommands},
	MaxConcurrent:       1,
	Timeout:             30 * time.Second,
}
