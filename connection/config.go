package connection

import "time"

// SessionConfig carries the vendor constants that frame command output on an
// interactive shell. The zero value works for HP ProCurve class devices.
type SessionConfig struct {
	// PromptSuffix is the fixed trailing string the shell prints when it is
	// ready for the next command. It is the sole framing signal of the
	// protocol.
	PromptSuffix string

	// KeepCommandEcho leaves the echoed command line at the start of the
	// output instead of stripping it.
	KeepCommandEcho bool

	// ReadChunkSize is the per-read request size. Large enough to usually
	// take a whole response in one read, the loop handles the rest.
	ReadChunkSize int

	// BannerTimeout bounds the wait for the greeting banner on connect.
	BannerTimeout time.Duration
}

func (c *SessionConfig) applyDefaults() {
	if c.PromptSuffix == "" {
		c.PromptSuffix = "# "
	}
	if c.ReadChunkSize <= 0 {
		c.ReadChunkSize = 65535
	}
	if c.BannerTimeout <= 0 {
		c.BannerTimeout = 10 * time.Second
	}
}

// ConnectionConfig describes how to reach one device.
type ConnectionConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Platform Platform
	Timeout  time.Duration

	// Session holds the prompt framing constants; used by the SSH driver
	// only, scrapligo carries its own platform definitions.
	Session SessionConfig
}
