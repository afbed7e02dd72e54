package connection

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/ssh"
)

// SSHFactory builds prompt-framed session drivers over plain SSH. This is
// the path for devices scrapligo has no platform definition for.
type SSHFactory struct{}

func (f *SSHFactory) Create(config ConnectionConfig) (ProtocolDriver, error) {
	session, err := DialSession(config)
	if err != nil {
		return nil, err
	}
	return NewSessionDriver(session, config.Timeout), nil
}

func (f *SSHFactory) HealthCheck(driver ProtocolDriver) bool {
	_, err := driver.Execute(context.Background(), &ProtocolRequest{
		CommandType: CommandTypeCommands,
		Payload:     []string{"show version"},
	})
	return err == nil
}

// DialSession opens an SSH connection to the device and wraps its shell in a
// prompt-framed Session. The greeting banner is consumed before return.
func DialSession(config ConnectionConfig) (*Session, error) {
	if config.Port == 0 {
		config.Port = 22
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	client, err := ssh.Dial("tcp", fmt.Sprintf("%s:%d", config.Host, config.Port),
		&ssh.ClientConfig{
			User:            config.Username,
			Auth:            []ssh.AuthMethod{ssh.Password(config.Password)},
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
			Timeout:         config.Timeout,
		})
	if err != nil {
		return nil, fmt.Errorf("ssh dial failed: %w", err)
	}

	transport, err := NewSSHTransport(client)
	if err != nil {
		client.Close()
		return nil, err
	}
	session, err := NewSession(transport, config.Session)
	if err != nil {
		return nil, err
	}
	return session, nil
}
