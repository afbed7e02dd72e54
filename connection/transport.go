package connection

import (
	"fmt"
	"io"

	"golang.org/x/crypto/ssh"
)

// Transport is a connected duplex byte stream to a device shell.
// Authentication and connection establishment happen before a Transport is
// handed to a Session.
type Transport interface {
	// Send writes p to the stream.
	Send(p []byte) error
	// Recv blocks until at least one byte is available or the stream fails,
	// returning at most max bytes.
	Recv(max int) ([]byte, error)
	Close() error
}

// SSHTransport runs an interactive shell over an SSH connection. The device
// side allocates a pty, so the stream carries terminal control sequences and
// command echo; the Session above strips both.
type SSHTransport struct {
	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	stdout  io.Reader
}

// NewSSHTransport starts a shell on an established SSH connection. The
// client is owned by the transport from here on and closed with it.
func NewSSHTransport(client *ssh.Client) (*SSHTransport, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("new session failed: %w", err)
	}
	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 115200,
		ssh.TTY_OP_OSPEED: 115200,
	}
	// Oversized height keeps the switch from paginating long output.
	if err := session.RequestPty("vt100", 1000, 120, modes); err != nil {
		session.Close()
		return nil, fmt.Errorf("request pty failed: %w", err)
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("stdin pipe failed: %w", err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("stdout pipe failed: %w", err)
	}
	if err := session.Shell(); err != nil {
		session.Close()
		return nil, fmt.Errorf("start shell failed: %w", err)
	}
	return &SSHTransport{client: client, session: session, stdin: stdin, stdout: stdout}, nil
}

func (t *SSHTransport) Send(p []byte) error {
	_, err := t.stdin.Write(p)
	return err
}

func (t *SSHTransport) Recv(max int) ([]byte, error) {
	buf := make([]byte, max)
	n, err := t.stdout.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil {
		err = io.EOF
	}
	return nil, err
}

func (t *SSHTransport) Close() error {
	t.session.Close()
	return t.client.Close()
}
