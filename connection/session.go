package connection

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charlesren/ylog"
)

type readResult struct {
	data []byte
	err  error
}

// Session turns a prompt-driven interactive terminal stream into synchronous
// command/output calls. The protocol has no message framing beyond "keep
// reading until the prompt reappears", so a Session accumulates bytes,
// strips terminal control sequences and watches for the configured prompt
// suffix.
//
// At most one command may be in flight; Execute holds the session lock for
// the whole exchange. After ErrTimeout or ErrConnectionLost the session is
// unusable and must be discarded.
type Session struct {
	cfg       SessionConfig
	transport Transport
	reads     chan readResult
	done      chan struct{}

	mu       sync.Mutex
	buf      bytes.Buffer
	hostname string
	unusable bool
	closed   bool
}

// NewSession starts the reader goroutine and consumes the greeting banner up
// to the first prompt. The transport is owned by the session from here on.
func NewSession(transport Transport, cfg SessionConfig) (*Session, error) {
	cfg.applyDefaults()
	s := &Session{
		cfg:       cfg,
		transport: transport,
		reads:     make(chan readResult, 4),
		done:      make(chan struct{}),
	}
	go s.readLoop()
	greeting, err := s.collect(cfg.BannerTimeout)
	if err != nil {
		close(s.done)
		transport.Close()
		return nil, fmt.Errorf("greeting banner: %w", err)
	}
	// The banner's final line is the full prompt; the part before the suffix
	// is the hostname, used later to recognize prompt lines in any config
	// context ("switch# ", "switch(config)# ", ...).
	prompt := lastLine(greeting)
	s.hostname = strings.TrimSuffix(prompt, cfg.PromptSuffix)
	if i := strings.IndexByte(s.hostname, '('); i >= 0 {
		s.hostname = s.hostname[:i]
	}
	s.buf.Reset()
	return s, nil
}

func lastLine(stripped []byte) string {
	text := strings.ReplaceAll(string(stripped), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		return text[i+1:]
	}
	return text
}

// readLoop is the only reader of the transport. It exits when the transport
// fails or the session closes. The done select matters after a timeout: a
// poisoned session stops draining reads, and a device that keeps emitting
// output would otherwise park this goroutine in the channel send forever.
func (s *Session) readLoop() {
	for {
		data, err := s.transport.Recv(s.cfg.ReadChunkSize)
		select {
		case s.reads <- readResult{data: data, err: err}:
		case <-s.done:
			return
		}
		if err != nil {
			return
		}
	}
}

// Execute sends command and blocks until the shell prints its prompt again,
// returning the output between the echoed command and the prompt. No partial
// result is ever delivered: on timeout the accumulated buffer is discarded
// and the session poisoned.
func (s *Session) Execute(command string, timeout time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unusable || s.closed {
		return "", ErrSessionUnusable
	}
	s.buf.Reset()
	if err := s.transport.Send([]byte(command + "\n")); err != nil {
		s.unusable = true
		return "", fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}
	stripped, err := s.collect(timeout)
	if err != nil {
		s.unusable = true
		s.buf.Reset()
		ylog.Warnf("session", "command %q failed: %v", command, err)
		return "", err
	}
	ylog.Debugf("session", "command %q: %d bytes before framing", command, len(stripped))
	return s.frame(stripped, command), nil
}

// Hostname returns the device name learned from the greeting banner.
func (s *Session) Hostname() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostname
}

// Usable reports whether the session may still execute commands.
func (s *Session) Usable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.unusable && !s.closed
}

// Close releases the reader goroutine and shuts the transport down.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.unusable = true
	close(s.done)
	return s.transport.Close()
}

// collect accumulates stream chunks until the control-stripped buffer ends
// with the prompt suffix, returning the stripped bytes. Stripping runs over
// the whole accumulated buffer on every pass so control sequences split
// across chunks cannot corrupt the prompt match.
func (s *Session) collect(timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	suffix := []byte(s.cfg.PromptSuffix)
	for {
		stripped := stripControlSequences(s.buf.Bytes())
		if s.buf.Len() > 0 && bytes.HasSuffix(stripped, suffix) {
			return stripped, nil
		}
		select {
		case r := <-s.reads:
			if r.err != nil {
				return nil, fmt.Errorf("%w: %v", ErrConnectionLost, r.err)
			}
			s.buf.Write(r.data)
		case <-timer.C:
			return nil, ErrTimeout
		}
	}
}

// frame cuts the echoed command off the front and the prompt off the back.
// A trailing segment that starts with the hostname learned from the banner
// is a full prompt line and goes entirely; otherwise only the bare suffix is
// removed.
func (s *Session) frame(stripped []byte, command string) string {
	text := strings.ReplaceAll(string(stripped), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	if !s.cfg.KeepCommandEcho {
		if strings.HasPrefix(text, command) {
			text = strings.TrimPrefix(text[len(command):], "\n")
		} else if i := strings.IndexByte(text, '\n'); i >= 0 && strings.TrimSpace(text[:i]) == strings.TrimSpace(command) {
			text = text[i+1:]
		}
	}

	cut := strings.LastIndexByte(text, '\n')
	seg := text[cut+1:]
	promptLine := seg == s.cfg.PromptSuffix ||
		(s.hostname != "" && strings.HasPrefix(seg, s.hostname))
	if promptLine {
		if cut < 0 {
			return ""
		}
		text = text[:cut]
	} else {
		text = strings.TrimSuffix(text, s.cfg.PromptSuffix)
	}
	return strings.TrimRight(text, "\n")
}
