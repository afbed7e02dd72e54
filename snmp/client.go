// Package snmp implements the MIB query/set backend: a thin synchronous
// client over gosnmp plus the OID tables the device exposes. The protocol is
// stateless request/response, so unlike the interactive session a Client may
// be shared; the gosnmp connection itself is serialized with a mutex.
package snmp

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charlesren/ylog"
	"github.com/gosnmp/gosnmp"
)

// Value types accepted by Set. Aliased so callers do not import gosnmp.
const (
	TypeInteger     = gosnmp.Integer
	TypeOctetString = gosnmp.OctetString
	TypeGauge32     = gosnmp.Gauge32
)

// VarBind pairs an OID with a typed value.
type VarBind struct {
	OID   string
	Type  gosnmp.Asn1BER
	Value interface{}
}

// BackendError wraps any failure from the SNMP engine. It is opaque to the
// layers above: the engine already applies the configured retry policy, so
// nothing here is retried again.
type BackendError struct {
	Op  string
	OID string
	Err error
}

func (e *BackendError) Error() string {
	if e.OID != "" {
		return fmt.Sprintf("snmp %s %s: %v", e.Op, e.OID, e.Err)
	}
	return fmt.Sprintf("snmp %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Config describes one device agent.
type Config struct {
	Host      string
	Port      uint16
	Community string
	Timeout   time.Duration
	Retries   int
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 161
	}
	if c.Community == "" {
		c.Community = "public"
	}
	if c.Timeout == 0 {
		c.Timeout = 8 * time.Second
	}
	if c.Retries == 0 {
		c.Retries = 5
	}
}

// Client issues GET/SET/GETNEXT requests against one agent.
type Client struct {
	mu   sync.Mutex
	conn *gosnmp.GoSNMP
}

func NewClient(cfg Config) (*Client, error) {
	cfg.applyDefaults()
	conn := &gosnmp.GoSNMP{
		Target:    cfg.Host,
		Port:      cfg.Port,
		Community: cfg.Community,
		Version:   gosnmp.Version2c,
		Timeout:   cfg.Timeout,
		Retries:   cfg.Retries,
		MaxOids:   gosnmp.MaxOids,
	}
	if err := conn.Connect(); err != nil {
		return nil, &BackendError{Op: "connect", Err: err}
	}
	return &Client{conn: conn}, nil
}

// Get reads a single value. OctetString values come back as []byte, integer
// kinds as int.
func (c *Client) Get(oid string) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	packet, err := c.conn.Get([]string{oid})
	if err != nil {
		return nil, &BackendError{Op: "get", OID: oid, Err: err}
	}
	if packet.Error != gosnmp.NoError {
		return nil, &BackendError{Op: "get", OID: oid, Err: fmt.Errorf("agent error %v", packet.Error)}
	}
	if len(packet.Variables) == 0 {
		return nil, &BackendError{Op: "get", OID: oid, Err: errors.New("empty response")}
	}
	pdu := packet.Variables[0]
	if pdu.Type == gosnmp.NoSuchObject || pdu.Type == gosnmp.NoSuchInstance {
		return nil, nil
	}
	return normalizeValue(pdu), nil
}

// Set writes the given bindings in one request, so a multi-column row update
// is atomic as far as the agent allows.
func (c *Client) Set(vbs ...VarBind) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	pdus := make([]gosnmp.SnmpPDU, 0, len(vbs))
	for _, vb := range vbs {
		pdus = append(pdus, gosnmp.SnmpPDU{Name: vb.OID, Type: vb.Type, Value: vb.Value})
	}
	packet, err := c.conn.Set(pdus)
	if err != nil {
		return &BackendError{Op: "set", OID: firstOID(vbs), Err: err}
	}
	if packet.Error != gosnmp.NoError {
		return &BackendError{Op: "set", OID: firstOID(vbs), Err: fmt.Errorf("agent error %v", packet.Error)}
	}
	return nil
}

// GetSubtree walks everything below prefix.
func (c *Client) GetSubtree(prefix string) ([]VarBind, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pdus, err := c.conn.WalkAll(prefix)
	if err != nil {
		return nil, &BackendError{Op: "walk", OID: prefix, Err: err}
	}
	ylog.Debugf("snmp", "walk %s: %d rows", prefix, len(pdus))
	out := make([]VarBind, 0, len(pdus))
	for _, pdu := range pdus {
		out = append(out, VarBind{OID: pdu.Name, Type: pdu.Type, Value: normalizeValue(pdu)})
	}
	return out, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn.Conn != nil {
		return c.conn.Conn.Close()
	}
	return nil
}

func firstOID(vbs []VarBind) string {
	if len(vbs) == 0 {
		return ""
	}
	return vbs[0].OID
}

// normalizeValue flattens the handful of gosnmp value representations the
// tables here use: []byte for octet strings, int for every integer kind.
func normalizeValue(pdu gosnmp.SnmpPDU) interface{} {
	switch v := pdu.Value.(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	case int:
		return v
	case uint:
		return int(v)
	case uint32:
		return int(v)
	case int64:
		return int(v)
	case uint64:
		return int(v)
	default:
		return pdu.Value
	}
}
