package snmp

import (
	"fmt"
	"strconv"
	"strings"
)

// Append extends an OID with numeric index components.
func Append(oid string, parts ...int) string {
	var b strings.Builder
	b.WriteString(oid)
	for _, part := range parts {
		b.WriteByte('.')
		b.WriteString(strconv.Itoa(part))
	}
	return b.String()
}

// SuffixInts returns the numeric components of oid below prefix. Walked rows
// come back with a leading dot, so both spellings are accepted on either
// side.
func SuffixInts(oid, prefix string) ([]int, error) {
	oid = strings.TrimPrefix(oid, ".")
	prefix = strings.TrimPrefix(prefix, ".")
	if !strings.HasPrefix(oid, prefix+".") {
		return nil, fmt.Errorf("oid %s not under %s", oid, prefix)
	}
	rest := strings.TrimPrefix(oid, prefix+".")
	pieces := strings.Split(rest, ".")
	suffix := make([]int, 0, len(pieces))
	for _, piece := range pieces {
		n, err := strconv.Atoi(piece)
		if err != nil {
			return nil, fmt.Errorf("oid %s: bad component %q", oid, piece)
		}
		suffix = append(suffix, n)
	}
	return suffix, nil
}
