// Package codec implements the pure wire codecs shared by the CLI and MIB
// backends: dot1q port-list bitmaps, indexed-table OID suffixes and the
// comma/hyphen range lists found in running-config output. All functions are
// stateless and safe for concurrent use.
package codec

import (
	"errors"
	"fmt"
)

var ErrIndexOutOfRange = errors.New("port index out of range")

// DecodePortList returns the 1-based port indices whose bits are set in a
// packed dot1q port list. Within each byte the most significant bit carries
// the lowest port number, so bit 0 of byte 0 is port 1.
func DecodePortList(bitmap []byte) []int {
	var ports []int
	for i, b := range bitmap {
		for bit := 0; bit < 8; bit++ {
			if b&(1<<uint(7-bit)) != 0 {
				ports = append(ports, i*8+bit+1)
			}
		}
	}
	return ports
}

// EncodePortList packs the given 1-based port indices into a bitmap of
// length bytes. The length is a protocol constant of the device, so a port
// beyond length*8 is a contract violation, not something to clamp.
func EncodePortList(ports []int, length int) ([]byte, error) {
	bitmap := make([]byte, length)
	for _, port := range ports {
		if port < 1 || port > length*8 {
			return nil, fmt.Errorf("%w: port %d in a %d byte list", ErrIndexOutOfRange, port, length)
		}
		bitmap[(port-1)/8] |= 1 << uint(7-(port-1)%8)
	}
	return bitmap, nil
}

// SetPortBit returns a copy of bitmap with the bit for the 1-based port
// forced to member. The input slice is never modified, which keeps
// read-modify-write updates against the device free of aliasing surprises.
func SetPortBit(bitmap []byte, port int, member bool) ([]byte, error) {
	if port < 1 || port > len(bitmap)*8 {
		return nil, fmt.Errorf("%w: port %d in a %d byte list", ErrIndexOutOfRange, port, len(bitmap))
	}
	out := make([]byte, len(bitmap))
	copy(out, bitmap)
	mask := byte(1) << uint(7-(port-1)%8)
	if member {
		out[(port-1)/8] |= mask
	} else {
		out[(port-1)/8] &^= mask
	}
	return out, nil
}
