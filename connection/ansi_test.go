package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripControlSequences(t *testing.T) {
	t.Run("should pass plain text through untouched", func(t *testing.T) {
		in := []byte("show vlans\r\nVLAN 1\r\nswitch# ")
		assert.Equal(t, in, stripControlSequences(in))
	})

	t.Run("should remove erase-line and color sequences", func(t *testing.T) {
		in := []byte("\x1b[2Kshow vlans\r\n\x1b[0;32mVLAN 1\x1b[0m\r\n")
		assert.Equal(t, []byte("show vlans\r\nVLAN 1\r\n"), stripControlSequences(in))
	})

	t.Run("should remove sequences with long parameter runs", func(t *testing.T) {
		in := []byte("a\x1b[1;2;3;4;5Hb")
		assert.Equal(t, []byte("ab"), stripControlSequences(in))
	})

	t.Run("should leave an unterminated sequence in place", func(t *testing.T) {
		// the final letter has not arrived yet; a later pass removes it
		in := []byte("abc\x1b[2")
		assert.Equal(t, in, stripControlSequences(in))
	})
}
