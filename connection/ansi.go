package connection

import (
	"bytes"
	"regexp"
)

// A terminal control sequence is ESC, any run of non-letter bytes, then one
// letter. The device pty sprays them around the prompt and cursor; they are
// never part of command output, so they are removed before both the prompt
// check and the returned result. A sequence whose final letter has not
// arrived yet stays in the buffer untouched and is removed on a later pass,
// which keeps sequences split across read chunks from corrupting the prompt
// match.
var controlSequence = regexp.MustCompile(`\x1b[^a-zA-Z]*[a-zA-Z]`)

func stripControlSequences(p []byte) []byte {
	if !bytes.ContainsRune(p, 0x1b) {
		return p
	}
	return controlSequence.ReplaceAll(p, nil)
}
