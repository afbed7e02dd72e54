package codec

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var ErrMalformedRange = errors.New("malformed range expression")

// DecodeRangeList expands a comma separated list of items and hyphenated
// ranges as printed in running-config output, e.g. "A1-A3,A5" into
// [A1 A2 A3 A5]. Ranges share the non-numeric prefix of their first bound;
// the second bound may repeat it ("A1-A3") or omit it ("A1-3"). An empty
// string is an empty list, not an error.
func DecodeRangeList(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	var items []string
	for _, piece := range strings.Split(text, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			return nil, fmt.Errorf("%w: empty element in %q", ErrMalformedRange, text)
		}
		bounds := strings.Split(piece, "-")
		switch len(bounds) {
		case 1:
			items = append(items, piece)
		case 2:
			prefix, lo, err := splitRangeToken(bounds[0])
			if err != nil {
				return nil, err
			}
			hiPrefix, hi, err := splitRangeToken2(bounds[1])
			if err != nil {
				return nil, err
			}
			if hiPrefix != "" && hiPrefix != prefix {
				return nil, fmt.Errorf("%w: mismatched prefixes in %q", ErrMalformedRange, piece)
			}
			if hi < lo {
				return nil, fmt.Errorf("%w: descending range %q", ErrMalformedRange, piece)
			}
			for n := lo; n <= hi; n++ {
				items = append(items, prefix+strconv.Itoa(n))
			}
		default:
			return nil, fmt.Errorf("%w: %q", ErrMalformedRange, piece)
		}
	}
	return items, nil
}

// EncodeRangeList is the inverse of DecodeRangeList. Items are sorted into
// canonical order (prefix, then numeric suffix), deduplicated, and adjacent
// runs of length two or more within one prefix collapse to "start-end".
func EncodeRangeList(items []string) (string, error) {
	type token struct {
		prefix string
		n      int
	}
	tokens := make([]token, 0, len(items))
	for _, item := range items {
		prefix, n, err := splitRangeToken(item)
		if err != nil {
			return "", err
		}
		tokens = append(tokens, token{prefix, n})
	}
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].prefix != tokens[j].prefix {
			return tokens[i].prefix < tokens[j].prefix
		}
		return tokens[i].n < tokens[j].n
	})

	var pieces []string
	for i := 0; i < len(tokens); {
		j := i
		for j+1 < len(tokens) && tokens[j+1].prefix == tokens[i].prefix &&
			(tokens[j+1].n == tokens[j].n+1 || tokens[j+1].n == tokens[j].n) {
			j++
		}
		start := tokens[i].prefix + strconv.Itoa(tokens[i].n)
		if tokens[j].n > tokens[i].n {
			pieces = append(pieces, start+"-"+tokens[i].prefix+strconv.Itoa(tokens[j].n))
		} else {
			pieces = append(pieces, start)
		}
		i = j + 1
	}
	return strings.Join(pieces, ","), nil
}

// splitRangeToken separates "A12" into prefix "A" and number 12. The numeric
// suffix is mandatory.
func splitRangeToken(tok string) (string, int, error) {
	tok = strings.TrimSpace(tok)
	i := len(tok)
	for i > 0 && tok[i-1] >= '0' && tok[i-1] <= '9' {
		i--
	}
	if i == len(tok) {
		return "", 0, fmt.Errorf("%w: %q has no numeric suffix", ErrMalformedRange, tok)
	}
	n, err := strconv.Atoi(tok[i:])
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedRange, tok)
	}
	return tok[:i], n, nil
}

// splitRangeToken2 additionally accepts a bare number as the upper bound of
// a range ("A1-3").
func splitRangeToken2(tok string) (string, int, error) {
	tok = strings.TrimSpace(tok)
	if n, err := strconv.Atoi(tok); err == nil {
		return "", n, nil
	}
	return splitRangeToken(tok)
}
