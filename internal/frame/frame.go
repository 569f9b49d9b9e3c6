// internal/frame/frame.go
package frame

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Size is the number of bytes carried by one response, check byte included.
const Size = 6

// AckToken is the literal first token of every well-formed response.
const AckToken = "ok"

// Request is the single byte that asks the encoder for one sample.
const Request byte = ' '

// Sample is one decoded response: b0..b4 payload, b5 check byte.
type Sample [Size]byte

// ErrMalformed is the protocol error for any response that is not
// "ok" followed by exactly six two-digit hex bytes.
var ErrMalformed = errors.New("malformed frame")

// ParseError describes why a line was rejected.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("frame: %s: %q", e.Reason, e.Line)
}

func (e *ParseError) Unwrap() error { return ErrMalformed }

// Code is the status block error code for malformed frames.
func (e *ParseError) Code() uint16 { return 2 }

// Parse turns one response line into a Sample.
// All-or-nothing: any bad token rejects the whole line.
func Parse(line string) (Sample, error) {
	var s Sample

	line = strings.TrimRight(line, "\r\n")
	tokens := strings.Split(line, " ")

	if len(tokens) != Size+1 {
		return Sample{}, &ParseError{
			Line:   line,
			Reason: fmt.Sprintf("expected %d tokens, got %d", Size+1, len(tokens)),
		}
	}
	if tokens[0] != AckToken {
		return Sample{}, &ParseError{Line: line, Reason: "missing ack token"}
	}

	for i, tok := range tokens[1:] {
		if len(tok) != 2 {
			return Sample{}, &ParseError{
				Line:   line,
				Reason: fmt.Sprintf("byte %d: want 2 hex digits, got %q", i, tok),
			}
		}
		v, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return Sample{}, &ParseError{
				Line:   line,
				Reason: fmt.Sprintf("byte %d: bad hex %q", i, tok),
			}
		}
		s[i] = byte(v)
	}

	return s, nil
}

// Format renders s in wire form, e.g. "ok 00 03 08 f6 43 eb".
func Format(s Sample) string {
	var b strings.Builder
	b.Grow(len(AckToken) + Size*3)
	b.WriteString(AckToken)
	for _, v := range s {
		fmt.Fprintf(&b, " %02x", v)
	}
	return b.String()
}

// Bytes returns a copy of the sample as a slice.
func (s Sample) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, s[:])
	return out
}
