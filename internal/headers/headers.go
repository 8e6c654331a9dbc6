// Package headers implements an incremental parser/generator for the
// name/value lines between a start line and the blank line that ends
// them: an order-preserving multimap (order matters for trailer
// promotion and round-trip generation) exposing HasHeader,
// HeaderValue, HeaderTokens, HasHeaderToken, AddHeader, SetHeader,
// RemoveHeader, SetLineLimit, and Generate.
package headers

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ParseStatus mirrors request.ParseStatus/response.ParseStatus: the
// headers collaborator is itself an incremental parser and reports the
// same two-valued status.
type ParseStatus int

const (
	Incomplete ParseStatus = iota
	Complete
)

// Sentinel errors this package's own Parse can return. The owning
// request/response state machine wraps these as herr.Headers/
// herr.Trailer so callers can tell which stage failed.
var (
	ErrLineMissingColon    = errors.New("header line missing colon")
	ErrLineTooLong         = errors.New("header line too long")
	ErrIllegalNameChar     = errors.New("header name contains illegal character")
	ErrObsoleteLineFolding = errors.New("obsolete line folding is not supported")
)

// Header is one name/value pair, in the order it was parsed or added.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered, case-insensitive-on-lookup multimap of header
// name/value pairs, plus an optional per-line length limit.
type Headers struct {
	entries   []Header
	lineLimit *int
}

// New returns an empty Headers value with no per-line limit.
func New() *Headers {
	return &Headers{}
}

// SetLineLimit sets (or, with nil, clears) the maximum length of a
// single header line Parse will accept before it fails with
// ErrLineTooLong.
func (h *Headers) SetLineLimit(limit *int) {
	h.lineLimit = limit
}

// Entries returns the parsed/added pairs in order. Callers should treat
// the returned slice as read-only.
func (h *Headers) Entries() []Header {
	return h.entries
}

// HasHeader reports whether any header named name (case-insensitive)
// is present.
func (h *Headers) HasHeader(name string) bool {
	for _, e := range h.entries {
		if strings.EqualFold(e.Name, name) {
			return true
		}
	}
	return false
}

// HeaderValue returns the combined value of every header named name,
// joined with ", " in parse order, as RFC 7230 §3.2.2 permits treating
// a multi-valued header as a single comma-separated one. ok is false if
// no such header exists.
func (h *Headers) HeaderValue(name string) (value string, ok bool) {
	var values []string
	for _, e := range h.entries {
		if strings.EqualFold(e.Name, name) {
			values = append(values, e.Value)
		}
	}
	if values == nil {
		return "", false
	}
	return strings.Join(values, ", "), true
}

// HeaderTokens splits the combined value of every header named name on
// commas, trims surrounding whitespace from each element, and drops
// empty elements. Used for Transfer-Encoding/Content-Encoding token
// lists.
func (h *Headers) HeaderTokens(name string) []string {
	value, ok := h.HeaderValue(name)
	if !ok {
		return nil
	}
	var tokens []string
	for _, tok := range strings.Split(value, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// HasHeaderToken reports whether name's token list contains tok,
// compared case-insensitively.
func (h *Headers) HasHeaderToken(name, tok string) bool {
	for _, t := range h.HeaderTokens(name) {
		if strings.EqualFold(t, tok) {
			return true
		}
	}
	return false
}

// AddHeader appends a new name/value pair without disturbing any
// existing header of the same name.
func (h *Headers) AddHeader(name, value string) {
	h.entries = append(h.entries, Header{Name: name, Value: value})
}

// SetHeader removes every existing header named name and replaces them
// with a single entry, at the position of the first removed entry (or
// the end, if name was not already present) so the header's relative
// order is disturbed as little as possible.
func (h *Headers) SetHeader(name, value string) {
	insertAt := -1
	kept := h.entries[:0]
	for i, e := range h.entries {
		if strings.EqualFold(e.Name, name) {
			if insertAt == -1 {
				insertAt = i
			}
			continue
		}
		kept = append(kept, e)
	}
	h.entries = kept
	newHeader := Header{Name: name, Value: value}
	if insertAt == -1 || insertAt >= len(h.entries) {
		h.entries = append(h.entries, newHeader)
		return
	}
	h.entries = append(h.entries, Header{})
	copy(h.entries[insertAt+1:], h.entries[insertAt:])
	h.entries[insertAt] = newHeader
}

// RemoveHeader removes every header named name.
func (h *Headers) RemoveHeader(name string) {
	kept := h.entries[:0]
	for _, e := range h.entries {
		if !strings.EqualFold(e.Name, name) {
			kept = append(kept, e)
		}
	}
	h.entries = kept
}

var crlf = []byte("\r\n")

// Parse consumes header lines from data until it finds the blank line
// that terminates the header block, or runs out of complete lines.
// Each call is fully incremental: consumed counts only the bytes of
// whole header lines (plus the terminating blank line, on Complete)
// that were committed to h. On Incomplete with a nil error, the caller
// should present more bytes and call Parse again; data already
// consumed must not be re-presented.
func (h *Headers) Parse(data []byte) (consumed int, status ParseStatus, err error) {
	for {
		remainder := data[consumed:]
		idx := bytes.Index(remainder, crlf)
		if idx == -1 {
			if h.lineLimit != nil && len(remainder) > *h.lineLimit {
				return consumed, Incomplete, ErrLineTooLong
			}
			return consumed, Incomplete, nil
		}
		if h.lineLimit != nil && idx > *h.lineLimit {
			return consumed, Incomplete, ErrLineTooLong
		}
		if idx == 0 {
			// Blank line: end of header block.
			return consumed + 2, Complete, nil
		}

		line := remainder[:idx]
		if line[0] == ' ' || line[0] == '\t' {
			return consumed, Incomplete, ErrObsoleteLineFolding
		}

		name, value, perr := parseLine(line)
		if perr != nil {
			return consumed, Incomplete, perr
		}
		h.entries = append(h.entries, Header{Name: name, Value: value})
		consumed += idx + 2
	}
}

// Generate writes every header as "Name: Value\r\n" in parse/add order,
// followed by the terminating blank line.
func (h *Headers) Generate() ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range h.entries {
		fmt.Fprintf(&buf, "%s: %s\r\n", e.Name, e.Value)
	}
	buf.WriteString("\r\n")
	return buf.Bytes(), nil
}

func parseLine(line []byte) (name, value string, err error) {
	colon := bytes.IndexByte(line, ':')
	if colon == -1 {
		return "", "", ErrLineMissingColon
	}
	rawName := line[:colon]
	rawValue := line[colon+1:]

	if len(rawName) == 0 || bytes.ContainsAny(rawName, " \t") {
		return "", "", ErrLineMissingColon
	}
	for _, b := range rawName {
		if !isValidHeaderNameChar(b) {
			return "", "", fmt.Errorf("%w: %q", ErrIllegalNameChar, rune(b))
		}
	}
	if bytes.ContainsAny(rawValue, "\x00\r\n") {
		return "", "", ErrLineMissingColon
	}
	return string(rawName), string(bytes.TrimSpace(rawValue)), nil
}

// isValidHeaderNameChar implements the RFC 7230 §3.2.6 "token" char
// class used for header field names.
func isValidHeaderNameChar(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	}
	switch b {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}
