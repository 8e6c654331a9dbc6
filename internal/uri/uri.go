// Package uri is the minimal URI collaborator the request line's
// target needs: parse request-target text into a structured value and
// render it back losslessly enough for round-tripping. No third-party
// URI-parsing library covers this, so it wraps the standard library's
// net/url — see DESIGN.md for that justification.
package uri

import (
	"net/url"

	"github.com/brownie44l1/http1parse/internal/herr"
)

// Uri is the target of a request line: origin-form ("/foo?bar"),
// absolute-form, authority-form, or asterisk-form ("*"). The zero
// value is the empty target a freshly constructed Request starts with.
type Uri struct {
	raw    string
	parsed *url.URL
}

// Parse parses text (already percent-encoded, as it appears on the
// wire) into a Uri. Any net/url rejection is surfaced as
// herr.RequestTargetURIInvalid carrying the offending text.
func Parse(text string) (Uri, error) {
	if text == "*" {
		return Uri{raw: text}, nil
	}
	parsed, err := url.Parse(text)
	if err != nil {
		return Uri{}, herr.WithText(herr.RequestTargetURIInvalid, text)
	}
	return Uri{raw: text, parsed: parsed}, nil
}

// String renders the Uri back to wire form. For a successfully parsed
// URL this re-serializes it; for the zero value (or "*") it returns
// the original raw text, since that's exactly what was given to Parse.
func (u Uri) String() string {
	if u.parsed == nil {
		return u.raw
	}
	return u.parsed.String()
}

// IsZero reports whether u is the default, unparsed target a new
// Request/Response starts with.
func (u Uri) IsZero() bool {
	return u.raw == "" && u.parsed == nil
}

// Path returns the decoded path component, or "" if u has none.
func (u Uri) Path() string {
	if u.parsed == nil {
		return ""
	}
	return u.parsed.Path
}

// Query returns the raw (still-encoded) query component, or "" if u
// has none.
func (u Uri) Query() string {
	if u.parsed == nil {
		return ""
	}
	return u.parsed.RawQuery
}
