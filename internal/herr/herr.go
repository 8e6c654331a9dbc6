// Package herr is the closed error taxonomy shared by the headers,
// chunked, request, and response packages. It stands in for the
// "enum Error" of the grammar this module implements: every failure
// kind the parser or generator can produce is one Kind value, and the
// offending bytes or text are carried on the Error value itself so a
// caller can surface or log the bad input without re-deriving it.
package herr

import "fmt"

// Kind identifies one member of the closed error taxonomy. Callers
// that need to branch on the specific failure should compare
// Error.Kind rather than string-matching Error().
type Kind int

const (
	// Framing errors (request line / status line).
	RequestLineTooLong Kind = iota
	RequestLineNotValidText
	RequestLineNoMethodDelimiter
	RequestLineNoMethodOrExtraWhitespace
	RequestLineNoTargetDelimiter
	RequestLineNoTargetOrExtraWhitespace
	RequestLineProtocol
	RequestTargetURIInvalid

	StatusLineNotValidText
	StatusLineNoProtocolDelimiter
	StatusLineProtocol
	StatusLineNoStatusCodeDelimiter
	InvalidStatusCode
	StatusCodeOutOfRange

	// Header errors. Headers and Trailer wrap a *headers package*
	// error so callers can tell which stage failed; the wrapped error
	// is available via Unwrap/Inner.
	Headers
	Trailer

	// Body / framing-metadata errors.
	InvalidContentLength
	InvalidChunkSize
	ChunkSizeLineNotValidText
	InvalidChunkTerminator
	MessageTooLong

	// Generator-side.
	StringFormat

	// Body-coding errors (internal/coding).
	BadContentEncoding
)

var kindText = map[Kind]string{
	RequestLineTooLong:                   "request line too long",
	RequestLineNotValidText:              "request line is not valid text",
	RequestLineNoMethodDelimiter:         "unable to find method delimiter in request line",
	RequestLineNoMethodOrExtraWhitespace: "unable to parse method from request line",
	RequestLineNoTargetDelimiter:         "unable to find target URI delimiter in request line",
	RequestLineNoTargetOrExtraWhitespace: "unable to parse target URI from request line",
	RequestLineProtocol:                  "unrecognized protocol in request line",
	RequestTargetURIInvalid:              "invalid request target URI",

	StatusLineNotValidText:          "status line is not valid text",
	StatusLineNoProtocolDelimiter:   "unable to find protocol delimiter in status line",
	StatusLineProtocol:              "unrecognized protocol in status line",
	StatusLineNoStatusCodeDelimiter: "unable to parse status code from status line",
	InvalidStatusCode:               "invalid status code",
	StatusCodeOutOfRange:            "status code is out of range",

	Headers: "error in headers",
	Trailer: "error in trailer",

	InvalidContentLength:      "invalid Content-Length header value",
	InvalidChunkSize:          "invalid chunk size value",
	ChunkSizeLineNotValidText: "chunk size line is not valid text",
	InvalidChunkTerminator:    "unexpected extra junk at the end of a chunk",
	MessageTooLong:            "message exceeds maximum size limit",

	StringFormat: "error during string format",

	BadContentEncoding: "error decoding content-encoded body",
}

func (k Kind) String() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return "unknown error"
}

// Error is the single error type produced by every package in this
// module. Offending carries the raw bytes or text implicated in the
// failure (the request/status line that didn't parse, the chunk-size
// line that wasn't hex, etc.) where the originating spec calls for it;
// it is nil for variants that don't carry a payload (MessageTooLong,
// StringFormat).
type Error struct {
	Kind      Kind
	Offending []byte
	// Value is set for StatusCodeOutOfRange (the parsed numeric
	// status) so callers don't need to re-parse the status line to
	// get it.
	Value int
	// inner wraps the headers-package error for Headers/Trailer, the
	// strconv error for InvalidContentLength/InvalidStatusCode, or the
	// decompressor error for BadContentEncoding.
	inner error
}

func (e *Error) Error() string {
	switch {
	case e.inner != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.inner)
	case e.Offending != nil:
		return fmt.Sprintf("%s: %q", e.Kind, e.Offending)
	case e.Kind == InvalidStatusCode || e.Kind == StatusCodeOutOfRange:
		return fmt.Sprintf("%s: %d", e.Kind, e.Value)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.inner }

// New builds an Error with no payload.
func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

// WithBytes builds an Error carrying the offending raw bytes.
func WithBytes(kind Kind, offending []byte) *Error {
	cp := make([]byte, len(offending))
	copy(cp, offending)
	return &Error{Kind: kind, Offending: cp}
}

// WithText is WithBytes for the string-valued variants.
func WithText(kind Kind, offending string) *Error {
	return WithBytes(kind, []byte(offending))
}

// WithInner builds an Error wrapping a lower-level cause (a headers
// error for Headers/Trailer, a strconv.ParseUint error for
// InvalidContentLength/InvalidStatusCode).
func WithInner(kind Kind, inner error) *Error {
	return &Error{Kind: kind, inner: inner}
}

// WithValue builds an Error carrying a numeric payload (used for
// StatusCodeOutOfRange, which has only Value).
func WithValue(kind Kind, value int) *Error {
	return &Error{Kind: kind, Value: value}
}

// Is reports whether err is a *Error of the given kind, so callers can
// write herr.Is(err, herr.MessageTooLong) without a type assertion.
func Is(err error, kind Kind) bool {
	he, ok := err.(*Error)
	return ok && he.Kind == kind
}
