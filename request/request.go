// Package request implements the HTTP/1.1 request entity: an
// incremental state machine that parses a request line, its headers,
// and (when present) its body from successive byte fragments, plus a
// one-shot Generate for producing the wire form of a populated
// Request. It exposes a push/pull Parse(data) -> (consumed, status,
// err) contract rather than a buffered, blocking reader.
package request

import (
	"bytes"
	"strconv"
	"unicode/utf8"

	"github.com/brownie44l1/http1parse/internal/headers"
	"github.com/brownie44l1/http1parse/internal/herr"
	"github.com/brownie44l1/http1parse/internal/uri"
)

// ParseStatus is the two-valued result of a Parse call.
type ParseStatus int

const (
	Incomplete ParseStatus = iota
	Complete
)

type state int

const (
	stateRequestLine state = iota
	stateHeaders
	stateBody
)

type internalStatus int

const (
	completePart internalStatus = iota
	completeWhole
	incomplete
)

var crlf = []byte("\r\n")

func intPtr(v int) *int { return &v }

// Request holds the parsed (or to-be-generated) state of a single
// HTTP/1.1 request message.
type Request struct {
	// Method is the request method token (RFC 7231 §4), e.g. "GET".
	Method string

	// Target is the request-target from the request line.
	Target uri.Uri

	// Headers holds the request's header fields.
	Headers *headers.Headers

	// Body holds the bytes of the request body, if any.
	Body []byte

	// RequestLineLimit, if non-nil, caps the number of bytes Parse will
	// accept for the request line before failing with
	// herr.RequestLineTooLong.
	RequestLineLimit *int

	// MaxMessageSize, if non-nil, caps the total number of bytes Parse
	// will accept across the whole message before failing with
	// herr.MessageTooLong.
	MaxMessageSize *int

	state            state
	bodyContentLength int
	totalBytes       int
}

// New returns a Request with default limits (request_line_limit =
// 1000, max_message_size = 10,000,000, header line limit = 1000) and
// an empty target, matching original_source's Request::new.
func New() *Request {
	h := headers.New()
	h.SetLineLimit(intPtr(1000))
	return &Request{
		Method:           "GET",
		Headers:          h,
		RequestLineLimit: intPtr(1000),
		MaxMessageSize:   intPtr(10_000_000),
		state:            stateRequestLine,
	}
}

func (r *Request) countBytes(n int) error {
	r.totalBytes += n
	if r.MaxMessageSize != nil && r.totalBytes > *r.MaxMessageSize {
		return herr.New(herr.MessageTooLong)
	}
	return nil
}

// Parse feeds more bytes into the request parser. It may be called
// repeatedly with successive fragments; each call returns how many of
// the given bytes were consumed. On Incomplete, the caller must
// re-present data[consumed:] plus any new bytes on the next call.
func (r *Request) Parse(data []byte) (consumed int, status ParseStatus, err error) {
	for {
		remainder := data[consumed:]
		var step internalStatus
		var stepConsumed int

		switch r.state {
		case stateBody:
			step, stepConsumed = r.parseBody(remainder)
		case stateHeaders:
			step, stepConsumed, err = r.parseHeaders(remainder)
		case stateRequestLine:
			step, stepConsumed, err = r.parseRequestLineState(remainder)
		}
		if err != nil {
			return consumed, Incomplete, err
		}
		consumed += stepConsumed

		switch step {
		case completePart:
			continue
		case completeWhole:
			return consumed, Complete, nil
		default:
			return consumed, Incomplete, nil
		}
	}
}

func (r *Request) parseBody(data []byte) (internalStatus, int) {
	needed := r.bodyContentLength - len(r.Body)
	if len(data) >= needed {
		r.Body = append(r.Body, data[:needed]...)
		return completeWhole, needed
	}
	r.Body = append(r.Body, data...)
	return incomplete, len(data)
}

func (r *Request) parseHeaders(data []byte) (internalStatus, int, error) {
	consumed, status, err := r.Headers.Parse(data)
	if err != nil {
		return incomplete, consumed, herr.WithInner(herr.Headers, err)
	}
	if countErr := r.countBytes(consumed); countErr != nil {
		return incomplete, consumed, countErr
	}
	if status != headers.Complete {
		return incomplete, consumed, nil
	}

	contentLengthText, ok := r.Headers.HeaderValue("Content-Length")
	if !ok {
		return completeWhole, consumed, nil
	}
	contentLength, perr := strconv.ParseUint(contentLengthText, 10, 63)
	if perr != nil {
		return incomplete, consumed, herr.WithInner(herr.InvalidContentLength, perr)
	}
	if countErr := r.countBytes(int(contentLength)); countErr != nil {
		return incomplete, consumed, countErr
	}
	r.bodyContentLength = int(contentLength)
	r.state = stateBody
	return completePart, consumed, nil
}

func (r *Request) parseRequestLineState(data []byte) (internalStatus, int, error) {
	idx := bytes.Index(data, crlf)
	if idx == -1 {
		if r.RequestLineLimit != nil && len(data) > *r.RequestLineLimit {
			return incomplete, 0, herr.WithBytes(herr.RequestLineTooLong, data[:*r.RequestLineLimit])
		}
		return incomplete, 0, nil
	}
	if r.RequestLineLimit != nil && idx > *r.RequestLineLimit {
		return incomplete, 0, herr.WithBytes(herr.RequestLineTooLong, data[:*r.RequestLineLimit])
	}

	rawLine := data[:idx]
	if !utf8.Valid(rawLine) {
		return incomplete, 0, herr.WithBytes(herr.RequestLineNotValidText, rawLine)
	}
	consumed := idx + len(crlf)
	if err := r.countBytes(consumed); err != nil {
		return incomplete, 0, err
	}
	r.state = stateHeaders

	method, target, err := parseRequestLine(string(rawLine))
	if err != nil {
		return incomplete, 0, err
	}
	r.Method = method
	r.Target = target
	return completePart, consumed, nil
}

// Generate produces the wire form of r: the request line, headers,
// and body in order.
func (r *Request) Generate() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(r.Method)
	buf.WriteByte(' ')
	buf.WriteString(r.Target.String())
	buf.WriteString(" HTTP/1.1\r\n")

	headerBytes, err := r.Headers.Generate()
	if err != nil {
		return nil, herr.WithInner(herr.Headers, err)
	}
	buf.Write(headerBytes)
	buf.Write(r.Body)
	return buf.Bytes(), nil
}
