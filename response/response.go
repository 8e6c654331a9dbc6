// Package response implements the HTTP/1.1 response entity: an
// incremental state machine that parses a status line, its headers,
// and a fixed-length or chunked body from successive byte fragments,
// plus a one-shot Generate for the wire form of a populated Response.
// Grounded line-by-line on original_source's response.rs.
package response

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/brownie44l1/http1parse/internal/chunked"
	"github.com/brownie44l1/http1parse/internal/headers"
	"github.com/brownie44l1/http1parse/internal/herr"
)

// ParseStatus is the two-valued result of a Parse call.
type ParseStatus int

const (
	Incomplete ParseStatus = iota
	Complete
)

type state int

const (
	stateStatusLine state = iota
	stateHeaders
	stateFixedBody
	stateChunkedBody
)

type internalStatus int

const (
	completePart internalStatus = iota
	completeWhole
	incomplete
)

var crlf = []byte("\r\n")

// Response holds the parsed (or to-be-generated) state of a single
// HTTP/1.1 response message.
type Response struct {
	// StatusCode is the numeric status code (RFC 7231 §6), any value
	// in [0, 999].
	StatusCode int

	// ReasonPhrase is the textual description accompanying StatusCode.
	// It may be any text, including empty, per original_source.
	ReasonPhrase string

	// Headers holds the response's header fields.
	Headers *headers.Headers

	// Body holds the bytes of the response body, if any.
	Body []byte

	state             state
	fixedContentLength int
	chunkedBody        *chunked.Body
}

// New returns a Response with default status code 200, reason phrase
// "OK", and no headers or body, matching original_source's
// Response::new. Unlike request.New, no size limits are set here —
// the response parser enforces none, per the Open Question decision
// recorded in DESIGN.md.
func New() *Response {
	return &Response{
		StatusCode:   200,
		ReasonPhrase: "OK",
		Headers:      headers.New(),
		state:        stateStatusLine,
	}
}

// Parse feeds more bytes into the response parser. It may be called
// repeatedly with successive fragments; each call returns how many of
// the given bytes were consumed. On Incomplete, the caller must
// re-present data[consumed:] plus any new bytes on the next call.
func (r *Response) Parse(data []byte) (consumed int, status ParseStatus, err error) {
	for {
		remainder := data[consumed:]
		var step internalStatus
		var stepConsumed int

		switch r.state {
		case stateChunkedBody:
			step, stepConsumed, err = r.parseChunkedBody(remainder)
		case stateFixedBody:
			step, stepConsumed = r.parseFixedBody(remainder)
		case stateHeaders:
			step, stepConsumed, err = r.parseHeaders(remainder)
		case stateStatusLine:
			step, stepConsumed, err = r.parseStatusLineState(remainder)
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

func (r *Response) parseFixedBody(data []byte) (internalStatus, int) {
	needed := r.fixedContentLength - len(r.Body)
	if len(data) >= needed {
		r.Body = append(r.Body, data[:needed]...)
		return completeWhole, needed
	}
	r.Body = append(r.Body, data...)
	return incomplete, len(data)
}

// parseChunkedBody drives the embedded chunked decoder and, once it
// completes, promotes its buffer and trailer into the response
// proper: the decoded bytes become Body, the trailer headers are
// appended to Headers, the final Transfer-Encoding token (by
// convention "chunked") is stripped (removing the header entirely if
// nothing remains),
// Trailer is removed, and Content-Length is set to the decoded body's
// length. Grounded on parse_message_for_chunked_body.
func (r *Response) parseChunkedBody(data []byte) (internalStatus, int, error) {
	status, consumed, err := r.chunkedBody.Decode(data)
	if err != nil {
		return incomplete, consumed, err
	}
	if status != chunked.Complete {
		return incomplete, consumed, nil
	}

	r.Body = r.chunkedBody.Buffer
	for _, h := range r.chunkedBody.Trailer.Entries() {
		r.Headers.AddHeader(h.Name, h.Value)
	}

	encodings := r.Headers.HeaderTokens("Transfer-Encoding")
	if len(encodings) > 0 {
		encodings = encodings[:len(encodings)-1]
	}
	if len(encodings) == 0 {
		r.Headers.RemoveHeader("Transfer-Encoding")
	} else {
		r.Headers.SetHeader("Transfer-Encoding", strings.Join(encodings, ", "))
	}
	r.Headers.AddHeader("Content-Length", strconv.Itoa(len(r.Body)))
	r.Headers.RemoveHeader("Trailer")

	r.chunkedBody = nil
	return completeWhole, consumed, nil
}

func (r *Response) parseHeaders(data []byte) (internalStatus, int, error) {
	consumed, status, err := r.Headers.Parse(data)
	if err != nil {
		return incomplete, consumed, herr.WithInner(herr.Headers, err)
	}
	if status != headers.Complete {
		return incomplete, consumed, nil
	}

	if contentLengthText, ok := r.Headers.HeaderValue("Content-Length"); ok {
		contentLength, perr := strconv.ParseUint(contentLengthText, 10, 63)
		if perr != nil {
			return incomplete, consumed, herr.WithInner(herr.InvalidContentLength, perr)
		}
		r.fixedContentLength = int(contentLength)
		r.state = stateFixedBody
		return completePart, consumed, nil
	}
	if r.Headers.HasHeaderToken("Transfer-Encoding", "chunked") {
		r.chunkedBody = chunked.New()
		r.state = stateChunkedBody
		return completePart, consumed, nil
	}
	return completeWhole, consumed, nil
}

func (r *Response) parseStatusLineState(data []byte) (internalStatus, int, error) {
	idx := bytes.Index(data, crlf)
	if idx == -1 {
		return incomplete, 0, nil
	}
	rawLine := data[:idx]
	if !utf8.Valid(rawLine) {
		return incomplete, 0, herr.WithBytes(herr.StatusLineNotValidText, rawLine)
	}
	consumed := idx + len(crlf)
	r.state = stateHeaders

	statusCode, reasonPhrase, err := parseStatusLine(string(rawLine))
	if err != nil {
		return incomplete, 0, err
	}
	r.StatusCode = statusCode
	r.ReasonPhrase = reasonPhrase
	return completePart, consumed, nil
}

// parseStatusLine parses "HTTP/1.1 STATUS_CODE REASON_PHRASE" (no
// trailing CRLF), grounded line-by-line on
// original_source's parse_status_line.
func parseStatusLine(line string) (statusCode int, reasonPhrase string, err error) {
	protoDelim := strings.IndexByte(line, ' ')
	if protoDelim == -1 {
		return 0, "", herr.WithText(herr.StatusLineNoProtocolDelimiter, line)
	}
	if line[:protoDelim] != "HTTP/1.1" {
		return 0, "", herr.WithText(herr.StatusLineProtocol, line)
	}

	rest := line[protoDelim+1:]
	codeDelim := strings.IndexByte(rest, ' ')
	if codeDelim == -1 {
		return 0, "", herr.WithText(herr.StatusLineNoStatusCodeDelimiter, line)
	}
	codeText := rest[:codeDelim]
	code64, perr := strconv.ParseUint(codeText, 10, 32)
	if perr != nil {
		return 0, "", herr.WithInner(herr.InvalidStatusCode, perr)
	}
	code := int(code64)
	if code >= 1000 {
		return 0, "", herr.WithValue(herr.StatusCodeOutOfRange, code)
	}
	return code, rest[codeDelim+1:], nil
}

// Generate produces the wire form of r: the status line, headers, and
// body in order. If ReasonPhrase is empty, the standard reason phrase
// for StatusCode is substituted (mirroring how a server derives its
// status line's text from the numeric code alone), falling back to the
// empty string for codes outside the well-known table.
func (r *Response) Generate() ([]byte, error) {
	reasonPhrase := r.ReasonPhrase
	if reasonPhrase == "" {
		reasonPhrase = StatusText(r.StatusCode)
	}

	var buf bytes.Buffer
	buf.WriteString("HTTP/1.1 ")
	buf.WriteString(strconv.Itoa(r.StatusCode))
	buf.WriteByte(' ')
	buf.WriteString(reasonPhrase)
	buf.WriteString("\r\n")

	headerBytes, err := r.Headers.Generate()
	if err != nil {
		return nil, herr.WithInner(herr.Headers, err)
	}
	buf.Write(headerBytes)
	buf.Write(r.Body)
	return buf.Bytes(), nil
}
