// Package coding implements message-body coding helpers: reversing
// Content-Encoding (content coding) and interpreting a body as text
// per Content-Type's charset (text coding). Request and response
// parsing never touch body encoding directly; these are boundary
// functions layered on top, using klauspost/compress and
// andybalholm/brotli for content coding and golang.org/x/text for the
// charset catalogue.
package coding

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/brownie44l1/http1parse/internal/headers"
	"github.com/brownie44l1/http1parse/internal/herr"
)

// DecodeBody reverses any content coding applied to body, as recorded
// in the Content-Encoding header, one token at a time starting from
// the last (codings are listed in the order they were applied, so
// undoing them runs in reverse). Decoding stops at the first
// unrecognized token, leaving it (and anything before it) in
// Content-Encoding; recognized tokens already undone are dropped from
// the header, and Content-Length is rewritten to match the returned
// body's length. Grounded on coding.rs's decode_body.
func DecodeBody(h *headers.Headers, body []byte) ([]byte, error) {
	codings := h.HeaderTokens("Content-Encoding")
	decoded := append([]byte(nil), body...)

	for len(codings) > 0 {
		last := codings[len(codings)-1]
		var next []byte
		var err error
		recognized := true
		switch strings.ToLower(last) {
		case "gzip":
			next, err = gzipDecode(decoded)
		case "deflate":
			next, err = deflateDecode(decoded)
		case "br":
			next, err = brotliDecode(decoded)
		default:
			recognized = false
		}
		if !recognized {
			break
		}
		if err != nil {
			return nil, herr.WithInner(herr.BadContentEncoding, err)
		}
		decoded = next
		codings = codings[:len(codings)-1]
	}

	if len(codings) == 0 {
		h.RemoveHeader("Content-Encoding")
	} else {
		h.SetHeader("Content-Encoding", strings.Join(codings, ", "))
	}
	h.SetHeader("Content-Length", strconv.Itoa(len(decoded)))
	return decoded, nil
}

func gzipDecode(body []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func deflateDecode(body []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(body))
	defer r.Close()
	return io.ReadAll(r)
}

func brotliDecode(body []byte) ([]byte, error) {
	return io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
}

// DecodeBodyAsText attempts to interpret body as text, per
// Content-Type: the top-level type must be "text", and its charset
// parameter (iso-8859-1 is assumed if absent) must name an encoding
// golang.org/x/text/encoding/ianaindex recognizes. ok is false if
// Content-Type is missing, not text/*, names an unrecognized charset,
// or the bytes don't decode cleanly under that charset. Grounded on
// coding.rs's decode_body_as_text.
func DecodeBodyAsText(h *headers.Headers, body []byte) (text string, ok bool) {
	contentType, present := h.HeaderValue("Content-Type")
	if !present {
		return "", false
	}

	typeSubtype, params := contentType, ""
	if idx := strings.IndexByte(contentType, ';'); idx != -1 {
		typeSubtype, params = contentType[:idx], contentType[idx+1:]
	}
	topLevel, _, found := cut(typeSubtype, '/')
	if !found || !strings.EqualFold(strings.TrimSpace(topLevel), "text") {
		return "", false
	}

	charset := "iso-8859-1"
	for _, param := range strings.Split(params, ";") {
		name, value, found := cut(strings.TrimSpace(param), '=')
		if found && strings.EqualFold(strings.TrimSpace(name), "charset") {
			charset = strings.TrimSpace(value)
			break
		}
	}

	if strings.EqualFold(charset, "utf-8") || strings.EqualFold(charset, "utf8") {
		if !utf8.Valid(body) {
			return "", false
		}
		return string(body), true
	}

	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return "", false
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}

func cut(s string, sep byte) (before, after string, found bool) {
	idx := strings.IndexByte(s, sep)
	if idx == -1 {
		return s, "", false
	}
	return s[:idx], s[idx+1:], true
}
