package request

import (
	"strings"

	"github.com/brownie44l1/http1parse/internal/herr"
	"github.com/brownie44l1/http1parse/internal/uri"
)

// parseRequestLine parses the already-delimited request-line text
// (no trailing CRLF) into its method and target, per RFC 7230 §3.1.1:
// METHOD SP request-target SP "HTTP/1.1". Grounded line-by-line on
// original_source's parse_request_line.
func parseRequestLine(line string) (method string, target uri.Uri, err error) {
	methodDelim := strings.IndexByte(line, ' ')
	if methodDelim == -1 {
		return "", uri.Uri{}, herr.WithText(herr.RequestLineNoMethodDelimiter, line)
	}
	method = line[:methodDelim]
	if method == "" {
		return "", uri.Uri{}, herr.WithText(herr.RequestLineNoMethodOrExtraWhitespace, line)
	}

	rest := line[methodDelim+1:]
	targetDelim := strings.IndexByte(rest, ' ')
	if targetDelim == -1 {
		return "", uri.Uri{}, herr.WithText(herr.RequestLineNoTargetDelimiter, line)
	}
	if targetDelim == 0 {
		return "", uri.Uri{}, herr.WithText(herr.RequestLineNoTargetOrExtraWhitespace, line)
	}
	target, err = uri.Parse(rest[:targetDelim])
	if err != nil {
		return "", uri.Uri{}, err
	}

	protocol := rest[targetDelim+1:]
	if protocol != "HTTP/1.1" {
		return "", uri.Uri{}, herr.WithText(herr.RequestLineProtocol, line)
	}
	return method, target, nil
}
