// Package chunked implements the chunked transfer-coding decoder: a
// sub-state-machine that turns a stream of
// "SIZE\r\nDATA\r\n...0\r\n[trailer]\r\n" chunks into a flat body plus a
// trailer header block. It carries no size cap of its own, and the
// response state machine that embeds it enforces no message-size
// limit either.
package chunked

import (
	"bytes"
	"strconv"
	"unicode/utf8"

	"github.com/brownie44l1/http1parse/internal/headers"
	"github.com/brownie44l1/http1parse/internal/herr"
)

// Status is the two-valued result Decode reports once an input call
// either completes the body or runs out of whole tokens to consume.
type Status int

const (
	Incomplete Status = iota
	Complete
)

type state int

const (
	stateChunkSize state = iota
	stateChunkData
	stateChunkTerminator
	stateTrailer
)

// internalStatus distinguishes "this sub-step committed, keep looping"
// from the two outer-visible Status values, mirroring the Rust
// decoder's three-way internal enum.
type internalStatus int

const (
	completePart internalStatus = iota
	completeWhole
	incomplete
)

var crlf = []byte("\r\n")

// Body is the chunked-body decoder. Buffer accumulates decoded chunk
// data; Trailer accumulates any trailer headers present after the
// final zero-length chunk. Both are populated progressively as Decode
// is called and should be read only after Decode reports Complete.
type Body struct {
	Buffer  []byte
	Trailer *headers.Headers

	state            state
	chunkBytesNeeded int
}

// New returns a fresh chunked-body decoder positioned at the start of
// the first chunk-size line.
func New() *Body {
	return &Body{
		Buffer:  []byte{},
		Trailer: headers.New(),
		state:   stateChunkSize,
	}
}

// Decode consumes as much of input as forms whole chunk-size lines,
// chunk data, chunk terminators, or trailer lines, appending decoded
// body bytes to Buffer and trailer headers to Trailer as it goes.
// consumed is always <= len(input); on Incomplete with a nil error the
// caller should append more bytes after input[consumed:] and call
// Decode again.
func (b *Body) Decode(input []byte) (status Status, consumed int, err error) {
	for {
		remainder := input[consumed:]
		var step internalStatus
		var stepConsumed int

		switch b.state {
		case stateChunkData:
			step, stepConsumed = b.decodeData(remainder)
		case stateChunkSize:
			step, stepConsumed, err = b.decodeSize(remainder)
		case stateChunkTerminator:
			step, stepConsumed, err = b.decodeTerminator(remainder)
		case stateTrailer:
			step, stepConsumed, err = b.decodeTrailer(remainder)
		}
		if err != nil {
			return Incomplete, consumed, err
		}
		consumed += stepConsumed

		switch step {
		case completePart:
			continue
		case completeWhole:
			return Complete, consumed, nil
		default:
			return Incomplete, consumed, nil
		}
	}
}

func (b *Body) decodeData(input []byte) (internalStatus, int) {
	n := len(input)
	if n > b.chunkBytesNeeded {
		n = b.chunkBytesNeeded
	}
	b.chunkBytesNeeded -= n
	b.Buffer = append(b.Buffer, input[:n]...)
	if b.chunkBytesNeeded == 0 {
		b.state = stateChunkTerminator
		return completePart, n
	}
	return incomplete, n
}

func (b *Body) decodeSize(input []byte) (internalStatus, int, error) {
	idx := bytes.Index(input, crlf)
	if idx == -1 {
		return incomplete, 0, nil
	}
	line := input[:idx]
	size, err := parseChunkSize(line)
	if err != nil {
		return incomplete, 0, err
	}
	b.chunkBytesNeeded = size
	if size == 0 {
		b.state = stateTrailer
	} else {
		b.state = stateChunkData
	}
	return completePart, idx + 2, nil
}

func (b *Body) decodeTerminator(input []byte) (internalStatus, int, error) {
	switch {
	case len(input) == 0, len(input) == 1 && input[0] == '\r':
		return incomplete, 0, nil
	case len(input) >= 2 && input[0] == '\r' && input[1] == '\n':
		b.state = stateChunkSize
		return completePart, 2, nil
	default:
		return incomplete, 0, herr.WithBytes(herr.InvalidChunkTerminator, input)
	}
}

func (b *Body) decodeTrailer(input []byte) (internalStatus, int, error) {
	consumed, status, err := b.Trailer.Parse(input)
	if err != nil {
		return incomplete, consumed, herr.WithInner(herr.Trailer, err)
	}
	if status == headers.Complete {
		return completeWhole, consumed, nil
	}
	return incomplete, consumed, nil
}

// parseChunkSize parses a chunk-size line up to (but not including)
// its terminating CRLF. Chunk extensions (anything from the first ';'
// onward) are tolerated and ignored without syntax validation, per
// original_source's parse_chunk_size. ChunkSizeLineNotValidText is
// reserved for a UTF-8 decode failure of the raw line; any other
// rejection of the size text (non-hex digits, overflow) is
// InvalidChunkSize.
func parseChunkSize(line []byte) (int, error) {
	if !utf8.Valid(line) {
		return 0, herr.WithBytes(herr.ChunkSizeLineNotValidText, line)
	}
	delim := bytes.IndexAny(line, ";\r")
	sizeText := line
	if delim != -1 {
		sizeText = line[:delim]
	}
	text := string(bytes.TrimSpace(sizeText))
	size, err := strconv.ParseUint(text, 16, 63)
	if err != nil {
		return 0, herr.WithBytes(herr.InvalidChunkSize, line)
	}
	return int(size), nil
}
