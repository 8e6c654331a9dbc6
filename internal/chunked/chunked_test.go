package chunked

import (
	"testing"

	"github.com/brownie44l1/http1parse/internal/herr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSimpleEmptyBodyOnePiece(t *testing.T) {
	input := "0\r\n\r\n"
	body := New()
	status, consumed, err := body.Decode([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, Complete, status)
	assert.Equal(t, len(input), consumed)
	assert.Equal(t, []byte{}, body.Buffer)
}

func TestDecodeEmptyBodyMultipleZeroes(t *testing.T) {
	input := "00000\r\n\r\n"
	body := New()
	status, consumed, err := body.Decode([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, Complete, status)
	assert.Equal(t, len(input), consumed)
}

func TestDecodeEmptyBodyWithChunkExtensions(t *testing.T) {
	cases := []string{
		"000;dude\r\n\r\n",
		"000;Kappa=PogChamp\r\n\r\n",
		"000;Kappa=\"Hello, World!\"\r\n\r\n",
		"000;Foo=Bar;Kappa=\"Hello, World!\";Spam=12345!\r\n\r\n",
	}
	for _, input := range cases {
		body := New()
		status, consumed, err := body.Decode([]byte(input))
		require.NoError(t, err)
		assert.Equal(t, Complete, status)
		assert.Equal(t, len(input), consumed)
	}
}

func TestDecodeSimpleEmptyBodyOneByteAtATime(t *testing.T) {
	input := []byte("0\r\n\r\n")
	body := New()
	var accepted int
	for i := 0; i < len(input); i++ {
		status, consumed, err := body.Decode(input[accepted : i+1])
		require.NoError(t, err)
		accepted += consumed
		if i < 4 {
			assert.Equal(t, Incomplete, status)
		} else {
			assert.Equal(t, Complete, status)
		}
	}
	assert.Equal(t, len(input), accepted)
	assert.Equal(t, []byte{}, body.Buffer)
}

func TestDecodeSimpleEmptyBodyWithExtraStuffAfter(t *testing.T) {
	input := "0\r\n\r\nHello!"
	body := New()
	status, consumed, err := body.Decode([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, Complete, status)
	assert.Equal(t, 5, consumed)
}

func TestDecodeSimpleNonEmptyBodyOnePiece(t *testing.T) {
	input := "5\r\nHello\r\n0\r\n\r\n"
	body := New()
	status, consumed, err := body.Decode([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, Complete, status)
	assert.Equal(t, len(input), consumed)
	assert.Equal(t, []byte("Hello"), body.Buffer)
}

func TestDecodeSimpleNonEmptyBodyByteAtATime(t *testing.T) {
	input := []byte("5\r\nHello\r\n0\r\n\r\n")
	body := New()
	var accepted int
	for i := 0; i < len(input); i++ {
		status, consumed, err := body.Decode(input[accepted : i+1])
		require.NoError(t, err)
		accepted += consumed
		if i < len(input)-1 {
			assert.Equal(t, Incomplete, status, "byte %d", i)
		} else {
			assert.Equal(t, Complete, status, "byte %d", i)
		}
	}
	assert.Equal(t, len(input), accepted)
	assert.Equal(t, []byte("Hello"), body.Buffer)
}

func TestDecodeTwoChunkBodyOnePiece(t *testing.T) {
	input := "6\r\nHello,\r\n7\r\n World!\r\n0\r\n\r\n"
	body := New()
	status, consumed, err := body.Decode([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, Complete, status)
	assert.Equal(t, len(input), consumed)
	assert.Equal(t, []byte("Hello, World!"), body.Buffer)
}

func TestDecodeTrailersOnePiece(t *testing.T) {
	input := "0\r\nX-Foo: Bar\r\nX-Poggers: FeelsBadMan\r\n\r\n"
	body := New()
	status, consumed, err := body.Decode([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, Complete, status)
	assert.Equal(t, len(input), consumed)
	assert.Equal(t, []byte{}, body.Buffer)

	val, ok := body.Trailer.HeaderValue("X-Foo")
	require.True(t, ok)
	assert.Equal(t, "Bar", val)
	val, ok = body.Trailer.HeaderValue("X-Poggers")
	require.True(t, ok)
	assert.Equal(t, "FeelsBadMan", val)
}

func TestDecodeBadChunkSizeNotHexDigit(t *testing.T) {
	input := "0g\r\n\r\n"
	body := New()
	_, _, err := body.Decode([]byte(input))
	require.Error(t, err)
	assert.True(t, herr.Is(err, herr.InvalidChunkSize))
}

func TestDecodeBadChunkSizeOverflow(t *testing.T) {
	input := "111111111111111111111111111111111111111111111111111111111111111\r\n\r\n"
	body := New()
	_, _, err := body.Decode([]byte(input))
	require.Error(t, err)
	assert.True(t, herr.Is(err, herr.InvalidChunkSize))
}

func TestDecodeBadJunkAfterChunk(t *testing.T) {
	input := "1\r\nXjunk\r\n"
	body := New()
	_, _, err := body.Decode([]byte(input))
	require.Error(t, err)
	assert.True(t, herr.Is(err, herr.InvalidChunkTerminator))
	var herrErr *herr.Error
	require.ErrorAs(t, err, &herrErr)
	assert.Equal(t, []byte("junk\r\n"), herrErr.Offending)
}

func TestDecodeBadTrailer(t *testing.T) {
	input := "0\r\nX-Foo Bar\r\n\r\n"
	body := New()
	_, _, err := body.Decode([]byte(input))
	require.Error(t, err)
	assert.True(t, herr.Is(err, herr.Trailer))
}
