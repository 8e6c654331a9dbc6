package uri

import (
	"testing"

	"github.com/brownie44l1/http1parse/internal/herr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOriginForm(t *testing.T) {
	u, err := Parse("/hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "/hello.txt", u.String())
	assert.Equal(t, "/hello.txt", u.Path())
	assert.Equal(t, "", u.Query())
}

func TestParseOriginFormWithQuery(t *testing.T) {
	u, err := Parse("/search?q=gophers&page=2")
	require.NoError(t, err)
	assert.Equal(t, "/search", u.Path())
	assert.Equal(t, "q=gophers&page=2", u.Query())
}

func TestParseAsteriskForm(t *testing.T) {
	u, err := Parse("*")
	require.NoError(t, err)
	assert.Equal(t, "*", u.String())
	assert.Equal(t, "", u.Path())
	assert.False(t, u.IsZero())
}

func TestParseAbsoluteForm(t *testing.T) {
	u, err := Parse("http://example.com/foo")
	require.NoError(t, err)
	assert.Equal(t, "/foo", u.Path())
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("http://%zz")
	require.Error(t, err)
	assert.True(t, herr.Is(err, herr.RequestTargetURIInvalid))
}

func TestZeroValue(t *testing.T) {
	var u Uri
	assert.True(t, u.IsZero())
	assert.Equal(t, "", u.String())
	assert.Equal(t, "", u.Path())
	assert.Equal(t, "", u.Query())
}
