package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	token := EncodeToken(40)
	offset, err := DecodeToken(&token)
	require.NoError(t, err)
	assert.Equal(t, 40, offset)
}

func TestDecodeToken_Empty(t *testing.T) {
	offset, err := DecodeToken(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, offset)

	empty := ""
	offset, err = DecodeToken(&empty)
	require.NoError(t, err)
	assert.Equal(t, 0, offset)
}

func TestDecodeToken_Invalid(t *testing.T) {
	cases := []string{
		"not-base64!!!",
		"bm9wZQ==",     // "nope", wrong format
		"bzotNQ==",     // "o:-5", negative offset
		"bzphYmM=",     // "o:abc", non-numeric
	}
	for _, c := range cases {
		c := c
		_, err := DecodeToken(&c)
		assert.Error(t, err, "token %q should be rejected", c)
	}
}

func TestNextToken(t *testing.T) {
	assert.Nil(t, NextToken(0, 20, 7), "partial page has no next token")

	next := NextToken(20, 20, 20)
	require.NotNil(t, next)
	offset, err := DecodeToken(next)
	require.NoError(t, err)
	assert.Equal(t, 40, offset)
}
