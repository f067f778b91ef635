package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenValidator(t *testing.T) {
	v, err := NewTokenValidator("s3cret")
	require.NoError(t, err)

	token, err := v.GenerateToken("u-1", time.Hour)
	require.NoError(t, err)

	id, err := v.ExtractIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", id)

	other, err := NewTokenValidator("different")
	require.NoError(t, err)
	_, err = other.ExtractIDFromToken(token)
	assert.Error(t, err)

	expired, err := v.GenerateToken("u-1", -time.Minute)
	require.NoError(t, err)
	_, err = v.ExtractIDFromToken(expired)
	assert.Error(t, err)

	_, err = NewTokenValidator("")
	assert.Error(t, err)
}
