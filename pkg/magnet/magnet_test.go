package magnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	hash, err := Hash("magnet:?xt=urn:btih:ABC123")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", hash)
}

func TestHashWithExtraParameters(t *testing.T) {
	hash, err := Hash("magnet:?xt=urn:btih:deadbeef&dn=Some.Movie.2023.1080p&tr=udp%3A%2F%2Ftracker.example%3A80")
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", hash)
}

func TestHashMissingXt(t *testing.T) {
	_, err := Hash("magnet:?dn=no-hash-here")
	assert.Error(t, err)
}

func TestHashInvalidURI(t *testing.T) {
	_, err := Hash("://not-a-uri")
	assert.Error(t, err)
}
