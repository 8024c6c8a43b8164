package sha256

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIsStable(t *testing.T) {
	t.Parallel()

	h := New()
	a, err := h.Hash([]byte("warn notice"))
	require.NoError(t, err)
	b, err := h.Hash([]byte("warn notice"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestHashDiffers(t *testing.T) {
	t.Parallel()

	h := New()
	a, err := h.Hash([]byte("a"))
	require.NoError(t, err)
	b, err := h.Hash([]byte("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
