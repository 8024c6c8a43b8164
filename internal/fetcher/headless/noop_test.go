package headless

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopAlwaysErrors(t *testing.T) {
	t.Parallel()

	_, err := NewNoop().Fetch(context.Background(), "https://example.gov")
	assert.Error(t, err)
}
