package preprocess

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"aa bb", "cc", "dddddd", "e"}, chunkTokens([]string{"aa", "bb", "cc", "dddddd", "e"}, 5))
	assert.Nil(t, chunkTokens(nil, 5))
}

func TestRedactTokens_Retokenizes(t *testing.T) {
	t.Parallel()

	out, err := redactTokens(context.Background(), NewRegexRedactor(),
		[]string{"write", "to", "bob@example.com", "please"}, 8)
	require.NoError(t, err)
	assert.Equal(t, []string{"write", "to", "please"}, out)
}
