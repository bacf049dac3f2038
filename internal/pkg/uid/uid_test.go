package uid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflake_Generate(t *testing.T) {
	g, err := NewSnowflake(1)
	require.NoError(t, err)

	seen := make(map[int64]struct{})
	prev := int64(0)
	for range 1000 {
		id := g.Generate()
		assert.Positive(t, id)
		assert.Greater(t, id, prev)
		_, dup := seen[id]
		assert.False(t, dup)
		seen[id] = struct{}{}
		prev = id
	}
}

func TestNewSnowflake_InvalidNode(t *testing.T) {
	_, err := NewSnowflake(5000)
	assert.Error(t, err)
}

func TestUUID_Generate(t *testing.T) {
	g := NewUUID()

	id, err := uuid.Parse(g.Generate())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.NotEqual(t, g.Generate(), g.Generate())
}
