package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserIDIsMonotonic(t *testing.T) {
	require.NoError(t, Init(3))

	seen := make(map[int64]struct{})
	prev := int64(0)
	for i := 0; i < 1000; i++ {
		id := NewUserID()
		assert.Greater(t, id, prev)
		prev = id
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 1000)
}

func TestInitRejectsOutOfRangeNode(t *testing.T) {
	assert.Error(t, Init(5000))
}

func TestFormatParseRoundTrip(t *testing.T) {
	id := NewUserID()
	parsed, err := ParseID(FormatID(id))
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseID("abc")
	assert.Error(t, err)
}

func TestNewKSUID(t *testing.T) {
	a, b := NewKSUID(), NewKSUID()
	assert.Len(t, a, 27)
	assert.NotEqual(t, a, b)
}
