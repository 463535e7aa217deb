package resource

import (
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameRegistry(t *testing.T) {
	r := NewNameRegistry[mesh]()
	h := Handle[mesh]{Index: 3, Generation: 1}

	require.NoError(t, r.Register("crate", h))
	assert.ErrorIs(t, r.Register("crate", Handle[mesh]{}), ErrDuplicateName)

	got, err := r.Lookup("crate")
	require.NoError(t, err)
	assert.Equal(t, h, got)
	assert.Equal(t, 1, r.Len())

	assert.True(t, r.Forget("crate"))
	assert.False(t, r.Forget("crate"))
	_, err = r.Lookup("crate")
	assert.ErrorIs(t, err, ErrUnknownName)
	assert.Equal(t, 0, r.Len())
}

func TestNameRegistrySharedBucket(t *testing.T) {
	r := NewNameRegistry[mesh]()
	require.NoError(t, r.Register("left", Handle[mesh]{Index: 1}))

	// Plant a second name in the same bucket to stand in for a hash collision
	key := xxhash.Sum64String("left")
	r.buckets[key] = append(r.buckets[key], nameEntry[mesh]{name: "right", handle: Handle[mesh]{Index: 2}})
	r.count++

	got, err := r.Lookup("left")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), got.Index)

	assert.True(t, r.Forget("left"))
	assert.Len(t, r.buckets[key], 1)
	assert.Equal(t, "right", r.buckets[key][0].name)
	assert.Equal(t, 1, r.Len())

	r.Clear()
	assert.Equal(t, 0, r.Len())
	_, err = r.Lookup("left")
	assert.ErrorIs(t, err, ErrUnknownName)
}
