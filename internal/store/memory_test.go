package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type thing struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
}

func (t *thing) EntityID() string      { return t.ID }
func (t *thing) SetEntityID(id string) { t.ID = id }

func TestMemoryPutGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	e := &thing{Owner: "alice"}
	id, err := m.Put(ctx, "thing", e)
	require.NoError(t, err)
	assert.NotEmpty(t, id, "put assigns an id to fresh entities")
	assert.Equal(t, id, e.ID)

	got, err := GetAs[thing](ctx, m, "thing", id)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Owner)

	require.NoError(t, m.Delete(ctx, "thing", id))
	_, err = m.Get(ctx, "thing", id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryPutKeepsExplicitKey(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	e := &thing{ID: "auth0|alice", Owner: "alice"}
	id, err := m.Put(ctx, "user", e)
	require.NoError(t, err)
	assert.Equal(t, "auth0|alice", id)
}

func TestMemoryListFilterAndWindow(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for i := 0; i < 4; i++ {
		owner := "alice"
		if i == 3 {
			owner = "bob"
		}
		_, err := m.Put(ctx, "thing", &thing{Owner: owner})
		require.NoError(t, err)
	}

	all, more, err := ListAs[thing](ctx, m, "thing", nil, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.False(t, more)

	mine, _, err := ListAs[thing](ctx, m, "thing", &Filter{Field: "owner", Value: "alice"}, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	page, more, err := ListAs[thing](ctx, m, "thing", &Filter{Field: "owner", Value: "alice"}, ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.True(t, more, "a third match remains past the window")

	rest, more, err := ListAs[thing](ctx, m, "thing", &Filter{Field: "owner", Value: "alice"}, ListOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest, 1)
	assert.False(t, more)

	empty, more, err := ListAs[thing](ctx, m, "thing", nil, ListOptions{Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.False(t, more)
}
