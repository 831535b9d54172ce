package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestReadAbsentKeyIsEmpty(t *testing.T) {
	s := New(NewMemory(), nil)
	got, err := Read[item](context.Background(), s, IdeasKey)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReadMalformedFailsSoft(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	mem := NewMemory()
	s := New(mem, zap.New(core))

	for _, raw := range []string{`{not json`, `{"id":"x"}`, `null`, `   `} {
		require.NoError(t, mem.Put(ctx, string(EventsKey), []byte(raw)))
		got, err := Read[item](ctx, s, EventsKey)
		require.NoError(t, err, raw)
		assert.Equal(t, []item{}, got, raw)
	}
	assert.GreaterOrEqual(t, logs.FilterMessage("discarding malformed stored list").Len(), 2)
}

func TestWriteThenRead(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemory(), nil)
	require.NoError(t, Write(ctx, s, UsersKey, []item{{ID: "1", Name: "a"}}))
	got, err := Read[item](ctx, s, UsersKey)
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "1", Name: "a"}}, got)

	require.NoError(t, Write[item](ctx, s, UsersKey, nil))
	raw, _, err := s.Backend().Get(ctx, string(UsersKey))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestUpdateTyped(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemory(), nil)

	err := Update(ctx, s, IdeasKey, func(cur []item) ([]item, error) {
		assert.Empty(t, cur)
		return append(cur, item{ID: "1"}), nil
	})
	require.NoError(t, err)

	err = Update(ctx, s, IdeasKey, func(cur []item) ([]item, error) {
		return nil, ErrSkipWrite
	})
	require.NoError(t, err)

	sentinel := errors.New("nope")
	err = Update(ctx, s, IdeasKey, func(cur []item) ([]item, error) {
		return nil, sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	got, err := Read[item](ctx, s, IdeasKey)
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "1"}}, got)
}

func TestUpdateRecoversFromCorruption(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	s := New(mem, nil)
	require.NoError(t, mem.Put(ctx, string(IdeasKey), []byte(`garbage`)))
	err := Update(ctx, s, IdeasKey, func(cur []item) ([]item, error) {
		assert.Empty(t, cur)
		return append(cur, item{ID: "n"}), nil
	})
	require.NoError(t, err)
	got, err := Read[item](ctx, s, IdeasKey)
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "n"}}, got)
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	s := New(mem, nil)
	ok, err := s.Exists(ctx, EventsKey)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, Write(ctx, s, EventsKey, []item{}))
	ok, err = s.Exists(ctx, EventsKey)
	require.NoError(t, err)
	assert.True(t, ok)
	mem.Delete(string(EventsKey))
	ok, err = s.Exists(ctx, EventsKey)
	require.NoError(t, err)
	assert.False(t, ok)
}
