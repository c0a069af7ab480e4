package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(":memory:", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_KV(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	_, ok, err := s.Get(ctx, "theme")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "theme", "dark"))
	require.NoError(t, s.Put(ctx, "theme", "light"))

	v, ok, err := s.Get(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "light", v)
}

func TestStore_State(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing mirrored", func(t *testing.T) {
		s := openTest(t)
		_, ok, err := s.LoadState(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("round trip", func(t *testing.T) {
		s := openTest(t)
		want := State{
			Document:   []byte(`[{"a":1}]`),
			Index:      3,
			Mode:       "table",
			File:       "/tmp/data.json",
			SortColumn: "meta.id",
			SortDesc:   true,
		}
		require.NoError(t, s.SaveState(ctx, want))

		got, ok, err := s.LoadState(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, got)

		want.Index = 0
		want.SortDesc = false
		require.NoError(t, s.SaveState(ctx, want))
		got, _, err = s.LoadState(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("persists on disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "jform.db")
		s, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, s.SaveState(ctx, State{Document: []byte(`[{}]`), Mode: "form"}))
		require.NoError(t, s.Close())

		s, err = Open(path)
		require.NoError(t, err)
		defer s.Close()
		got, ok, err := s.LoadState(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "form", got.Mode)
		assert.Equal(t, path, s.Path())
	})

	t.Run("cancelled context", func(t *testing.T) {
		s := openTest(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		require.Error(t, s.SaveState(cctx, State{Document: []byte(`[{}]`)}))
	})
}

func TestStore_Snapshots(t *testing.T) {
	ctx := context.Background()
	s := openTest(t, WithHistoryLimit(2))

	clock := time.Unix(1700000000, 0)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	first, err := s.AddSnapshot(ctx, "a.json", "save", []byte(`[{"v":1}]`))
	require.NoError(t, err)
	second, err := s.AddSnapshot(ctx, "a.json", "save", []byte(`[{"v":2}]`))
	require.NoError(t, err)
	third, err := s.AddSnapshot(ctx, "b.json", "load", []byte(`[{"v":3}]`))
	require.NoError(t, err)

	list, err := s.Snapshots(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, third, list[0].ID)
	assert.Equal(t, second, list[1].ID)
	assert.Equal(t, "load", list[0].Reason)
	assert.Nil(t, list[0].Document)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))

	snap, err := s.Snapshot(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, `[{"v":2}]`, string(snap.Document))
	assert.Equal(t, "a.json", snap.File)

	_, err = s.Snapshot(ctx, first)
	require.ErrorIs(t, err, ErrNoSnapshot)
	_, err = s.Snapshot(ctx, uuid.New())
	require.ErrorIs(t, err, ErrNoSnapshot)
}
