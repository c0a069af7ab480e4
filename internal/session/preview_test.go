package session

import (
	"context"
	"testing"

	"github.com/calumari/jform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Preview(t *testing.T) {
	ctx := context.Background()

	t.Run("shows the current object", func(t *testing.T) {
		s, _ := newSession(t, `[{"a":1},{"b":2}]`)
		assert.Equal(t, "{\n  \"a\": 1\n}", s.PreviewText())
		s.Navigate(ctx, 1)
		assert.Equal(t, "{\n  \"b\": 2\n}", s.PreviewText())
	})

	t.Run("only the latest edit commits", func(t *testing.T) {
		s, _ := newSession(t, `[{"a":1}]`)
		first, err := s.EditPreview(`{"a":2}`)
		require.NoError(t, err)
		second, err := s.EditPreview(`{"a":3}`)
		require.NoError(t, err)

		changed, err := s.CommitPreview(ctx, first)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, `{"a":3}`, s.PreviewText())

		changed, err = s.CommitPreview(ctx, second)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, `{"a":3}`, jform.Compact(s.Current()))
		pending, _ := s.PreviewPending()
		assert.False(t, pending)
		assert.True(t, s.Dirty())

		changed, err = s.CommitPreview(ctx, second)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("invalid text is flagged and never committed", func(t *testing.T) {
		s, _ := newSession(t, `[{"a":1}]`)
		gen, err := s.EditPreview(`{"a":`)
		require.ErrorIs(t, err, jform.ErrSyntax)
		pending, perr := s.PreviewPending()
		assert.True(t, pending)
		assert.Error(t, perr)

		changed, err := s.CommitPreview(ctx, gen)
		require.Error(t, err)
		assert.False(t, changed)

		gen, err = s.EditPreview(`[1, 2]`)
		require.ErrorIs(t, err, jform.ErrNotObject)
		_, err = s.CommitPreview(ctx, gen)
		require.Error(t, err)
		assert.Equal(t, `{"a":1}`, jform.Compact(s.Current()))
		assert.False(t, s.Dirty())
	})

	t.Run("navigation drops the pending edit", func(t *testing.T) {
		s, _ := newSession(t, `[{"a":1},{"b":2}]`)
		gen, err := s.EditPreview(`{"z":0}`)
		require.NoError(t, err)
		s.Navigate(ctx, 1)

		changed, err := s.CommitPreview(ctx, gen)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, `{"b":2}`, jform.Compact(s.Current()))

		next, _ := s.EditPreview(`{"b":5}`)
		assert.Greater(t, next, gen)
		s.DiscardPreview()
		assert.Equal(t, "{\n  \"b\": 2\n}", s.PreviewText())
	})
}
