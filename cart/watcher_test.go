package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_SeesExternalSave(t *testing.T) {
	dir := t.TempDir()
	watching := NewStore(dir, nil)
	writer := NewStore(dir, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := watching.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, writer.Add(item("A", "100", 2)))

	select {
	case items := <-updates:
		require.Len(t, items, 1)
		assert.Equal(t, "A", items[0].Product)
	case <-time.After(5 * time.Second):
		t.Fatal("no update observed after external save")
	}
}

func TestWatch_SeesExternalClear(t *testing.T) {
	dir := t.TempDir()
	watching := NewStore(dir, nil)
	writer := NewStore(dir, nil)
	require.NoError(t, writer.Add(item("A", "100", 2)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := watching.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, writer.Clear())

	select {
	case items := <-updates:
		assert.Empty(t, items)
	case <-time.After(5 * time.Second):
		t.Fatal("no update observed after external clear")
	}
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	s := testStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	updates, err := s.Watch(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-updates:
		assert.False(t, ok, "channel should be closed")
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
