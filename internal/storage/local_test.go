package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	payload := []byte("zip bytes")

	exists, err := store.Exists(ctx, "runs/Data_03_14_2026_09_26.zip")
	require.NoError(t, err)
	assert.False(t, exists)

	err = store.Upload(ctx, "runs/Data_03_14_2026_09_26.zip", bytes.NewReader(payload), int64(len(payload)), "application/zip")
	require.NoError(t, err)

	exists, err = store.Exists(ctx, "runs/Data_03_14_2026_09_26.zip")
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := store.Download(ctx, "runs/Data_03_14_2026_09_26.zip")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, payload, got)

	require.NoError(t, store.Delete(ctx, "runs/Data_03_14_2026_09_26.zip"))
	exists, err = store.Exists(ctx, "runs/Data_03_14_2026_09_26.zip")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	err = store.Upload(context.Background(), "../outside.zip", bytes.NewReader(nil), 0, "application/zip")
	assert.Error(t, err)
}
