package memory

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadDownload(t *testing.T) {
	backend := New()
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "posts/a.png", bytes.NewReader([]byte("image bytes"))))

	rc, err := backend.Download(ctx, "posts/a.png")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("image bytes"), data)
}

func TestExists(t *testing.T) {
	backend := New()
	ctx := context.Background()

	exists, err := backend.Exists(ctx, "posts/a.png")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, backend.Upload(ctx, "posts/a.png", bytes.NewReader([]byte("x"))))

	exists, err = backend.Exists(ctx, "posts/a.png")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDelete(t *testing.T) {
	backend := New()
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "posts/a.png", bytes.NewReader([]byte("x"))))
	require.NoError(t, backend.Delete(ctx, "posts/a.png"))

	exists, err := backend.Exists(ctx, "posts/a.png")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Error(t, backend.Delete(ctx, "posts/a.png"), "deleting a missing object fails")
}

func TestDownloadMissing(t *testing.T) {
	backend := New()

	_, err := backend.Download(context.Background(), "posts/missing.png")
	assert.Error(t, err)
}
