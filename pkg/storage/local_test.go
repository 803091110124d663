package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vkbackup/pkg/logger"
)

func TestLocalUpload(t *testing.T) {
	fs := memfs.New()
	l := NewLocalWithFS(fs, logger.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, l.EnsureFolder(ctx, "vk_photos"))

	exists, err := l.Exists(ctx, "vk_photos/3_42.jpg")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, l.Upload(ctx, "vk_photos/3_42.jpg", []byte("photo")))

	data, err := util.ReadFile(fs, "vk_photos/3_42.jpg")
	require.NoError(t, err)
	assert.Equal(t, "photo", string(data))

	exists, err = l.Exists(ctx, "vk_photos/3_42.jpg")
	require.NoError(t, err)
	assert.True(t, exists)

	entries, err := fs.ReadDir("vk_photos")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files should remain")
}

func TestLocalUploadDoesNotOverwrite(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "vk_photos/3_42.jpg", []byte("first"), 0644))
	l := NewLocalWithFS(fs, logger.NewNopLogger())

	err := l.Upload(context.Background(), "vk_photos/3_42.jpg", []byte("second"))
	assert.True(t, errors.Is(err, ErrAlreadyExists))

	data, err := util.ReadFile(fs, "vk_photos/3_42.jpg")
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}
