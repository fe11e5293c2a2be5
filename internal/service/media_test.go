package service

import (
	"context"
	"testing"

	"inkwell/internal/testutil"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaStore_Remove(t *testing.T) {
	t.Parallel()

	media := NewMediaStoreOn(afero.NewMemMapFs(), 1<<20)
	name, err := media.SavePostImage(context.Background(), Upload{Filename: "a.png", Content: testutil.PNG(t)})
	require.NoError(t, err)
	require.True(t, media.Exists(name))

	require.NoError(t, media.Remove(name))
	assert.False(t, media.Exists(name))
	assert.NoError(t, media.Remove(name), "removing a missing file is not an error")
}
