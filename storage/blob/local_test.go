package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almajirisurvey/backend/core/file"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	n, err := store.Save(ctx, "pic.png", strings.NewReader("not really a png"))
	require.NoError(t, err)
	assert.EqualValues(t, 16, n)

	rc, err := store.Open(ctx, "pic.png")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "not really a png", string(data))

	require.NoError(t, store.Remove(ctx, "pic.png"))
	_, err = store.Open(ctx, "pic.png")
	assert.Equal(t, file.ErrNotFound, err)

	// removing a blob that is already gone is not an error
	assert.NoError(t, store.Remove(ctx, "pic.png"))
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../evil", "a/b", ".hidden"} {
		_, err = store.Save(ctx, name, strings.NewReader("x"))
		assert.Error(t, err, name)
	}
}
