package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocal_Lifecycle(t *testing.T) {
	root := t.TempDir()
	s := NewLocal(root)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "model/chair.json", []byte(`{"materials":{}}`)))
	require.NoError(t, s.Put(ctx, "model/table.json", []byte(`{}`)))
	require.NoError(t, s.Put(ctx, "image/chair.jpg", []byte("jpeg")))

	_, err := os.Stat(filepath.Join(root, "model", "chair.json"))
	require.NoError(t, err)

	data, err := s.Get(ctx, "image/chair.jpg")
	require.NoError(t, err)
	require.Equal(t, "jpeg", string(data))

	info, err := s.Stat(ctx, "model/table.json")
	require.NoError(t, err)
	require.Equal(t, int64(2), info.Size)
	require.Equal(t, "model/table.json", info.Name)

	names, err := s.List(ctx, "model/")
	require.NoError(t, err)
	require.Equal(t, []string{"model/chair.json", "model/table.json"}, names)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"image/chair.jpg", "model/chair.json", "model/table.json"}, all)

	require.NoError(t, s.Delete(ctx, "model/chair.json"))
	require.NoError(t, s.Delete(ctx, "model/chair.json"))
	_, err = s.Get(ctx, "model/chair.json")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Stat(ctx, "model/chair.json")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocal_RejectsTraversal(t *testing.T) {
	s := NewLocal(t.TempDir())
	ctx := context.Background()

	for _, name := range []string{"../escape", "/etc/passwd", "a/../../b", "", ".", "a//b"} {
		_, err := s.Get(ctx, name)
		require.ErrorIs(t, err, ErrInvalidName, name)
		require.ErrorIs(t, s.Put(ctx, name, nil), ErrInvalidName, name)
	}
}

func TestLocal_ListMissingRoot(t *testing.T) {
	s := NewLocal(filepath.Join(t.TempDir(), "absent"))
	names, err := s.List(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestLocal_StatDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "model"), 0o755))
	_, err := NewLocal(root).Stat(context.Background(), "model")
	require.ErrorIs(t, err, ErrNotFound)
}
