package shortcode

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFilesystemStorage(t *testing.T) *FilesystemStorage {
	t.Helper()
	storage, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	return storage
}

func TestFilesystemStorage(t *testing.T) {
	testTemplateStorage(t, func(t *testing.T) TemplateStorage {
		return newFilesystemStorage(t)
	})
}

func TestNewFilesystemStorage(t *testing.T) {
	t.Run("empty root", func(t *testing.T) {
		_, err := NewFilesystemStorage("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgInvalidStorageRoot)
	})

	t.Run("creates missing root", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "a", "b")
		storage, err := NewFilesystemStorage(root)
		require.NoError(t, err)
		assert.Equal(t, root, storage.Root())
		assert.DirExists(t, root)
	})
}

func TestFilesystemStorage_Layout(t *testing.T) {
	ctx := context.Background()
	storage := newFilesystemStorage(t)

	require.NoError(t, storage.Save(ctx, &StoredTemplate{Name: "video", Source: "v1"}))
	require.NoError(t, storage.Save(ctx, &StoredTemplate{Name: "video", Source: "v2"}))

	source, err := os.ReadFile(filepath.Join(storage.Root(), "video"+FilesystemTemplateExt))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(source))

	assert.FileExists(t, filepath.Join(storage.Root(), ".history", "video", "v1.yaml"))
	assert.FileExists(t, filepath.Join(storage.Root(), ".history", "video", "v2.yaml"))

	require.NoError(t, storage.Delete(ctx, "video"))
	assert.NoDirExists(t, filepath.Join(storage.Root(), ".history", "video"))
}

func TestFilesystemStorage_HandWrittenTemplate(t *testing.T) {
	ctx := context.Background()
	storage := newFilesystemStorage(t)
	path := filepath.Join(storage.Root(), "card"+FilesystemTemplateExt)
	require.NoError(t, os.WriteFile(path, []byte("<div>{{.content}}</div>"), FilesystemFilePerm))

	got, err := storage.Get(ctx, "card")
	require.NoError(t, err)
	assert.Equal(t, "<div>{{.content}}</div>", got.Source)
	assert.Equal(t, 1, got.Version)

	versions, err := storage.ListVersions(ctx, "card")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, versions)

	v1, err := storage.GetVersion(ctx, "card", 1)
	require.NoError(t, err)
	assert.Equal(t, got.Source, v1.Source)

	t.Run("first save continues at version 2", func(t *testing.T) {
		tmpl := &StoredTemplate{Name: "card", Source: "<section/>"}
		require.NoError(t, storage.Save(ctx, tmpl))
		assert.Equal(t, 2, tmpl.Version)
	})
}

func TestFilesystemStorage_EditAfterSave(t *testing.T) {
	ctx := context.Background()
	storage := newFilesystemStorage(t)
	require.NoError(t, storage.Save(ctx, &StoredTemplate{
		Name:     "note",
		Source:   "saved",
		Metadata: map[string]string{"owner": "docs"},
	}))

	path := filepath.Join(storage.Root(), "note"+FilesystemTemplateExt)
	require.NoError(t, os.WriteFile(path, []byte("edited"), FilesystemFilePerm))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	got, err := storage.Get(ctx, "note")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Source)
	assert.Equal(t, "docs", got.Metadata["owner"])
	assert.WithinDuration(t, later, got.UpdatedAt, time.Second)
}

func TestValidateTemplateNameForFilesystem(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple", input: "video"},
		{name: "dashes and dots", input: "note-card.v2"},
		{name: "empty", input: "", wantErr: true},
		{name: "hidden", input: ".history", wantErr: true},
		{name: "traversal", input: "a..b", wantErr: true},
		{name: "slash", input: "a/b", wantErr: true},
		{name: "backslash", input: `a\b`, wantErr: true},
		{name: "colon", input: "c:x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTemplateNameForFilesystem(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
