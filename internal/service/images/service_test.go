package images

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/preorder/internal/domain/models"
)

func TestSave(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewService(dir, nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		upload   string
		rename   string
		wantPath string
		wantErr  error
	}{
		{name: "upload name", upload: "bread.JPG", wantPath: "/images/bread.jpg"},
		{name: "jpeg renamed to jpg", upload: "rye.jpeg", wantPath: "/images/rye.jpg"},
		{name: "explicit name", upload: "IMG_001.jpg", rename: "Sourdough", wantPath: "/images/Sourdough.jpg"},
		{name: "directories stripped", upload: "x.jpg", rename: "../../etc/passwd", wantPath: "/images/passwd.jpg"},
		{name: "empty upload", upload: "", wantErr: models.ErrValidation},
		{name: "png rejected", upload: "bread.png", wantErr: models.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := svc.Save(tt.upload, tt.rename, strings.NewReader("jpeg-bytes"))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, path)

			data, err := os.ReadFile(filepath.Join(dir, filepath.Base(path)))
			require.NoError(t, err)
			assert.Equal(t, "jpeg-bytes", string(data))
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".upload-"), "temp file left behind: %s", e.Name())
	}
}

func TestPath(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewService(dir, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Bread.jpg"), []byte("x"), 0o644))

	full, err := svc.Path("Bread.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Bread.jpg"), full)

	_, err = svc.Path("Rye.jpg")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.Path("..")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
