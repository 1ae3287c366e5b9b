package filestore

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rryowa/blogapi/internal/util"
)

func newTestFileStore(t *testing.T, maxWidth int) *FileStore {
	t.Helper()
	fs, err := NewFileStore(&util.StorageConfig{
		Dir:           t.TempDir(),
		BaseURL:       "http://localhost:8080",
		MaxPhotoWidth: maxWidth,
	})
	require.NoError(t, err)
	return fs
}

func encodePNG(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestSavePhoto(t *testing.T) {
	fs := newTestFileStore(t, 1600)

	url, err := fs.SavePhoto(encodePNG(t, 10, 10), "owner-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/storage/"))
	assert.True(t, strings.HasSuffix(url, "-owner-1.png"))

	entries, err := os.ReadDir(fs.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestSavePhotoWithoutDataURLPrefix(t *testing.T) {
	fs := newTestFileStore(t, 1600)

	raw := strings.TrimPrefix(encodePNG(t, 4, 4), "data:image/png;base64,")
	_, err := fs.SavePhoto(raw, "owner-1")
	assert.NoError(t, err)
}

func TestSavePhotoRejectsBadInput(t *testing.T) {
	fs := newTestFileStore(t, 1600)

	_, err := fs.SavePhoto("not base64 at all!!!", "owner-1")
	assert.True(t, util.IsKind(err, util.KindValidation))

	notAnImage := base64.StdEncoding.EncodeToString([]byte("plain text"))
	_, err = fs.SavePhoto(notAnImage, "owner-1")
	assert.True(t, util.IsKind(err, util.KindValidation))
}

func TestSavePhotoBoundsWidth(t *testing.T) {
	fs := newTestFileStore(t, 8)

	url, err := fs.SavePhoto(encodePNG(t, 32, 16), "owner-1")
	require.NoError(t, err)

	stored, err := imaging.Open(filepath.Join(fs.Dir(), filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, 8, stored.Bounds().Dx())
	// Aspect ratio is preserved.
	assert.Equal(t, 4, stored.Bounds().Dy())
}

func TestSavePhotoKeepsSmallImages(t *testing.T) {
	fs := newTestFileStore(t, 1600)

	url, err := fs.SavePhoto(encodePNG(t, 12, 7), "owner-1")
	require.NoError(t, err)

	stored, err := imaging.Open(filepath.Join(fs.Dir(), filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, 12, stored.Bounds().Dx())
	assert.Equal(t, 7, stored.Bounds().Dy())
}

func TestDeleteByURL(t *testing.T) {
	fs := newTestFileStore(t, 1600)

	url, err := fs.SavePhoto(encodePNG(t, 4, 4), "owner-1")
	require.NoError(t, err)

	require.NoError(t, fs.DeleteByURL(url))

	entries, err := os.ReadDir(fs.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Deleting again is not an error.
	assert.NoError(t, fs.DeleteByURL(url))
}
