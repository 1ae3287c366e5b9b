// Package filestore persists blog photos on local disk. Photos arrive as
// base64 data URLs, are decoded and bounded to a maximum width, and are
// served back via the API's static /storage route.
package filestore

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/rryowa/blogapi/internal/util"
)

var dataURLPrefix = regexp.MustCompile(`^data:image/(png|jpg|jpeg);base64,`)

type FileStore struct {
	dir      string
	baseURL  string
	maxWidth int
}

func NewFileStore(cfg *util.StorageConfig) (*FileStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{
		dir:      cfg.Dir,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		maxWidth: cfg.MaxPhotoWidth,
	}, nil
}

func (fs *FileStore) Dir() string { return fs.dir }

// SavePhoto decodes the base64 photo, bounds it to the configured width and
// writes it as PNG. It returns the public URL to store on the blog record.
func (fs *FileStore) SavePhoto(encoded, ownerID string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(dataURLPrefix.ReplaceAllString(encoded, ""))
	if err != nil {
		return "", util.NewValidationError("photo is not valid base64 image data")
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", util.NewValidationError("photo is not a decodable image")
	}
	if img.Bounds().Dx() > fs.maxWidth {
		img = imaging.Resize(img, fs.maxWidth, 0, imaging.Lanczos)
	}

	name := fmt.Sprintf("%d-%s.png", time.Now().UnixMilli(), ownerID)
	if err := imaging.Save(img, filepath.Join(fs.dir, name)); err != nil {
		return "", util.NewPersistenceError("failed to store photo")
	}

	return fs.baseURL + "/storage/" + name, nil
}

// DeleteByURL removes the file a previously returned photo URL points at.
// Missing files are not an error; replaced photos may already be gone.
func (fs *FileStore) DeleteByURL(url string) error {
	name := path.Base(url)
	if name == "." || name == "/" || name == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(fs.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}
