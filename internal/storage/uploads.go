// Package storage saves uploaded images to a local blob directory.
// Size and type limits are enforced here, before any repository write
// happens, so an oversized or non-image upload never leaves a partial
// database state behind.
package storage

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload caps, matching the public form limits.
const (
	MaxPostImageBytes = 5 << 20 // 5 MB for post images
	MaxAvatarBytes    = 2 << 20 // 2 MB for avatars
)

// ErrInvalidImage is returned for uploads whose extension or declared
// content type is not an accepted raster image format.
var ErrInvalidImage = errors.New("only image files are allowed")

// ErrImageTooLarge is returned when the upload exceeds the cap for its
// category.
var ErrImageTooLarge = errors.New("image exceeds the maximum allowed size")

// allowedExt and allowedMime form the fixed accept-list. Both the file
// extension and the declared content type must match.
var allowedExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

var allowedMime = map[string]bool{
	"image/jpeg": true, "image/png": true, "image/gif": true, "image/webp": true,
}

// Uploader writes validated images under Dir and returns the public URL
// path they will be served from.
type Uploader struct {
	Dir string
}

// NewUploader ensures the upload directories exist.
func NewUploader(dir string) (*Uploader, error) {
	if err := os.MkdirAll(filepath.Join(dir, "avatars"), 0o755); err != nil {
		return nil, err
	}
	return &Uploader{Dir: dir}, nil
}

// SavePostImage stores a post image and returns its /uploads/... URL.
func (u *Uploader) SavePostImage(fh *multipart.FileHeader) (string, error) {
	name, err := u.save(fh, MaxPostImageBytes, "", "image-")
	if err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}

// SaveAvatar stores an avatar image and returns its /uploads/avatars/...
// URL. Avatars have a tighter size cap than post images.
func (u *Uploader) SaveAvatar(fh *multipart.FileHeader) (string, error) {
	name, err := u.save(fh, MaxAvatarBytes, "avatars", "avatar-")
	if err != nil {
		return "", err
	}
	return "/uploads/avatars/" + name, nil
}

func (u *Uploader) save(fh *multipart.FileHeader, maxBytes int64, subdir, prefix string) (string, error) {
	ext := strings.ToLower(path.Ext(fh.Filename))
	if !allowedExt[ext] || !allowedMime[fh.Header.Get("Content-Type")] {
		return "", ErrInvalidImage
	}
	if fh.Size > maxBytes {
		return "", ErrImageTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := prefix + uuid.NewString() + ext
	dstPath := filepath.Join(u.Dir, subdir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	// The declared Size header is client-controlled; cap the actual
	// bytes copied as well and reject when the stream runs past it.
	n, err := io.Copy(dst, io.LimitReader(src, maxBytes+1))
	if err != nil {
		os.Remove(dstPath)
		return "", err
	}
	if n > maxBytes {
		os.Remove(dstPath)
		return "", ErrImageTooLarge
	}
	return name, nil
}
