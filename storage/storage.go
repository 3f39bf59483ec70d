// Package storage keeps issue attachments in an S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxUploadSize is the largest attachment accepted, in bytes.
const MaxUploadSize = 10 << 20

const keyPrefix = "issues"

var (
	ErrEmptyUpload       = errors.New("file is empty")
	ErrUploadTooLarge    = errors.New("file exceeds the 10MB limit")
	ErrUnsupportedUpload = errors.New("only JPEG, PNG, WebP and PDF files are allowed")
)

// allowedTypes maps detected MIME types to the extension stored in the key.
var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// ObjectStore writes objects and reports where they can be fetched.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

// Object describes a stored attachment.
type Object struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

// CheckUpload detects the content type from the bytes themselves and returns
// it with the matching extension.
func CheckUpload(content []byte) (string, string, error) {
	if len(content) == 0 {
		return "", "", ErrEmptyUpload
	}
	if len(content) > MaxUploadSize {
		return "", "", ErrUploadTooLarge
	}
	detected := mimetype.Detect(content)
	for mime, ext := range allowedTypes {
		if detected.Is(mime) {
			return mime, ext, nil
		}
	}
	return "", "", ErrUnsupportedUpload
}

// NewKey returns a fresh object key for an attachment with extension ext.
func NewKey(ext string) string {
	return path.Join(keyPrefix, uuid.NewString()+ext)
}

// Uploader validates attachments before handing them to an ObjectStore.
type Uploader struct {
	store ObjectStore
}

func NewUploader(store ObjectStore) *Uploader {
	return &Uploader{store: store}
}

// Upload reads at most MaxUploadSize+1 bytes from r, checks them and stores
// them under a new key.
func (u *Uploader) Upload(ctx context.Context, r io.Reader) (*Object, error) {
	content, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	contentType, ext, err := CheckUpload(content)
	if err != nil {
		return nil, err
	}

	key := NewKey(ext)
	url, err := u.store.Put(ctx, key, bytes.NewReader(content), int64(len(content)), contentType)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", key, err)
	}
	return &Object{Key: key, URL: url, ContentType: contentType, Size: int64(len(content))}, nil
}

// IsRejected reports whether err is a validation failure rather than a
// storage failure.
func IsRejected(err error) bool {
	return errors.Is(err, ErrEmptyUpload) || errors.Is(err, ErrUploadTooLarge) || errors.Is(err, ErrUnsupportedUpload)
}
