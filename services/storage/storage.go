// Package storage keeps uploaded media in MinIO or on local disk.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Uploader stores objects and returns the URL they are served from
type Uploader interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

var (
	ErrFileTooLarge    = errors.New("file exceeds the upload size limit")
	ErrUnsupportedType = errors.New("unsupported file type")
)

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// DetectImage sniffs the file content and rejects anything that is not jpeg, png or webp
func DetectImage(file *multipart.FileHeader, maxBytes int64) (*mimetype.MIME, error) {
	if maxBytes > 0 && file.Size > maxBytes {
		return nil, ErrFileTooLarge
	}
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, err
	}
	for m := mtype; m != nil; m = m.Parent() {
		if imageTypes[m.String()] {
			return mtype, nil
		}
	}
	return nil, ErrUnsupportedType
}

// ObjectKey builds a unique key such as "courses/12/thumbnail-20240101150405-<uuid>.png"
func ObjectKey(prefix, name, extension string) string {
	return path.Join(prefix, fmt.Sprintf("%s-%s-%s%s", name, time.Now().UTC().Format("20060102150405"), uuid.NewString()[:8], extension))
}

// UploadImage validates and stores an uploaded image under prefix
func UploadImage(ctx context.Context, up Uploader, file *multipart.FileHeader, maxBytes int64, prefix, name string) (string, error) {
	mtype, err := DetectImage(file, maxBytes)
	if err != nil {
		return "", err
	}
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	return up.Put(ctx, ObjectKey(prefix, name, mtype.Extension()), src, file.Size, mtype.String())
}
