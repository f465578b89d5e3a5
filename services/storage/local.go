package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// LocalUploader writes objects below Dir; main serves Dir at URLPrefix
type LocalUploader struct {
	Dir       string
	URLPrefix string
}

var _ Uploader = (*LocalUploader)(nil)

func (l *LocalUploader) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	filePath := filepath.Join(l.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", err
	}

	dst, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", err
	}
	return l.URLPrefix + "/" + key, nil
}

func (l *LocalUploader) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(l.Dir, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
