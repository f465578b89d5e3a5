package storage

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallest valid PNG header followed by an IHDR chunk
var pngBytes = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4, 0x89,
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestDetectImage(t *testing.T) {
	mtype, err := DetectImage(fileHeader(t, "thumb.png", pngBytes), 1024)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mtype.String())

	_, err = DetectImage(fileHeader(t, "fake.png", []byte("plain text pretending")), 1024)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = DetectImage(fileHeader(t, "big.png", pngBytes), 8)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestLocalUploader(t *testing.T) {
	dir := t.TempDir()
	up := &LocalUploader{Dir: dir, URLPrefix: "/uploads"}

	url, err := UploadImage(context.Background(), up, fileHeader(t, "a.png", pngBytes), 1024, "courses/4", "thumbnail")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/courses/4/thumbnail-"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	key := strings.TrimPrefix(url, "/uploads/")
	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)

	require.NoError(t, up.Delete(context.Background(), key))
	require.NoError(t, up.Delete(context.Background(), key))
}
