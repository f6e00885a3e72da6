package storage

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahdiyarhamdi/sheetaro/internal/pkg/apperror"
)

func newTestStorage(t *testing.T) *FileStorage {
	t.Helper()
	s, err := NewFileStorage(t.TempDir(), 1)
	require.NoError(t, err)
	return s
}

func smallPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestFileStorage_SaveAndOpen(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	ownerID := uuid.New()
	data := smallPNG(t)

	path, size, err := s.Save(ctx, ownerID, KindLogo, "logo.png", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), size)
	assert.True(t, strings.HasPrefix(path, "logo/"+ownerID.String()+"/"))

	f, err := s.Open(ctx, path)
	require.NoError(t, err)
	defer f.Close()
	stored, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}

func TestFileStorage_ExtensionAllowLists(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	ownerID := uuid.New()

	// Executables are never accepted.
	_, _, err := s.Save(ctx, ownerID, KindLogo, "payload.exe", bytes.NewReader([]byte("MZ")))
	assert.True(t, apperror.Is(err, apperror.ErrCodeUnsupportedImageFormat))

	// PDFs are fine as receipts but not as logos.
	pdf := append([]byte("%PDF-1.7\n"), make([]byte, 128)...)
	_, _, err = s.Save(ctx, ownerID, KindLogo, "receipt.pdf", bytes.NewReader(pdf))
	assert.True(t, apperror.Is(err, apperror.ErrCodeUnsupportedImageFormat))

	_, _, err = s.Save(ctx, ownerID, KindReceipt, "receipt.pdf", bytes.NewReader(pdf))
	assert.NoError(t, err)
}

func TestFileStorage_MagicBytesMustMatchExtension(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	// PNG content behind a .jpg name is rejected.
	_, _, err := s.Save(ctx, uuid.New(), KindLogo, "photo.jpg", bytes.NewReader(smallPNG(t)))
	assert.True(t, apperror.Is(err, apperror.ErrCodeUnsupportedImageFormat))

	// Arbitrary bytes behind a raster extension are rejected.
	_, _, err = s.Save(ctx, uuid.New(), KindLogo, "photo.png", bytes.NewReader([]byte("not an image at all")))
	assert.True(t, apperror.Is(err, apperror.ErrCodeUnsupportedImageFormat))

	// SVG is text and skips content sniffing.
	_, _, err = s.Save(ctx, uuid.New(), KindLogo, "logo.svg", strings.NewReader("<svg></svg>"))
	assert.NoError(t, err)
}

func TestFileStorage_EnforcesSizeCeiling(t *testing.T) {
	s := newTestStorage(t) // 1 MB ceiling
	ctx := context.Background()

	big := append([]byte("%PDF-1.7\n"), make([]byte, 2<<20)...)
	_, _, err := s.Save(ctx, uuid.New(), KindReceipt, "huge.pdf", bytes.NewReader(big))
	assert.True(t, apperror.Is(err, apperror.ErrCodeImageTooLarge))
}

func TestFileStorage_SaveBytesAndDelete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	ownerID := uuid.New()

	path, err := s.SaveBytes(ctx, ownerID, KindComposite, "composite_1.png", smallPNG(t))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, path))
	_, err = s.Open(ctx, path)
	assert.Error(t, err)

	// Deleting twice is not an error.
	assert.NoError(t, s.Delete(ctx, path))
}

func TestFileStorage_OpenConfinesToRoot(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.Open(ctx, "../../etc/passwd")
	assert.Error(t, err)
}
