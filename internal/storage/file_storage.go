package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/mahdiyarhamdi/sheetaro/internal/pkg/apperror"
)

// Extensions accepted per upload kind. Logos must be raster or vector
// images; design files may also be print-ready working formats; receipts
// are photos or PDFs of the bank transfer.
var (
	logoExtensions    = map[string]struct{}{".png": {}, ".jpg": {}, ".jpeg": {}, ".svg": {}}
	designExtensions  = map[string]struct{}{".pdf": {}, ".ai": {}, ".psd": {}, ".png": {}, ".svg": {}}
	receiptExtensions = map[string]struct{}{".png": {}, ".jpg": {}, ".jpeg": {}, ".pdf": {}}
)

// Kind selects which extension allow-list applies to an upload.
type Kind string

const (
	KindLogo      Kind = "logo"
	KindDesign    Kind = "design"
	KindReceipt   Kind = "receipt"
	KindComposite Kind = "composite"
	KindAnswer    Kind = "answer"
)

// FileStorage keeps uploads on the local filesystem under a per-owner
// directory tree.
type FileStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// NewFileStorage creates the storage root if needed.
func NewFileStorage(rootPath string, maxUploadMB int64) (*FileStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root %s: %w", rootPath, err)
	}

	return &FileStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// MaxUploadBytes returns the configured per-file ceiling.
func (s *FileStorage) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

// Save writes the upload and returns its relative path and size. The
// extension is checked against the allow-list of the kind, and for
// sniffable binary formats the magic bytes must agree with the extension.
func (s *FileStorage) Save(ctx context.Context, ownerID uuid.UUID, kind Kind, originalName string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	ext := strings.ToLower(filepath.Ext(sanitizeFilename(originalName)))
	if err := checkExtension(kind, ext); err != nil {
		return "", 0, err
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", 0, fmt.Errorf("storage: read upload head: %w", err)
	}
	head = head[:n]
	if err := checkMagicBytes(ext, head); err != nil {
		return "", 0, err
	}

	fileName := fmt.Sprintf("%s_%d%s", ownerID.String(), time.Now().UnixNano(), ext)
	ownerDir := filepath.Join(s.rootPath, string(kind), ownerID.String())
	if err := os.MkdirAll(ownerDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("storage: create owner dir: %w", err)
	}

	targetPath := filepath.Join(ownerDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", 0, fmt.Errorf("storage: create file: %w", err)
	}
	defer f.Close()

	limited := io.LimitedReader{R: io.MultiReader(bytes.NewReader(head), r), N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limited)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: write file: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return "", 0, apperror.Newf(apperror.ErrCodeImageTooLarge,
			"the file exceeds the %d byte upload limit", s.maxUploadBytes)
	}

	if err := f.Close(); err != nil {
		return "", 0, fmt.Errorf("storage: close file: %w", err)
	}
	if err := os.Rename(tempPath, targetPath); err != nil {
		return "", 0, fmt.Errorf("storage: rename file: %w", err)
	}

	relative := filepath.Join(string(kind), ownerID.String(), fileName)
	return relative, written, nil
}

// SaveBytes stores an in-memory artifact, such as a rendered composite.
func (s *FileStorage) SaveBytes(ctx context.Context, ownerID uuid.UUID, kind Kind, name string, data []byte) (string, error) {
	relative, _, err := s.Save(ctx, ownerID, kind, name, bytes.NewReader(data))
	return relative, err
}

// Open returns a reader over a stored file.
func (s *FileStorage) Open(ctx context.Context, relativePath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target := filepath.Join(s.rootPath, filepath.Clean("/"+relativePath))
	f, err := os.Open(target)
	if err != nil {
		return nil, fmt.Errorf("storage: open file: %w", err)
	}
	return f, nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *FileStorage) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := filepath.Join(s.rootPath, filepath.Clean("/"+relativePath))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete file: %w", err)
	}
	return nil
}

func checkExtension(kind Kind, ext string) error {
	var allowed map[string]struct{}
	switch kind {
	case KindLogo:
		allowed = logoExtensions
	case KindDesign, KindAnswer:
		allowed = designExtensions
	case KindReceipt:
		allowed = receiptExtensions
	case KindComposite:
		allowed = map[string]struct{}{".png": {}}
	default:
		return apperror.Newf(apperror.ErrCodeBadRequest, "unknown upload kind %q", kind)
	}

	if _, ok := allowed[ext]; !ok {
		return apperror.Newf(apperror.ErrCodeUnsupportedImageFormat,
			"the %s extension is not accepted for %s uploads", ext, kind)
	}
	return nil
}

// checkMagicBytes rejects files whose content disagrees with the claimed
// extension. Text formats (svg, ai postscript variants) have no reliable
// magic bytes and are skipped.
func checkMagicBytes(ext string, head []byte) error {
	switch ext {
	case ".png", ".jpg", ".jpeg", ".pdf", ".psd":
	default:
		return nil
	}

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return apperror.New(apperror.ErrCodeUnsupportedImageFormat,
			"the file content does not match a supported format")
	}

	match := false
	switch ext {
	case ".png":
		match = kind.Extension == "png"
	case ".jpg", ".jpeg":
		match = kind.Extension == "jpg"
	case ".pdf":
		match = kind.Extension == "pdf"
	case ".psd":
		match = kind.Extension == "psd"
	}
	if !match {
		return apperror.Newf(apperror.ErrCodeUnsupportedImageFormat,
			"the file content does not match the %s extension", ext)
	}
	return nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "upload"
	}
	return name
}
