package catalog

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// SaveUpload writes an uploaded image into dir under a timestamp-suffixed
// name and returns the stored filename. Empty files and unknown extensions
// are rejected.
func SaveUpload(dir string, fh *multipart.FileHeader) (string, error) {
	if fh == nil || fh.Size == 0 {
		return "", fmt.Errorf("empty upload: %w", ErrInvalidInput)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("unsupported image type %q: %w", ext, ErrInvalidInput)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	base := Slugify(strings.TrimSuffix(filepath.Base(fh.Filename), ext))
	if base == "" {
		base = "upload"
	}
	name := fmt.Sprintf("%s-%d%s", base, time.Now().UnixNano(), ext)

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("store upload: %w", err)
	}
	return name, nil
}
