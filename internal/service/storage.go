package service

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/avdeyev/shiftdesk/internal/domain"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// StorageService writes uploaded images to local disk. Callers only record
// the returned reference; file bytes are never inspected beyond the size
// and extension checks.
type StorageService struct {
	dir     string
	maxSize int64
}

func NewStorageService(dir string, maxSize int64) *StorageService {
	return &StorageService{dir: dir, maxSize: maxSize}
}

// Save stores one upload under a unique name and returns its public path.
func (s *StorageService) Save(file *multipart.FileHeader, prefix string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", domain.ValidationError{Message: "unsupported file type, allowed: jpg, jpeg, png, gif"}
	}
	if file.Size > s.maxSize {
		return "", domain.ValidationError{Message: "file too large, limit is 5MB"}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "StorageService.Save: mkdir failed")
	}

	filename := prefix + "_" + uuid.New().String() + ext
	path := filepath.Join(s.dir, filename)

	src, err := file.Open()
	if err != nil {
		return "", errors.Wrap(err, "StorageService.Save: open upload failed")
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "StorageService.Save: create file failed")
	}
	defer dst.Close()

	// LimitReader guards against size lies in the multipart header.
	if _, err := io.Copy(dst, io.LimitReader(src, s.maxSize+1)); err != nil {
		return "", errors.Wrap(err, "StorageService.Save: write failed")
	}
	if info, err := dst.Stat(); err == nil && info.Size() > s.maxSize {
		os.Remove(path)
		return "", domain.ValidationError{Message: "file too large, limit is 5MB"}
	}

	return "/uploads/" + filename, nil
}

// Dir exposes the storage root for static file serving.
func (s *StorageService) Dir() string { return s.dir }
