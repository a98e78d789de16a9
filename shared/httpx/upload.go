package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cuongbtq/petstore/shared/apperr"
)

// ErrNoFile is returned by SaveUpload when the form has no file in the field.
var ErrNoFile = errors.New("no file uploaded")

// Upload describes a file stored by SaveUpload.
type Upload struct {
	// Filename is the name sent by the client.
	Filename string
	// Path is where the file was written.
	Path string
	Size int64
}

// SaveUpload writes the multipart file in field under dir with a generated
// name. maxSize <= 0 disables the size check.
func SaveUpload(c *gin.Context, field, dir string, maxSize int64) (*Upload, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, ErrNoFile
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInvalidInput, "Invalid multipart form", err)
	}

	if maxSize > 0 && header.Size > maxSize {
		return nil, apperr.New(apperr.ErrInvalidInput,
			fmt.Sprintf("File too large: %d bytes (max %d)", header.Size, maxSize))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	name := uuid.NewString() + filepath.Ext(filepath.Base(header.Filename))
	path := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(header, path); err != nil {
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}

	return &Upload{Filename: header.Filename, Path: path, Size: header.Size}, nil
}

// Remove deletes the stored file. An Upload with no Path, or a file that is
// already gone, is not an error.
func (u *Upload) Remove() error {
	if u == nil || u.Path == "" {
		return nil
	}
	if err := os.Remove(u.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove upload: %w", err)
	}
	return nil
}
