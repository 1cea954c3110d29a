package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Attachment storage areas. Task and comment attachments live in separate
// namespaces under the media root.
const (
	TaskFilesArea    = "task_files"
	CommentFilesArea = "comment_files"
)

// Storage holds uploaded attachment content on local disk under a media
// root. Stored names are generated (uuid plus the original extension) so
// concurrent uploads never collide on a path.
type Storage struct {
	Root string
}

func NewStorage(root string) *Storage {
	return &Storage{Root: root}
}

// Save writes an uploaded file into the given area and returns its path
// relative to the media root. A write failure here must abort the caller's
// operation; it is never swallowed.
func (s *Storage) Save(area string, file *multipart.FileHeader) (string, error) {
	dir := filepath.Join(s.Root, area)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.NewString() + filepath.Ext(file.Filename)
	dst := filepath.Join(dir, name)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return filepath.ToSlash(filepath.Join(area, name)), nil
}

// Path resolves a stored relative path to its location on disk.
func (s *Storage) Path(rel string) string {
	return filepath.Join(s.Root, filepath.FromSlash(rel))
}

// Remove deletes stored content best-effort. Content already missing from
// disk is not a failure; metadata deletion must proceed regardless.
func (s *Storage) Remove(rel string) {
	_ = os.Remove(s.Path(rel))
}
