// Package storage keeps rendered notifications on the local filesystem
// for the file provider.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/welldanyogia/webrana-contact-relay/internal/validator"
)

// Security errors
var (
	ErrPathTraversal = errors.New("path traversal detected")
	ErrFileNotFound  = errors.New("file not found")
	ErrFileTooLarge  = errors.New("file exceeds size limit")
)

// MaxFileSize is the maximum size of a stored message (1 MB)
const MaxFileSize = 1 * 1024 * 1024

// FileStorage defines the interface for message drop storage
type FileStorage interface {
	Save(filename string, content io.Reader) (string, error)
	Get(filePath string) (io.ReadCloser, error)
}

// localStorage implements FileStorage using local filesystem
type localStorage struct {
	basePath string
	now      func() time.Time
}

// NewLocalStorage creates a new localStorage instance
func NewLocalStorage(basePath string) (FileStorage, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, errors.New("storage path cannot be empty")
	}
	// Ensure base directory exists
	if err := os.MkdirAll(basePath, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &localStorage{basePath: basePath, now: time.Now}, nil
}

// validatePath ensures path is within basePath (prevents traversal)
func (s *localStorage) validatePath(filePath string) (string, error) {
	cleanPath := filepath.Clean(filePath)

	if filepath.IsAbs(cleanPath) || strings.Contains(cleanPath, "..") {
		return "", ErrPathTraversal
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, cleanPath))
	if err != nil {
		return "", fmt.Errorf("invalid file path: %w", err)
	}

	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}

	return absPath, nil
}

// Save writes content under a per-day subdirectory and returns the path
// relative to the base directory.
func (s *localStorage) Save(filename string, content io.Reader) (string, error) {
	name := validator.SanitizeString(filename, 255)
	name = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(name)
	if name == "" {
		return "", errors.New("filename cannot be empty")
	}

	relPath := filepath.Join(s.now().UTC().Format("2006-01-02"), name)
	fullPath, err := s.validatePath(relPath)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	// Read one byte past the limit to detect oversized content
	n, err := io.Copy(file, io.LimitReader(content, MaxFileSize+1))
	if err == nil && n > MaxFileSize {
		err = ErrFileTooLarge
	}
	if err != nil {
		file.Close()
		os.Remove(fullPath)
		if errors.Is(err, ErrFileTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return relPath, nil
}

// Get opens a stored file by its relative path
func (s *localStorage) Get(filePath string) (io.ReadCloser, error) {
	fullPath, err := s.validatePath(filePath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}
