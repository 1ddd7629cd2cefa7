package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StorageService keeps uploaded CV files on local disk.
type StorageService interface {
	SaveFile(r io.Reader, originalName, mediaType string) (string, string, error)
	GetFilePath(filename string) string
	DeleteFile(filename string) error
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath string
}

func NewStorageService(uploadPath string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// extensionFor picks the stored extension from the declared media type, falling back
// to the original name.
func extensionFor(originalName, mediaType string) string {
	switch NormalizeMediaType(mediaType) {
	case MediaTypePDF:
		return ".pdf"
	case MediaTypeDOCX:
		return ".docx"
	case MediaTypeMSWord:
		return ".doc"
	}
	return strings.ToLower(filepath.Ext(originalName))
}

// SaveFile implements StorageService. It returns the generated filename and its full path.
func (s *storageService) SaveFile(r io.Reader, originalName, mediaType string) (string, string, error) {
	if !IsSupportedMediaType(mediaType) {
		return "", "", &UnsupportedTypeError{MediaType: mediaType}
	}

	uniqueFilename := fmt.Sprintf("cv_%s%s", uuid.New().String(), extensionFor(originalName, mediaType))
	filePath := filepath.Join(s.uploadPath, uniqueFilename)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(filePath)
		return "", "", fmt.Errorf("failed to save file: %w", err)
	}

	return uniqueFilename, filePath, nil
}

func (s *storageService) GetFilePath(filename string) string {
	return filepath.Join(s.uploadPath, filepath.Base(filename))
}

func (s *storageService) DeleteFile(filename string) error {
	filePath := s.GetFilePath(filename)
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
