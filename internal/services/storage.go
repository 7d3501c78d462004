package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"alfredoptarigan/resume-analyzer/internal/models"
)

// StorageService holds uploads on disk for the duration of one request.
type StorageService interface {
	SaveUpload(file *multipart.FileHeader) (*models.UploadedDocument, error)
	SaveBytes(fileName, mimeType string, data []byte) (*models.UploadedDocument, error)
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
	if err := os.MkdirAll(s.uploadPath, 0o700); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

func (s *storageService) SaveUpload(file *multipart.FileHeader) (*models.UploadedDocument, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	return s.save(file.Filename, file.Header.Get("Content-Type"), src)
}

func (s *storageService) SaveBytes(fileName, mimeType string, data []byte) (*models.UploadedDocument, error) {
	return s.save(fileName, mimeType, bytes.NewReader(data))
}

func (s *storageService) save(fileName, mimeType string, src io.Reader) (*models.UploadedDocument, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(fileName)))

	uniqueFilename := fmt.Sprintf("upload_%s%s", uuid.New().String(), ext)
	filePath := filepath.Join(s.uploadPath, uniqueFilename)

	dst, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	written, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		RemoveTempFile(filePath)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &models.UploadedDocument{
		FilePath:         filePath,
		OriginalFileName: fileName,
		MimeType:         mimeType,
		Extension:        ext,
		SizeBytes:        written,
	}, nil
}

// RemoveTempFile deletes path. A path that is already gone is fine, and any
// other failure is only logged.
func RemoveTempFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("⚠️ Failed to remove temp file %s: %v", path, err)
	}
}
