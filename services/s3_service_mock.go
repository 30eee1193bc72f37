package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sync"
)

// MockS3Service is an in-memory S3Interface for tests
type MockS3Service struct {
	uploadedFiles map[string][]byte // map of S3 key to file content
	mu            sync.RWMutex

	// UploadErr, when set, is returned by every UploadFile call
	UploadErr error
}

// NewMockS3Service creates a new mock S3 service
func NewMockS3Service() *MockS3Service {
	return &MockS3Service{
		uploadedFiles: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global S3 service instance for testing
func (m *MockS3Service) SetAsMockForTesting() {
	SetS3Service(m)
}

// UploadFile simulates uploading a file to S3
func (m *MockS3Service) UploadFile(_ context.Context, key string, fileHeader *multipart.FileHeader) error {
	if m.UploadErr != nil {
		return m.UploadErr
	}

	content, err := readUpload(fileHeader)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.uploadedFiles[key] = content
	m.mu.Unlock()

	return nil
}

// GetPresignedURL simulates generating a presigned URL
func (m *MockS3Service) GetPresignedURL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	if !m.FileExists(key) {
		return "", fmt.Errorf("file not found in mock S3: %s", key)
	}

	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

// DeleteFile simulates deleting a file from S3
func (m *MockS3Service) DeleteFile(_ context.Context, key string) error {
	if key == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.uploadedFiles, key)
	m.mu.Unlock()

	return nil
}

// GetUploadedFiles returns a copy of all uploaded files
func (m *MockS3Service) GetUploadedFiles() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make(map[string][]byte, len(m.uploadedFiles))
	for k, v := range m.uploadedFiles {
		files[k] = v
	}
	return files
}

// FileExists checks if a file exists in mock storage
func (m *MockS3Service) FileExists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.uploadedFiles[key]
	return exists
}

// Clear removes all files from mock storage
func (m *MockS3Service) Clear() {
	m.mu.Lock()
	m.uploadedFiles = make(map[string][]byte)
	m.mu.Unlock()
}
