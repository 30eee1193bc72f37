package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/an-furnish/furnish-api/utils"
)

// ImageService stores order reference images
type ImageService interface {
	// UploadImage validates and uploads an image for the order, returns the storage key
	UploadImage(ctx context.Context, humanCode string, fileHeader *multipart.FileHeader) (string, error)

	// GetImageURL generates a URL for accessing an uploaded image
	GetImageURL(ctx context.Context, imageKey string) (string, error)

	// DeleteImage removes an image from storage
	DeleteImage(ctx context.Context, imageKey string) error
}

// S3ImageService implements ImageService using AWS S3 for storage
type S3ImageService struct {
	s3Service S3Interface
	now       func() time.Time
}

var imageServiceInstance ImageService

// InitImageService initializes the image service with S3 backend
func InitImageService(s3Service S3Interface) ImageService {
	imageServiceInstance = NewS3ImageService(s3Service)
	return imageServiceInstance
}

// NewS3ImageService builds an image service without installing it globally
func NewS3ImageService(s3Service S3Interface) *S3ImageService {
	return &S3ImageService{s3Service: s3Service, now: time.Now}
}

// GetImageService returns the initialized image service instance
func GetImageService() ImageService {
	return imageServiceInstance
}

// SetImageService sets the image service instance (primarily for testing)
func SetImageService(service ImageService) {
	imageServiceInstance = service
}

// UploadImage validates and uploads an image file to S3
func (s *S3ImageService) UploadImage(ctx context.Context, humanCode string, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	key := utils.BuildAttachmentKey(humanCode, fileHeader.Filename, s.now())
	if err := s.s3Service.UploadFile(ctx, key, fileHeader); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return key, nil
}

// GetImageURL generates a presigned URL for accessing an image
func (s *S3ImageService) GetImageURL(ctx context.Context, imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(ctx, imageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}

	return url, nil
}

// DeleteImage deletes an image from S3
func (s *S3ImageService) DeleteImage(ctx context.Context, imageKey string) error {
	if imageKey == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(ctx, imageKey); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}
