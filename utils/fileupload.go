package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	// MaxFileSize is 10MB in bytes
	MaxFileSize = 10 * 1024 * 1024
	// AttachmentPrefix is the bucket folder holding order reference images
	AttachmentPrefix = "design-requests"
)

// allowedImageTypes maps accepted extensions to the content type stored with the object
var allowedImageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateImageFile validates the uploaded file format and size
func ValidateImageFile(fileHeader *multipart.FileHeader) error {
	if fileHeader == nil {
		return &FileUploadError{
			Code:    "NO_FILE",
			Message: "No image file provided",
		}
	}

	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	if fileHeader.Size == 0 {
		return &FileUploadError{
			Code:    "EMPTY_FILE",
			Message: "Uploaded file is empty",
		}
	}

	if _, ok := ImageContentType(fileHeader.Filename); !ok {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only PNG and JPEG files are allowed",
		}
	}

	return nil
}

// ImageContentType returns the content type for an accepted image filename
func ImageContentType(filename string) (string, bool) {
	ct, ok := allowedImageTypes[strings.ToLower(filepath.Ext(filename))]
	return ct, ok
}

// SanitizeFilename reduces a client supplied filename to a safe object name
func SanitizeFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	base = unsafeFilenameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return "image"
	}
	return base
}

// BuildAttachmentKey returns the object key for an order's reference image
// Format: design-requests/{humanCode}/{timestamp}_{filename}
func BuildAttachmentKey(humanCode, filename string, at time.Time) string {
	return fmt.Sprintf("%s/%s/%d_%s", AttachmentPrefix, humanCode, at.Unix(), SanitizeFilename(filename))
}
