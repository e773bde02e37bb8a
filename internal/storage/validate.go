package storage

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"wavechat/internal/pkg/errs"
)

const (
	// MaxUploadSizeMB is the maximum allowed file size in megabytes.
	MaxUploadSizeMB = 10

	// MaxUploadSize is the maximum allowed file size in bytes.
	MaxUploadSize = MaxUploadSizeMB * 1024 * 1024

	// DownloadURLDuration is the validity window for presigned download URLs.
	DownloadURLDuration = 5 * time.Minute
)

// ErrObjectNotFound is returned when a requested object key does not exist.
var ErrObjectNotFound = errors.New("file not found")

// AllowedMIMETypes defines the set of permitted MIME types for uploads.
var AllowedMIMETypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"image/gif":       {},
	"application/pdf": {},
}

// ExtToMIME maps file extensions to their corresponding MIME types.
var ExtToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
}

// ValidateFileSize checks that the declared file size is positive and within
// the upload limit.
func ValidateFileSize(fileSize int64) *errs.CustomError {
	if fileSize <= 0 {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if fileSize > MaxUploadSize {
		return errs.NewError(errs.ErrFileSizeTooLarge)
	}

	return nil
}

// ValidateFileType checks that the file name extension and MIME type are
// allowed and agree with each other.
func ValidateFileType(fileName string, mimeType string) *errs.CustomError {
	lowerMimeType := strings.ToLower(mimeType)

	if _, ok := AllowedMIMETypes[lowerMimeType]; !ok {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" || len(ext) < 2 {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	expectedMIME, ok := ExtToMIME[ext]
	if !ok {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	if expectedMIME != lowerMimeType {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	return nil
}
