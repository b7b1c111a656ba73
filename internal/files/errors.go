package files

import "errors"

var (
	ErrFileNotFound     = errors.New("file not found")
	ErrPermissionDenied = errors.New("permission denied")
	// ErrIntegrityFailed blocks delivery when the stored digest no longer
	// matches the bytes on disk. Never retried automatically.
	ErrIntegrityFailed = errors.New("file integrity check failed")
	ErrInvalidType     = errors.New("file type not allowed")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrFileEmpty       = errors.New("file is empty")
	ErrUnsafePath      = errors.New("unsafe file path")
)
