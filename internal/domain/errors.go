package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidInput   = errors.New("invalid input")
	ErrFileTooLarge   = errors.New("file too large")

	// Editor pipeline.
	ErrAuthRequired         = errors.New("sign in required")
	ErrMalformedPasteData   = errors.New("malformed paste data")
	ErrSignedLocation       = errors.New("signed upload location request failed")
	ErrTransfer             = errors.New("upload transfer failed")
	ErrPartialUploadFailure = errors.New("some images failed to upload")
	ErrSubmission           = errors.New("article submission failed")
	ErrBusy                 = errors.New("save already in progress")
	ErrCanceled             = errors.New("save abandoned")
)
