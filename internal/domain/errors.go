package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error the stages return matches exactly one of them via errors.Is.
var (
	// ErrValidation signals unacceptable user input.
	ErrValidation = errors.New("validation error")
	// ErrEncoding signals an image that could not be converted to the transport encoding.
	ErrEncoding = errors.New("encoding error")
	// ErrNavigationState signals a results request without a prior submission.
	ErrNavigationState = errors.New("navigation state error")
	// ErrRequest signals a failed product search call.
	ErrRequest = errors.New("request error")
)

var (
	// ErrInvalidFileType signals a candidate whose media type is not image/*.
	ErrInvalidFileType = fmt.Errorf("%w: invalid file type", ErrValidation)
	// ErrNoFileSelected signals a submit without a held image.
	ErrNoFileSelected = fmt.Errorf("%w: no file selected", ErrValidation)
	// ErrFileTooLarge signals a candidate over the upload limit.
	ErrFileTooLarge = fmt.Errorf("%w: file too large", ErrValidation)

	// ErrNoBundle signals an empty handoff slot.
	ErrNoBundle = fmt.Errorf("%w: no search bundle", ErrNavigationState)

	// ErrSearchRequest signals a transport failure or a non-2xx status.
	ErrSearchRequest = fmt.Errorf("%w: search request failed", ErrRequest)
	// ErrMalformedResponse signals a 2xx body without the expected result path.
	ErrMalformedResponse = fmt.Errorf("%w: malformed search response", ErrRequest)
)

// StatusError wraps ErrSearchRequest with the upstream HTTP status.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: status %d: %s", ErrSearchRequest.Error(), e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s: status %d", ErrSearchRequest.Error(), e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrSearchRequest }
