package editor

import (
	"errors"
	"fmt"

	"github.com/msomdec/inkwell/internal/domain"
)

// PartialUploadFailureError reports that at least one staged image failed
// to upload during a save attempt. It matches domain.ErrPartialUploadFailure.
type PartialUploadFailureError struct {
	Failed   int
	Total    int
	Failures []UploadOutcome
}

func (e *PartialUploadFailureError) Error() string {
	noun := "images"
	if e.Total == 1 {
		noun = "image"
	}
	return fmt.Sprintf("%d of %d %s failed to upload", e.Failed, e.Total, noun)
}

func (e *PartialUploadFailureError) Is(target error) bool {
	return target == domain.ErrPartialUploadFailure
}

// Unwrap exposes the individual upload errors.
func (e *PartialUploadFailureError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, o := range e.Failures {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errs
}

// SubmissionError reports that the article collaborator rejected a save
// after reconciliation succeeded. It matches domain.ErrSubmission.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit article: %v", e.Err)
}

func (e *SubmissionError) Is(target error) bool {
	return target == domain.ErrSubmission
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// UserMessage turns a save or staging error into text fit for the author.
func UserMessage(err error) string {
	var partial *PartialUploadFailureError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &partial):
		return partial.Error() + ". Your content is unchanged; try saving again."
	case errors.Is(err, domain.ErrBusy):
		return "A save is already in progress."
	case errors.Is(err, domain.ErrAuthRequired):
		return "Please sign in to add images and save articles."
	case errors.Is(err, domain.ErrFileTooLarge):
		return "That image is too large."
	case errors.Is(err, domain.ErrSubmission):
		return "The article could not be saved. Your images are uploaded; try saving again."
	case errors.Is(err, domain.ErrCanceled):
		return "The save was abandoned."
	case errors.Is(err, domain.ErrInvalidInput):
		return "Please check the article fields: " + err.Error()
	default:
		return "Something went wrong. Please try again."
	}
}
