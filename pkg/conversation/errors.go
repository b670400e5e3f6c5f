package conversation

import (
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyCompletion is wrapped by a ProviderError when Azure answers without
// any completion choices, or with a choice that has no content.
var ErrEmptyCompletion = errors.New("completion returned no choices")

// ProviderError is returned for any failed call to the completion provider:
// transport failures, authentication and quota errors, and malformed or
// empty responses.
type ProviderError struct {
	// StatusCode is the HTTP status Azure answered with, or 0 when the
	// request never got a response.
	StatusCode int

	// Code is the provider's error code when one was surfaced (e.g.,
	// "429" or "content_filter").
	Code string

	Err error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion provider error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("completion provider error: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// newProviderError classifies err, pulling status and code out of the
// go-openai error types when present.
func newProviderError(err error) *ProviderError {
	pe := &ProviderError{Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		pe.StatusCode = apiErr.HTTPStatusCode
		if apiErr.Code != nil {
			pe.Code = fmt.Sprint(apiErr.Code)
		}
	case errors.As(err, &reqErr):
		pe.StatusCode = reqErr.HTTPStatusCode
	}

	return pe
}
