package services

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	KindConfiguration     ErrorKind = "configuration_error"
	KindInvalidInput      ErrorKind = "invalid_input"
	KindFileTooLarge      ErrorKind = "file_too_large"
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	KindCorruptFile       ErrorKind = "corrupt_file"
	KindEmptyExtraction   ErrorKind = "empty_extraction"
	KindProvider          ErrorKind = "provider_error"
	KindAuth              ErrorKind = "auth_error"
)

// PipelineError carries a client-safe Message; Cause stays server side.
type PipelineError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

func newPipelineError(kind ErrorKind, message string, cause error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind of a pipeline error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

func ErrConfiguration(cause error) error {
	return newPipelineError(KindConfiguration, "Server configuration is incomplete. Contact the administrator.", cause)
}

func ErrInvalidInput(message string) error {
	return newPipelineError(KindInvalidInput, message, nil)
}

func ErrFileTooLarge(size, limit int64) error {
	return newPipelineError(KindFileTooLarge,
		fmt.Sprintf("File too large: %d bytes. Max size: %d bytes", size, limit), nil)
}

func ErrUnsupportedFormat(received string) error {
	if received == "" {
		received = "unknown"
	}
	return newPipelineError(KindUnsupportedFormat,
		fmt.Sprintf("Unsupported format. Use PDF or DOCX files. Received type: %s", received), nil)
}

func ErrCorruptFile(format string, cause error) error {
	return newPipelineError(KindCorruptFile,
		fmt.Sprintf("Failed to read %s file. Check whether the file is corrupted.", strings.ToUpper(format)), cause)
}

func ErrEmptyExtraction(format string) error {
	return newPipelineError(KindEmptyExtraction,
		fmt.Sprintf("Could not extract any text from the %s file. Check that it contains text.", strings.ToUpper(format)), nil)
}

// Phrases the provider uses when a key has been flagged as leaked. The second
// one is the Portuguese wording returned for pt-BR projects.
var leakedKeyPhrases = []string{"leaked", "reportada como vazada"}

var authPhrases = []string{"api key", "api_key_invalid", "permission_denied", "unauthenticated"}

// ClassifyProviderError maps a failed model call onto the auth/provider kinds.
// Errors that are already pipeline errors pass through untouched.
func ClassifyProviderError(err error) error {
	if err == nil {
		return nil
	}
	var pe *PipelineError
	if errors.As(err, &pe) {
		return err
	}

	msg := strings.ToLower(err.Error())
	for _, phrase := range leakedKeyPhrases {
		if strings.Contains(msg, phrase) {
			return newPipelineError(KindAuth,
				"Your API key was reported as leaked. Generate a new key in Google AI Studio and update your environment configuration.", err)
		}
	}

	if code := providerStatusCode(err); code == 401 || code == 403 {
		return newPipelineError(KindAuth, "Authentication with the model provider failed. Check the server configuration.", err)
	}
	for _, phrase := range authPhrases {
		if strings.Contains(msg, phrase) {
			return newPipelineError(KindAuth, "Authentication with the model provider failed. Check the server configuration.", err)
		}
	}

	return newPipelineError(KindProvider, providerMessage(err), err)
}

// providerMessage keeps provider messages that are safe to show and hides
// anything that could echo request details back to the client.
func providerMessage(err error) string {
	var apiErr *ProviderAPIError
	if errors.As(err, &apiErr) && apiErr.Message != "" && !strings.Contains(apiErr.Message, "key=") {
		return apiErr.Message
	}
	if errors.Is(err, ErrUnexpectedReply) {
		return "The model returned a response in an unexpected format. Try again later."
	}
	return "The model provider request failed. Try again later."
}
