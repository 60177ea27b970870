package models

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is a deployment error such as a missing credential. Never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrExtraction means the bytes do not match the claimed format well enough to parse.
	ErrExtraction = errors.New("extraction error")

	// ErrUnsupportedFormat is returned for format tags no extractor handles.
	// It matches ErrExtraction as well.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported format", ErrExtraction)

	// ErrEmbeddingProvider covers every failure of the remote embedding call,
	// including responses that do not line up with the request.
	ErrEmbeddingProvider = errors.New("embedding provider error")
)
