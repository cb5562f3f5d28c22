package pipeline

import (
	"errors"
	"strings"
)

var (
	// ErrMissingDocuments means files referenced by the input config are absent.
	ErrMissingDocuments = errors.New("missing input documents")
	// ErrNoDocumentsProcessed means every document in a run failed.
	ErrNoDocumentsProcessed = errors.New("no documents processed")
	// ErrNoPDFs means a batch directory holds no PDF files.
	ErrNoPDFs = errors.New("no pdf files found")
)

// ConfigError lists the input config fields that failed validation.
type ConfigError struct {
	Fields []string
}

func (e *ConfigError) Error() string {
	return "invalid input config: " + strings.Join(e.Fields, ", ")
}
