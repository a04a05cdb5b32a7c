package advisor

import "errors"

var (
	// ErrInvalidInput marks a request the advisor cannot answer at all.
	ErrInvalidInput = errors.New("invalid advisor input")
	// ErrNoProvider is returned internally when no LLM client is configured.
	ErrNoProvider = errors.New("no LLM provider configured")
)
