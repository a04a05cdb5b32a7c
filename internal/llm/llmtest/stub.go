// Package llmtest provides an in-memory llm.Client for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/jonathan/hiring-bias-game/internal/llm"
)

// ErrUnavailable is returned by Unavailable clients.
var ErrUnavailable = errors.New("llmtest: provider unavailable")

// Stub is a scripted llm.Client. Nil funcs return ErrUnavailable.
type Stub struct {
	ContentFunc func(ctx context.Context, req llm.Request) (string, error)
	JSONFunc    func(ctx context.Context, req llm.Request) (string, error)

	mu       sync.Mutex
	requests []llm.Request
	closed   bool
}

// Unavailable returns a Stub whose every call fails.
func Unavailable() *Stub {
	return &Stub{}
}

// Text returns a Stub that answers free-text calls with text.
func Text(text string) *Stub {
	return &Stub{ContentFunc: func(context.Context, llm.Request) (string, error) { return text, nil }}
}

// JSON returns a Stub that answers JSON calls with body.
func JSON(body string) *Stub {
	return &Stub{JSONFunc: func(context.Context, llm.Request) (string, error) { return body, nil }}
}

// GenerateContent implements llm.Client.
func (s *Stub) GenerateContent(ctx context.Context, req llm.Request) (string, error) {
	s.record(req)
	if s.ContentFunc == nil {
		return "", ErrUnavailable
	}
	return s.ContentFunc(ctx, req)
}

// GenerateJSON implements llm.Client.
func (s *Stub) GenerateJSON(ctx context.Context, req llm.Request) (string, error) {
	s.record(req)
	if s.JSONFunc == nil {
		return "", ErrUnavailable
	}
	return s.JSONFunc(ctx, req)
}

// GetModel implements llm.Client.
func (s *Stub) GetModel(tier llm.ModelTier) string {
	return "stub-" + string(tier)
}

// Close implements llm.Client.
func (s *Stub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Requests returns a copy of every request received so far.
func (s *Stub) Requests() []llm.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]llm.Request(nil), s.requests...)
}

// Closed reports whether Close was called.
func (s *Stub) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Stub) record(req llm.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
}
