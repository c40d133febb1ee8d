package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/BerylCAtieno/paper-genie/internal/config"
	"github.com/BerylCAtieno/paper-genie/internal/utils"
)

// Completer sends one prompt to a generative model and returns its answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var ErrEmptyResponse = errors.New("model returned an empty response")

// APIError is a non-success answer from a model provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("model API returned status %d: %s", e.StatusCode, e.Message)
}

// New builds the completer selected by cfg.LLMProvider.
func New(cfg *config.Config, logger *utils.Logger) (Completer, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		return NewGeminiCompleter(cfg.GoogleAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, cfg.LLMTimeout, logger), nil
	case config.ProviderOpenRouter:
		return NewOpenRouterCompleter(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL, cfg.LLMTimeout, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
	}
}

type failureClass int

const (
	failureOther failureClass = iota
	failureAuth
	failureQuota
	failureNetwork
	failureMalformed
)

func classifyError(err error) failureClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return failureAuth
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return failureQuota
		}
	}

	if errors.Is(err, ErrEmptyResponse) {
		return failureMalformed
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return failureNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return failureNetwork
	}

	e := strings.ToLower(err.Error())
	switch {
	case strings.Contains(e, "401"), strings.Contains(e, "403"), strings.Contains(e, "api key"), strings.Contains(e, "unauthorized"):
		return failureAuth
	case strings.Contains(e, "quota"), strings.Contains(e, "429"), strings.Contains(e, "rate limit"), strings.Contains(e, "resource_exhausted"):
		return failureQuota
	case strings.Contains(e, "timeout"), strings.Contains(e, "connection refused"), strings.Contains(e, "no such host"):
		return failureNetwork
	case strings.Contains(e, "unmarshal"), strings.Contains(e, "decode"), strings.Contains(e, "empty"):
		return failureMalformed
	default:
		return failureOther
	}
}

// CompletionError converts any completer failure into the single
// user-facing error kind for the completion stage.
func CompletionError(err error) *utils.AppError {
	var msg string
	switch classifyError(err) {
	case failureAuth:
		msg = "The language model rejected the API credential."
	case failureQuota:
		msg = "The language model quota or rate limit was exceeded. Try again later."
	case failureNetwork:
		msg = "Could not reach the language model service."
	case failureMalformed:
		msg = "The language model returned an empty or malformed response."
	default:
		msg = "The language model request failed."
	}
	return utils.NewCompletionError(msg, err)
}
