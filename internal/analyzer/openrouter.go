package analyzer

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/BerylCAtieno/paper-genie/internal/utils"
)

// OpenRouterCompleter uses OpenRouter's OpenAI-compatible chat completions.
type OpenRouterCompleter struct {
	llm    llms.Model
	model  string
	logger *utils.Logger
}

func NewOpenRouterCompleter(apiKey, model, baseURL string, timeout time.Duration, logger *utils.Logger) (*OpenRouterCompleter, error) {
	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
		openai.WithBaseURL(strings.TrimRight(baseURL, "/")),
		openai.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenRouter client: %w", err)
	}

	return &OpenRouterCompleter{
		llm:    llm,
		model:  model,
		logger: logger,
	}, nil
}

func (o *OpenRouterCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	text, err := llms.GenerateFromSinglePrompt(ctx, o.llm, prompt)
	if err != nil {
		o.logger.Error("OpenRouter API error", "model", o.model, "error", err)
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}
