// Package ai implements the external classification adapter. It sends
// batches of file descriptors to an OpenAI-compatible chat-completion
// endpoint (OpenRouter by default) and returns a filename-to-folder
// mapping. The adapter is strictly advisory: every failure degrades to
// an empty mapping and the organizer falls back to the extension rules.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/larsvincent/ordna/pkg/ordna/logging"
	"github.com/larsvincent/ordna/pkg/ordna/rules"
	"github.com/larsvincent/ordna/pkg/ordna/types"
)

const (
	// DefaultBaseURL is the OpenRouter chat-completions API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "arcee-ai/trinity-large-preview:free"

	// BatchSize is the maximum number of file descriptors per request.
	BatchSize = 25

	// DefaultTimeout bounds a single classification request.
	DefaultTimeout = 30 * time.Second

	// batchInterval spaces consecutive requests to respect free-tier
	// rate limits.
	batchInterval = 500 * time.Millisecond
)

// Config holds the settings for the external classifier.
type Config struct {
	// APIKey authenticates against the endpoint. Required.
	APIKey string

	// Model is the model identifier. Defaults to DefaultModel.
	Model string

	// BaseURL overrides the endpoint. Defaults to DefaultBaseURL.
	BaseURL string

	// Timeout bounds each request. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Classifier talks to the external classification service.
type Classifier struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
}

// New creates a Classifier from the given config, filling in defaults
// for the model, endpoint, and timeout.
func New(cfg Config) *Classifier {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Classifier{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(rate.Every(batchInterval), 1),
	}
}

// Classify maps file names to destination folders using the external
// service. Files are sent in batches of at most BatchSize descriptors.
// A failed batch contributes nothing; the run always continues with
// whatever the remaining batches returned. Sentinel "Misc" answers and
// paths that do not survive sanitization are dropped, so every entry
// in the result is actionable.
func (c *Classifier) Classify(ctx context.Context, files []types.FileEntry, granularity Granularity) map[string]string {
	logger := logging.Get("ai")
	mapping := make(map[string]string)

	for start := 0; start < len(files); start += BatchSize {
		end := start + BatchSize
		if end > len(files) {
			end = len(files)
		}

		if err := c.limiter.Wait(ctx); err != nil {
			logger.Warn("classification interrupted", "error", err)
			return mapping
		}

		batch, err := c.classifyBatch(ctx, files[start:end], granularity)
		if err != nil {
			logger.Warn("classification batch failed", "files", end-start, "error", err)
			continue
		}

		for name, dest := range batch {
			if strings.EqualFold(dest, rules.MiscName) {
				continue
			}
			clean := SanitizePath(dest)
			if clean == "" || strings.EqualFold(clean, rules.MiscName) {
				continue
			}
			mapping[name] = clean
		}
	}

	if len(mapping) > 0 {
		logger.Debug("external classification complete", "classified", len(mapping), "total", len(files))
	}
	return mapping
}

// classifyBatch sends one request and parses the JSON mapping out of
// the response content.
func (c *Classifier) classifyBatch(ctx context.Context, files []types.FileEntry, granularity Granularity) (map[string]string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(files, granularity),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request classification: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("response contained no choices")
	}

	content := ExtractJSON(resp.Choices[0].Message.Content)

	var mapping map[string]string
	if err := json.Unmarshal([]byte(content), &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse classification response: %w", err)
	}
	return mapping, nil
}

// ExtractJSON unwraps response content that arrived inside a markdown
// code fence, tolerating a leading "json" language tag. Content without
// fences is returned trimmed.
func ExtractJSON(content string) string {
	if i := strings.Index(content, "```"); i >= 0 {
		content = content[i+3:]
		if j := strings.Index(content, "```"); j >= 0 {
			content = content[:j]
		}
		content = strings.TrimPrefix(strings.TrimSpace(content), "json")
	}
	return strings.TrimSpace(content)
}
