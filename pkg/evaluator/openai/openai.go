// Package openai implements ports.Evaluator on top of an OpenAI-compatible
// chat completion endpoint.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const DefaultModel = "gpt-4o-mini"

var (
	// ErrNoChoices is returned when the endpoint answers without a completion.
	ErrNoChoices = errors.New("openai returned no choices")
	// ErrUnparsableScore is returned when the rating reply holds no number.
	ErrUnparsableScore = errors.New("no score in model reply")
)

const ratingSystemPrompt = "You grade prompts for an image classification model. " +
	"Reply with a single number from 1 to 10, where 10 is a prompt that needs no improvement."

const rewriteSystemPrompt = "You rewrite prompts for an image classification model so they score higher. " +
	"Reply with one rewritten prompt per line and nothing else."

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// Evaluator scores and rewrites prompts with a chat model.
type Evaluator struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

// Option configures the Evaluator.
type Option func(*settings)

type settings struct {
	baseURL     string
	model       string
	temperature float32
	logger      *slog.Logger
}

// WithBaseURL points the client at an OpenAI-compatible server.
func WithBaseURL(url string) Option {
	return func(s *settings) { s.baseURL = url }
}

// WithModel selects the chat model (default gpt-4o-mini).
func WithModel(model string) Option {
	return func(s *settings) {
		if model != "" {
			s.model = model
		}
	}
}

// WithTemperature sets the sampling temperature used for rewrites.
func WithTemperature(t float32) Option {
	return func(s *settings) { s.temperature = t }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an Evaluator authenticated with apiKey.
func New(apiKey string, opts ...Option) *Evaluator {
	s := settings{
		model:       DefaultModel,
		temperature: 0.7,
		logger:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&s)
	}

	cfg := openai.DefaultConfig(apiKey)
	if s.baseURL != "" {
		cfg.BaseURL = s.baseURL
	}
	return &Evaluator{
		client:      openai.NewClientWithConfig(cfg),
		model:       s.model,
		temperature: s.temperature,
		logger:      s.logger,
	}
}

// Evaluate asks the model for a 1-10 rating and parses the first number of its reply.
func (e *Evaluator) Evaluate(ctx context.Context, prompt string) (float64, error) {
	reply, err := e.complete(ctx, ratingSystemPrompt, prompt, 0)
	if err != nil {
		return 0, err
	}
	return parseScore(reply)
}

// GenerateImprovements asks the model for n rewrites, one per line.
// Blank lines and list markers are dropped; extra lines are kept.
func (e *Evaluator) GenerateImprovements(ctx context.Context, prompt string, score float64, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	user := fmt.Sprintf("Prompt (scored %.1f/10):\n%s\n\nWrite %d improved versions.", score, prompt, n)
	reply, err := e.complete(ctx, rewriteSystemPrompt, user, e.temperature)
	if err != nil {
		return nil, err
	}
	return parseLines(reply), nil
}

func (e *Evaluator) complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
	}

	e.logger.Debug("chat completion", "model", e.model)
	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	e.logger.Debug("chat completion received", "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

func parseScore(reply string) (float64, error) {
	m := numberPattern.FindString(reply)
	if m == "" {
		return 0, fmt.Errorf("%w: %q", ErrUnparsableScore, reply)
	}
	return strconv.ParseFloat(m, 64)
}

func parseLines(reply string) []string {
	var out []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•0123456789.) ")
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
