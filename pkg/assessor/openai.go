package assessor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig defines configuration options for the OpenAI-backed assessor.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIClient implements Client against the OpenAI chat completion API, for
// deployments that have no dedicated assessor backend. It surfaces provider
// HTTP failures through RawResponse the same way the wire client does, so
// downstream classification stays uniform.
type OpenAIClient struct {
	client *openai.Client
	cfg    OpenAIConfig
	logger zerolog.Logger
}

// NewOpenAIClient builds the OpenAI-backed assessor.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}

	return &OpenAIClient{
		client: openai.NewClient(cfg.APIKey),
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "assessor_openai").Logger(),
	}, nil
}

// Assess grades one unit via chat completion with a JSON response format.
func (o *OpenAIClient) Assess(ctx context.Context, req Request) (*RawResponse, error) {
	request := openai.ChatCompletionRequest{
		Model:       o.cfg.Model,
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: assessorSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildAssessorPrompt(req),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, request)
	assessorDuration.WithLabelValues("openai").Observe(time.Since(start).Seconds())
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
			return &RawResponse{StatusCode: apiErr.HTTPStatusCode, Body: []byte(apiErr.Message)}, nil
		}
		assessorTransportErrors.WithLabelValues("openai").Inc()
		return nil, fmt.Errorf("openai assess: %w", err)
	}

	if len(resp.Choices) == 0 {
		assessorTransportErrors.WithLabelValues("openai").Inc()
		return nil, fmt.Errorf("no choices returned from openai")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	return &RawResponse{StatusCode: http.StatusOK, Body: []byte(content)}, nil
}

func assessorSystemPrompt() string {
	return "You are an automated marker for student work. Compare the student response against the reference answer and re" +
		"spond with a JSON object containing completeness, accuracy and spag keys, each an object with a numeric score and " +
		"a short reasoning string. Score spag on spelling, punctuation and grammar only."
}

func buildAssessorPrompt(req Request) string {
	builder := strings.Builder{}
	builder.WriteString("# Task Type\n")
	builder.WriteString(req.TaskType)
	builder.WriteString("\n\n## Reference Answer\n")
	builder.WriteString(req.Reference)
	builder.WriteString("\n\n## Blank Template\n")
	builder.WriteString(req.Template)
	builder.WriteString("\n\n## Student Response\n")
	builder.WriteString(req.StudentResponse)
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}
