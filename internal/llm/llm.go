// Package llm selects and wraps the generative-model backends used by the
// pipeline stages. A backend is chosen once per pipeline run by its option
// name; the two supported options are interchangeable chat-completion APIs.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Backend issues one completion per call: a fixed system instruction plus
// the user payload, returning the raw completion text.
type Backend interface {
	Complete(ctx context.Context, systemPrompt, userPayload string) (string, error)
}

// Supported model options.
const (
	OptionOpenAI = "OpenAI"
	OptionGroq   = "Groq"
)

const (
	defaultOpenAIModel = "gpt-4o"
	defaultGroqModel   = "llama-3.3-70b-versatile"

	groqBaseURL = "https://api.groq.com/openai/v1"
)

// ErrUnsupportedBackend is returned for a model option outside the
// supported set. It is a configuration error, raised before any external
// call is made.
var ErrUnsupportedBackend = errors.New("unsupported model option")

// New returns a stateless client handle for the named backend. No
// memoization: credentials are read fresh from the environment on every
// call.
func New(modelOption string) (Backend, error) {
	switch modelOption {
	case OptionOpenAI:
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, errors.New("OPENAI_API_KEY not set")
		}
		model := os.Getenv("OPENAI_MODEL")
		if model == "" {
			model = defaultOpenAIModel
		}
		client := openai.NewClient(option.WithAPIKey(key))
		return &chatBackend{client: &client, model: model}, nil

	case OptionGroq:
		key := os.Getenv("GROQ_API_KEY")
		if key == "" {
			return nil, errors.New("GROQ_API_KEY not set")
		}
		model := os.Getenv("GROQ_MODEL")
		if model == "" {
			model = defaultGroqModel
		}
		// Groq speaks the OpenAI chat-completions protocol.
		client := openai.NewClient(option.WithAPIKey(key), option.WithBaseURL(groqBaseURL))
		return &chatBackend{client: &client, model: model}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, modelOption)
	}
}

type chatBackend struct {
	client *openai.Client
	model  string
}

func (b *chatBackend) Complete(ctx context.Context, systemPrompt, userPayload string) (string, error) {
	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: b.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPayload),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
