package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	// DefaultOpenAIModel is used when settings carry no model choice.
	DefaultOpenAIModel = "gpt-4o-mini"

	openAITimeout     = 60 * time.Second
	generateMaxTokens = 2000
	generateTemp      = 0.7
)

var openAIModels = []string{
	"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini", "gpt-4.1", "o3", "o3-pro", "o4-mini",
}

// OpenAIProvider is the chat-completion-style vendor, driven through
// the official SDK.
type OpenAIProvider struct {
	httpClient *http.Client
}

// NewOpenAIProvider creates the OpenAI variant.
func NewOpenAIProvider() *OpenAIProvider {
	return &OpenAIProvider{
		httpClient: &http.Client{Timeout: openAITimeout},
	}
}

func (p *OpenAIProvider) Name() string { return ProviderOpenAI }

func (p *OpenAIProvider) Models() []string {
	return append([]string(nil), openAIModels...)
}

func (p *OpenAIProvider) DefaultModel() string { return DefaultOpenAIModel }

// GenerateCards sends a system+user chat completion and parses the
// first choice as a flashcard array.
func (p *OpenAIProvider) GenerateCards(ctx context.Context, req Request) ([]RawCard, error) {
	// The key is per-call state (it lives in the credential store and
	// can change at runtime), so the SDK client is built per request.
	client := openai.NewClient(
		option.WithAPIKey(req.APIKey),
		option.WithHTTPClient(p.httpClient),
	)

	model := req.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(generateTemp),
		MaxTokens:   openai.Int(generateMaxTokens),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			message := apiErr.Message
			if message == "" {
				message = apiErr.Error()
			}
			return nil, &APIError{Provider: ProviderOpenAI, StatusCode: apiErr.StatusCode, Message: message}
		}
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResult
	}
	return ParseFlashcardArray(resp.Choices[0].Message.Content)
}
