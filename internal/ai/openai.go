package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultMaxTokens = 4096

// OpenAIClient работает с любым OpenAI-совместимым chat-completions API
// (OpenAI, Groq) через официальный SDK.
type OpenAIClient struct {
	client    openai.Client
	apiKey    string
	model     string
	maxTokens int
}

// NewOpenAIClient создает клиент OpenAI-совместимого провайдера.
func NewOpenAIClient(apiKey, baseURL, model string, timeout time.Duration, maxTokens int) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(timeout),
	}
	if trimmed := strings.TrimRight(baseURL, "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}

	return &OpenAIClient{
		client:    openai.NewClient(opts...),
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
	}
}

// Chat отправляет сообщения провайдеру и возвращает текст ответа и сырой ответ API.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message) (string, []byte, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", nil, errors.New("openai api key is missing")
	}

	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
		Temperature: openai.Float(0.2),
		MaxTokens:   openai.Int(int64(resolveMaxTokens(c.maxTokens))),
	}

	for _, message := range messages {
		text := strings.TrimSpace(message.Content)
		if text == "" {
			continue
		}

		switch strings.ToLower(strings.TrimSpace(message.Role)) {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(text))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(text))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(text))
		}
	}

	if len(params.Messages) == 0 {
		return "", nil, errors.New("chat request has no content")
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return "", nil, ErrRateLimited
		}
		return "", nil, err
	}

	raw := []byte(completion.RawJSON())
	if len(completion.Choices) == 0 {
		return "", raw, errors.New("chat response missing choices")
	}

	return completion.Choices[0].Message.Content, raw, nil
}
