package inference

import (
	"context"
	"io"

	"github.com/sashabaranov/go-openai"

	"github.com/cyrene-ai/cyrene-server/internal/domain/conversation"
)

// Provider talks to an OpenAI-compatible chat completion endpoint and exposes
// it as a token stream source.
type Provider struct {
	client *openai.Client
}

// NewProvider builds a client against the given base URL.
func NewProvider(baseURL, apiKey string) *Provider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Provider{client: openai.NewClientWithConfig(cfg)}
}

// Open starts a streaming completion for the request.
func (p *Provider) Open(ctx context.Context, req conversation.ChatRequest) (conversation.TokenStream, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, turn := range req.History {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    providerRole(turn.Role),
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})

	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      true,
	})
	if err != nil {
		return nil, err
	}
	return &tokenStream{inner: stream}, nil
}

func providerRole(role conversation.Role) string {
	if role == conversation.RoleAssistant {
		return openai.ChatMessageRoleAssistant
	}
	return openai.ChatMessageRoleUser
}

type tokenStream struct {
	inner *openai.ChatCompletionStream
}

// Recv returns the next content delta. io.EOF marks the natural end of the
// completion.
func (s *tokenStream) Recv() (string, error) {
	for {
		resp, err := s.inner.Recv()
		if err != nil {
			if err == io.EOF {
				return "", io.EOF
			}
			return "", err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		return resp.Choices[0].Delta.Content, nil
	}
}

func (s *tokenStream) Close() error {
	return s.inner.Close()
}

var _ conversation.StreamSource = (*Provider)(nil)
