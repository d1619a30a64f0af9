package llmclient

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// openaiProvider adapts an OpenAI-compatible chat completion endpoint to
// the Provider interface, for deployments that front the inference
// service with an OpenAI-shaped gateway instead of the bespoke
// `/v1/query` contract restProvider speaks.
type openaiProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider builds a Provider backed by an OpenAI-compatible API.
func NewOpenAIProvider(baseURL, apiKey, model string, tlsCfg TLSConfig, proxyCfg ProxyConfig) (Provider, error) {
	httpClient, err := newHTTPClient(tlsCfg, proxyConfigFromEnv(proxyCfg))
	if err != nil {
		return nil, err
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = httpClient

	return &openaiProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

func (p *openaiProvider) Submit(ctx context.Context, payload Payload) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: promptFromPayload(payload)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// promptFromPayload flattens a structured Payload into a single prompt
// string for providers that only accept chat messages, not clad's
// question/stdin/attachment/terminal shape.
func promptFromPayload(payload Payload) string {
	prompt := payload.Question
	if payload.Stdin != "" {
		prompt += "\n\n" + payload.Stdin
	}
	if payload.Attachment != nil {
		prompt += "\n\n" + payload.Attachment.Contents
	}
	if payload.Terminal != nil {
		prompt += "\n\n" + payload.Terminal.Output
	}
	return prompt
}
