package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/khoahotran/devprofile/internal/application/service"
	"github.com/khoahotran/devprofile/internal/config"
	"github.com/khoahotran/devprofile/pkg/logger"
)

const maxBioTokens = 300

type openAILLMAdapter struct {
	client *openai.Client
	model  string
	log    logger.Logger
}

// NewOpenAILLMAdapter talks to any OpenAI-compatible chat completion endpoint.
func NewOpenAILLMAdapter(cfg config.Config, log logger.Logger) (service.LLMService, error) {
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("llm api key is not configured")
	}

	clientCfg := openai.DefaultConfig(cfg.LLM.APIKey)
	if cfg.LLM.BaseURL != "" {
		clientCfg.BaseURL = cfg.LLM.BaseURL
	}

	log.Info("LLM Adapter initialized", zap.String("base_url", clientCfg.BaseURL), zap.String("model", cfg.LLM.Model))
	return &openAILLMAdapter{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.LLM.Model,
		log:    log,
	}, nil
}

func (a *openAILLMAdapter) GenerateChatResponse(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:     a.model,
		MaxTokens: maxBioTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Stream: false,
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm returned no chat choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("llm returned an empty message")
	}
	return content, nil
}
