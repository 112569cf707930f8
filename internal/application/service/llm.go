package service

import (
	"context"
)

// LLMService turns a prompt into generated text.
type LLMService interface {
	GenerateChatResponse(ctx context.Context, prompt string) (string, error)
}
