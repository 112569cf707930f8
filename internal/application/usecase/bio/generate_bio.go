package bio

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/devprofile/internal/application/service"
	"github.com/khoahotran/devprofile/internal/domain/profile"
	"github.com/khoahotran/devprofile/pkg/apperror"
	"github.com/khoahotran/devprofile/pkg/logger"
)

const (
	SourceAI       = "ai"
	SourceFallback = "fallback"

	defaultTimeout = 15 * time.Second
)

var tracer = otel.Tracer("bio_usecase")

// GenerateBioUseCase drafts a first-person bio. A nil generator means no
// model is configured and every request uses the templates.
type GenerateBioUseCase struct {
	generator service.LLMService
	timeout   time.Duration
	logger    logger.Logger
}

func NewGenerateBioUseCase(generator service.LLMService, timeout time.Duration, log logger.Logger) *GenerateBioUseCase {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &GenerateBioUseCase{
		generator: generator,
		timeout:   timeout,
		logger:    log,
	}
}

type GenerateBioInput struct {
	Profile *profile.Aggregate
	Tone    string
}

type GenerateBioOutput struct {
	Bio    string
	Source string
}

// Execute never fails once a profile is given: model errors, timeouts and
// empty replies all fall back to the template for the tone.
func (uc *GenerateBioUseCase) Execute(ctx context.Context, input GenerateBioInput) (*GenerateBioOutput, error) {
	if input.Profile == nil {
		return nil, apperror.NewMissingField("profile")
	}

	ctx, span := tracer.Start(ctx, "GenerateBio")
	defer span.End()

	tone := ParseTone(input.Tone)
	span.SetAttributes(attribute.String("bio.tone", string(tone)))

	if uc.generator == nil {
		uc.logger.Debug("No text generator configured, using fallback bio")
		return uc.fallback(input.Profile, tone), nil
	}

	text, err := uc.generate(ctx, buildPrompt(input.Profile, tone))
	if err != nil {
		uc.logger.WithContext(ctx).Warn("Bio generation failed, using fallback", zap.Error(err))
		span.RecordError(err)
		return uc.fallback(input.Profile, tone), nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		uc.logger.WithContext(ctx).Warn("Bio generation returned empty text, using fallback")
		return uc.fallback(input.Profile, tone), nil
	}

	span.SetAttributes(attribute.String("bio.source", SourceAI))
	return &GenerateBioOutput{Bio: text, Source: SourceAI}, nil
}

type generation struct {
	text string
	err  error
}

// generate returns when the model answers or the timeout fires, whichever
// comes first, even if the generator ignores its context.
func (uc *GenerateBioUseCase) generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	done := make(chan generation, 1)
	go func() {
		text, err := uc.generator.GenerateChatResponse(callCtx, prompt)
		done <- generation{text: text, err: err}
	}()

	select {
	case res := <-done:
		return res.text, res.err
	case <-callCtx.Done():
		return "", callCtx.Err()
	}
}

func (uc *GenerateBioUseCase) fallback(p *profile.Aggregate, tone Tone) *GenerateBioOutput {
	return &GenerateBioOutput{Bio: Fallback(p, tone), Source: SourceFallback}
}
