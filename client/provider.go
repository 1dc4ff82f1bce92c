package client

import (
	"context"
	"errors"

	"github.com/1broseidon/director/models"
	"github.com/1broseidon/director/providers/googlegemini"
	"github.com/1broseidon/director/providers/googlegenai"
)

// geminiProvider pairs the two Gemini SDKs: generative-ai-go for listing and
// planning, genai for image generation with image config.
type geminiProvider struct {
	planning *googlegemini.GoogleGeminiProvider
	image    *googlegenai.GoogleGenAIProvider
}

// NewGeminiProvider is the default ProviderFactory.
func NewGeminiProvider(ctx context.Context, apiKey string) (Provider, error) {
	planning, err := googlegemini.NewGoogleGeminiProvider(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	image, err := googlegenai.NewGoogleGenAIProvider(ctx, apiKey)
	if err != nil {
		planning.Close()
		return nil, err
	}
	return &geminiProvider{planning: planning, image: image}, nil
}

func (p *geminiProvider) ListModels(ctx context.Context) ([]string, error) {
	return p.planning.ListModels(ctx)
}

func (p *geminiProvider) GenerateStructured(ctx context.Context, req models.StructuredRequest) (string, error) {
	return p.planning.GenerateStructured(ctx, req)
}

func (p *geminiProvider) GenerateContent(ctx context.Context, model string, parts []models.Part, cfg models.GenerationConfig) (*models.ContentResponse, error) {
	return p.image.GenerateContent(ctx, model, parts, cfg)
}

func (p *geminiProvider) Close() error {
	return errors.Join(p.planning.Close(), p.image.Close())
}
