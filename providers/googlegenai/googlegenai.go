// Package googlegenai implements image generation on the Gemini API through the google.golang.org/genai SDK.
package googlegenai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/1broseidon/director/models"
	"google.golang.org/genai"
)

const providerName = "googlegenai"

// GoogleGenAIProvider generates images with Gemini image models
type GoogleGenAIProvider struct {
	client *genai.Client
}

// NewGoogleGenAIProvider creates a new provider. An empty apiKey falls back to GEMINI_API_KEY.
func NewGoogleGenAIProvider(ctx context.Context, apiKey string) (*GoogleGenAIProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GoogleGenAIProvider{client: client}, nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (p *GoogleGenAIProvider) Close() error {
	return nil
}

// GenerateContent sends parts to model and returns every inline blob and the concatenated text
func (p *GoogleGenAIProvider) GenerateContent(ctx context.Context, model string, parts []models.Part, cfg models.GenerationConfig) (*models.ContentResponse, error) {
	contents := []*genai.Content{genai.NewContentFromParts(toParts(parts), genai.RoleUser)}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, buildConfig(cfg))
	if err != nil {
		return nil, wrapError(err)
	}
	return fromResponse(resp), nil
}

func buildConfig(cfg models.GenerationConfig) *genai.GenerateContentConfig {
	imageConfig := &genai.ImageConfig{AspectRatio: cfg.AspectRatio}
	if cfg.ImageSize != "" {
		imageConfig.ImageSize = cfg.ImageSize
	}

	config := &genai.GenerateContentConfig{
		ImageConfig:        imageConfig,
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
	if cfg.SafetyThreshold != "" {
		config.SafetySettings = safetySettings(genai.HarmBlockThreshold(cfg.SafetyThreshold))
	}
	return config
}

func safetySettings(threshold genai.HarmBlockThreshold) []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, &genai.SafetySetting{Category: c, Threshold: threshold})
	}
	return settings
}

func toParts(parts []models.Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, part := range parts {
		if part.Inline != nil {
			out = append(out, genai.NewPartFromBytes(part.Inline.Data, part.Inline.MIMEType))
			continue
		}
		out = append(out, genai.NewPartFromText(part.Text))
	}
	return out
}

func fromResponse(resp *genai.GenerateContentResponse) *models.ContentResponse {
	out := &models.ContentResponse{}
	if resp == nil {
		return out
	}

	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil {
				continue
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				out.Parts = append(out.Parts, models.Part{Inline: &models.Blob{
					MIMEType: strings.TrimSpace(part.InlineData.MIMEType),
					Data:     part.InlineData.Data,
				}})
				continue
			}
			if part.Text != "" && !part.Thought {
				out.Parts = append(out.Parts, models.TextPart(part.Text))
				text.WriteString(part.Text)
			}
		}
		// Only the first candidate is used.
		break
	}
	out.Text = text.String()
	return out
}

func wrapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &models.RemoteError{Provider: providerName, StatusCode: apiErr.Code, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &models.RemoteError{Provider: providerName, StatusCode: apiErrPtr.Code, Err: err}
	}
	return &models.RemoteError{Provider: providerName, Err: err}
}
