package googlegemini

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/1broseidon/director/models"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const providerName = "googlegemini"

// GoogleGeminiProvider implements model listing and structured planning on the Gemini API
type GoogleGeminiProvider struct {
	client *genai.Client
}

// NewGoogleGeminiProvider creates a new Google Gemini provider.
// An empty apiKey falls back to the GEMINI_API_KEY environment variable.
func NewGoogleGeminiProvider(ctx context.Context, apiKey string) (*GoogleGeminiProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &GoogleGeminiProvider{
		client: client,
	}, nil
}

// Close closes the Google Gemini client
func (p *GoogleGeminiProvider) Close() error {
	return p.client.Close()
}

// ListModels returns the identifiers of every model visible to the API key, as reported ("models/...").
func (p *GoogleGeminiProvider) ListModels(ctx context.Context) ([]string, error) {
	var ids []string
	iter := p.client.ListModels(ctx)
	for {
		info, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapError(err)
		}
		ids = append(ids, info.Name)
	}
	return ids, nil
}

// GenerateStructured runs a JSON-mode generation constrained by req.Schema and returns the raw JSON text
func (p *GoogleGeminiProvider) GenerateStructured(ctx context.Context, req models.StructuredRequest) (string, error) {
	model := p.client.GenerativeModel(req.Model)
	model.SetTemperature(req.Temperature)
	model.ResponseMIMEType = "application/json"
	if req.Schema != nil {
		model.ResponseSchema = toSchema(req.Schema)
	}
	if req.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemInstruction)}}
	}
	if threshold, ok := harmBlockThreshold(req.SafetyThreshold); ok {
		model.SafetySettings = safetySettings(threshold)
	}

	resp, err := model.GenerateContent(ctx, toParts(req.Parts)...)
	if err != nil {
		return "", wrapError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

func toParts(parts []models.Part) []genai.Part {
	out := make([]genai.Part, 0, len(parts))
	for _, part := range parts {
		if part.Inline != nil {
			out = append(out, genai.Blob{MIMEType: part.Inline.MIMEType, Data: part.Inline.Data})
			continue
		}
		out = append(out, genai.Text(part.Text))
	}
	return out
}

func toSchema(s *models.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
		Items:       toSchema(s.Items),
	}
	switch s.Type {
	case models.SchemaObject:
		out.Type = genai.TypeObject
	case models.SchemaArray:
		out.Type = genai.TypeArray
	case models.SchemaBoolean:
		out.Type = genai.TypeBoolean
	default:
		out.Type = genai.TypeString
	}
	if len(s.Enum) > 0 {
		out.Format = "enum"
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toSchema(prop)
		}
	}
	return out
}

func harmBlockThreshold(s string) (genai.HarmBlockThreshold, bool) {
	switch s {
	case models.SafetyBlockNone:
		return genai.HarmBlockNone, true
	case models.SafetyBlockOnlyHigh:
		return genai.HarmBlockOnlyHigh, true
	case models.SafetyBlockMediumAndAbove:
		return genai.HarmBlockMediumAndAbove, true
	case models.SafetyBlockLowAndAbove:
		return genai.HarmBlockLowAndAbove, true
	}
	return genai.HarmBlockUnspecified, false
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

// wrapError attaches the HTTP status of API failures so callers can branch on it
func wrapError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &models.RemoteError{Provider: providerName, StatusCode: apiErr.Code, Err: err}
	}
	var coded interface{ HTTPCode() int }
	if errors.As(err, &coded) {
		return &models.RemoteError{Provider: providerName, StatusCode: coded.HTTPCode(), Err: err}
	}
	return &models.RemoteError{Provider: providerName, Err: err}
}
