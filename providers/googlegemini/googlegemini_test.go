package googlegemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/1broseidon/director/models"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
)

func TestGoogleGeminiProvider(t *testing.T) {
	// Skip the test if GEMINI_API_KEY is not set
	if os.Getenv("GEMINI_API_KEY") == "" {
		t.Skip("GEMINI_API_KEY not set, skipping Google Gemini provider test")
	}

	ctx := context.Background()

	provider, err := NewGoogleGeminiProvider(ctx, "")
	if err != nil {
		t.Fatalf("Failed to create Google Gemini provider: %v", err)
	}
	defer provider.Close()

	t.Run("ListModels", func(t *testing.T) {
		ids, err := provider.ListModels(ctx)
		if err != nil {
			t.Fatalf("ListModels failed: %v", err)
		}
		if len(ids) == 0 {
			t.Fatal("No models listed")
		}
		if !strings.HasPrefix(ids[0], "models/") {
			t.Errorf("Unexpected model identifier %q", ids[0])
		}
	})

	t.Run("GenerateStructured", func(t *testing.T) {
		text, err := provider.GenerateStructured(ctx, models.StructuredRequest{
			Model:             "gemini-2.5-flash",
			Parts:             []models.Part{models.TextPart("Name one primary color.")},
			SystemInstruction: "Answer with JSON only.",
			Schema: &models.Schema{
				Type:       models.SchemaObject,
				Properties: map[string]*models.Schema{"color": {Type: models.SchemaString}},
				Required:   []string{"color"},
			},
			Temperature: 0.2,
		})
		if err != nil {
			t.Fatalf("GenerateStructured failed: %v", err)
		}
		if !strings.Contains(text, "color") {
			t.Errorf("Unexpected structured output: %s", text)
		}
	})
}

func TestToSchema(t *testing.T) {
	s := toSchema(&models.Schema{
		Type: models.SchemaObject,
		Properties: map[string]*models.Schema{
			"mode": {Type: models.SchemaString, Enum: []string{"A", "B"}},
			"tags": {Type: models.SchemaArray, Items: &models.Schema{Type: models.SchemaString}},
		},
		Required: []string{"mode"},
	})

	if s.Type != genai.TypeObject {
		t.Fatalf("expected object, got %v", s.Type)
	}
	if s.Properties["mode"].Format != "enum" || len(s.Properties["mode"].Enum) != 2 {
		t.Errorf("enum not carried: %+v", s.Properties["mode"])
	}
	if s.Properties["tags"].Items == nil || s.Properties["tags"].Items.Type != genai.TypeString {
		t.Errorf("array items not carried: %+v", s.Properties["tags"])
	}
}

func TestHarmBlockThreshold(t *testing.T) {
	if _, ok := harmBlockThreshold(""); ok {
		t.Error("empty threshold should keep the service default")
	}
	if got, ok := harmBlockThreshold(models.SafetyBlockNone); !ok || got != genai.HarmBlockNone {
		t.Errorf("unexpected threshold %v", got)
	}
	if n := len(safetySettings(genai.HarmBlockOnlyHigh)); n != 4 {
		t.Errorf("expected 4 safety settings, got %d", n)
	}
}

func TestWrapErrorCarriesStatus(t *testing.T) {
	err := wrapError(fmt.Errorf("call: %w", &googleapi.Error{Code: 403, Message: "denied"}))
	if got := models.StatusCode(err); got != 403 {
		t.Errorf("expected 403, got %d", got)
	}
	if got := models.StatusCode(wrapError(errors.New("network"))); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}
