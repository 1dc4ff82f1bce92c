package googlegenai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/1broseidon/director/models"
	"google.golang.org/genai"
)

func TestGoogleGenAIProvider(t *testing.T) {
	// Skip the test if GEMINI_API_KEY is not set
	if os.Getenv("GEMINI_API_KEY") == "" {
		t.Skip("GEMINI_API_KEY not set, skipping Google GenAI provider test")
	}

	ctx := context.Background()

	provider, err := NewGoogleGenAIProvider(ctx, "")
	if err != nil {
		t.Fatalf("Failed to create Google GenAI provider: %v", err)
	}
	defer provider.Close()

	resp, err := provider.GenerateContent(ctx, "gemini-2.5-flash-image",
		[]models.Part{models.TextPart("A single red apple on a white table")},
		models.GenerationConfig{AspectRatio: "1:1"})
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}
	if len(resp.Parts) == 0 {
		t.Error("Response has no parts")
	}
}

func TestBuildConfig(t *testing.T) {
	cfg := buildConfig(models.GenerationConfig{AspectRatio: "16:9"})
	if cfg.ImageConfig.AspectRatio != "16:9" || cfg.ImageConfig.ImageSize != "" {
		t.Errorf("unexpected image config: %+v", cfg.ImageConfig)
	}
	if cfg.SafetySettings != nil {
		t.Error("safety settings should be left to the service default")
	}

	cfg = buildConfig(models.GenerationConfig{AspectRatio: "1:1", ImageSize: "2K", SafetyThreshold: models.SafetyBlockOnlyHigh})
	if cfg.ImageConfig.ImageSize != "2K" {
		t.Errorf("expected image size 2K, got %q", cfg.ImageConfig.ImageSize)
	}
	if len(cfg.SafetySettings) != 4 || cfg.SafetySettings[0].Threshold != genai.HarmBlockThresholdBlockOnlyHigh {
		t.Errorf("unexpected safety settings: %+v", cfg.SafetySettings)
	}
}

func TestFromResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{
			{Text: "thinking", Thought: true},
			{Text: "Here it is"},
			{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte{1, 2, 3}}},
		}},
	}}}

	out := fromResponse(resp)
	if out.Text != "Here it is" {
		t.Errorf("unexpected text %q", out.Text)
	}
	if len(out.Parts) != 2 || out.Parts[1].Inline == nil || out.Parts[1].Inline.MIMEType != "image/png" {
		t.Errorf("unexpected parts: %+v", out.Parts)
	}
	if empty := fromResponse(nil); len(empty.Parts) != 0 || empty.Text != "" {
		t.Errorf("nil response should be empty: %+v", empty)
	}
}

func TestWrapErrorCarriesStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{genai.APIError{Code: 404, Message: "not found", Status: "NOT_FOUND"}, 404},
		{fmt.Errorf("call: %w", &genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}), 429},
		{errors.New("dial tcp: timeout"), 0},
	}
	for _, tt := range tests {
		if got := models.StatusCode(wrapError(tt.err)); got != tt.want {
			t.Errorf("wrapError(%v): expected %d, got %d", tt.err, tt.want, got)
		}
	}
}
