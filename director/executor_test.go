package director

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/director/capability"
	"github.com/1broseidon/director/models"
)

type imageCall struct {
	model string
	parts []models.Part
	cfg   models.GenerationConfig
}

type fakeImage struct {
	responses map[string]*models.ContentResponse
	errs      map[string]error
	calls     []imageCall
}

func (f *fakeImage) GenerateContent(ctx context.Context, model string, parts []models.Part, cfg models.GenerationConfig) (*models.ContentResponse, error) {
	f.calls = append(f.calls, imageCall{model: model, parts: parts, cfg: cfg})
	if err := f.errs[model]; err != nil {
		return nil, err
	}
	return f.responses[model], nil
}

func status(code int) error {
	return &models.RemoteError{Provider: "fake", StatusCode: code, Err: errors.New("remote")}
}

func listing(ids ...string) capability.ModelLister {
	return capability.ModelListerFunc(func(ctx context.Context) ([]string, error) { return ids, nil })
}

func failingListing() capability.ModelLister {
	return capability.ModelListerFunc(func(ctx context.Context) ([]string, error) {
		return nil, errors.New("listing forbidden")
	})
}

func imageResponse(data string) *models.ContentResponse {
	return &models.ContentResponse{Parts: []models.Part{{Inline: &models.Blob{MIMEType: "image/png", Data: []byte(data)}}}}
}

func basePlan() *models.DirectorPlan {
	plan := &models.DirectorPlan{Mode: models.ModeGenerate, FinalPromptText: "a lighthouse"}
	plan.Normalize()
	return plan
}

func TestExecuteRetriesOnRetryableStatus(t *testing.T) {
	for _, code := range []int{403, 404, 429} {
		backend := &fakeImage{
			errs:      map[string]error{DefaultImageModel: status(code)},
			responses: map[string]*models.ContentResponse{capability.DefaultFallbackModel: imageResponse("ok")},
		}
		e := NewExecutor(backend, capability.NewResolver(failingListing()))

		result, err := e.Execute(context.Background(), basePlan(), models.ReferenceImageSet{})
		require.NoError(t, err)
		assert.True(t, result.HasImage())
		assert.True(t, result.FellBack)
		assert.Equal(t, capability.DefaultFallbackModel, result.Model)

		require.Len(t, backend.calls, 2)
		assert.Equal(t, backend.calls[0].parts, backend.calls[1].parts)
		assert.Equal(t, "1K", backend.calls[0].cfg.ImageSize)
		assert.Empty(t, backend.calls[1].cfg.ImageSize)
	}
}

func TestExecuteDoesNotRetryServerError(t *testing.T) {
	backend := &fakeImage{errs: map[string]error{DefaultImageModel: status(500)}}
	e := NewExecutor(backend, capability.NewResolver(failingListing()))

	_, err := e.Execute(context.Background(), basePlan(), models.ReferenceImageSet{})

	var failure *GenerationFailure
	require.ErrorAs(t, err, &failure)
	assert.False(t, failure.FallbackAttempted)
	assert.Equal(t, DefaultImageModel, failure.Model)
	assert.Equal(t, 500, models.StatusCode(err))
	assert.Len(t, backend.calls, 1)
}

func TestExecuteDoesNotRetryFallbackModel(t *testing.T) {
	backend := &fakeImage{errs: map[string]error{capability.DefaultFallbackModel: status(429)}}
	e := NewExecutor(backend, capability.NewResolver(listing("models/gemini-2.5-flash-image")))

	_, err := e.Execute(context.Background(), basePlan(), models.ReferenceImageSet{})

	var failure *GenerationFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, capability.DefaultFallbackModel, failure.Model)
	assert.False(t, failure.FallbackAttempted)
	assert.Len(t, backend.calls, 1)
}

func TestExecuteFallbackFailure(t *testing.T) {
	backend := &fakeImage{errs: map[string]error{
		DefaultImageModel:               status(404),
		capability.DefaultFallbackModel: status(429),
	}}
	e := NewExecutor(backend, capability.NewResolver(failingListing()))

	_, err := e.Execute(context.Background(), basePlan(), models.ReferenceImageSet{})

	var failure *GenerationFailure
	require.ErrorAs(t, err, &failure)
	assert.True(t, failure.FallbackAttempted)
	assert.Equal(t, capability.DefaultFallbackModel, failure.Model)
	assert.Equal(t, 429, models.StatusCode(err))
}

func TestExecuteCustomRetryStatuses(t *testing.T) {
	backend := &fakeImage{
		errs:      map[string]error{DefaultImageModel: status(503)},
		responses: map[string]*models.ContentResponse{capability.DefaultFallbackModel: imageResponse("ok")},
	}
	e := NewExecutor(backend, capability.NewResolver(failingListing()), WithRetryStatuses(503))

	result, err := e.Execute(context.Background(), basePlan(), models.ReferenceImageSet{})
	require.NoError(t, err)
	assert.True(t, result.FellBack)
}

func TestExtractResultPrecedence(t *testing.T) {
	tests := []struct {
		name      string
		resp      *models.ContentResponse
		wantImage string
		wantText  string
	}{
		{
			name: "image wins over text",
			resp: &models.ContentResponse{
				Parts: []models.Part{
					{Text: "here you go"},
					{Inline: &models.Blob{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}}},
					{Inline: &models.Blob{MIMEType: "image/png", Data: []byte("second")}},
				},
				Text: "here you go",
			},
			wantImage: "data:image/jpeg;base64,/9j/",
		},
		{
			name:      "missing mime defaults to png",
			resp:      &models.ContentResponse{Parts: []models.Part{{Inline: &models.Blob{Data: []byte{0xff, 0xd8, 0xff}}}}},
			wantImage: "data:image/png;base64,/9j/",
		},
		{
			name:     "text when no image",
			resp:     &models.ContentResponse{Text: "I cannot draw that"},
			wantText: "I cannot draw that",
		},
		{
			name:     "placeholder when empty",
			resp:     &models.ContentResponse{},
			wantText: NoImagePlaceholder,
		},
		{
			name:     "placeholder when nil",
			wantText: NoImagePlaceholder,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractResult(tt.resp, "m", false)
			assert.Equal(t, tt.wantImage, result.ImageURL)
			assert.Equal(t, tt.wantText, result.Text)
		})
	}
}

func TestExecuteRejectsBlockedPlan(t *testing.T) {
	backend := &fakeImage{}
	e := NewExecutor(backend, capability.NewResolver(listing()))

	_, err := e.Execute(context.Background(), &models.DirectorPlan{Mode: models.ModeBlocked, BlockReason: "illegal"}, models.ReferenceImageSet{})

	var blocked *ContentBlocked
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "illegal", blocked.Reason)
	assert.Empty(t, backend.calls)
}

func TestBuildGenerationParts(t *testing.T) {
	input := img("input")
	images := models.ReferenceImageSet{
		Input: &input,
		Face:  []models.ReferenceImage{img("f1")},
		Body:  []models.ReferenceImage{img("b1")},
		Style: []models.ReferenceImage{img("s1")},
	}

	plan := &models.DirectorPlan{Mode: models.ModeEdit, FinalPromptText: "p", NegativeInstructions: []string{"blur", "extra fingers"}}
	parts := BuildGenerationParts(plan, images)
	require.Len(t, parts, 6)
	assert.Equal(t, "p", parts[0].Text)
	assert.Equal(t, "\n\nNEGATIVE INSTRUCTIONS (Avoid these): blur, extra fingers", parts[1].Text)
	assert.Equal(t, "input", string(parts[2].Inline.Data))
	assert.Equal(t, "s1", string(parts[5].Inline.Data))

	plan = &models.DirectorPlan{Mode: models.ModeGenerate, FinalPromptText: "p"}
	parts = BuildGenerationParts(plan, images)
	require.Len(t, parts, 4)
	assert.Equal(t, "f1", string(parts[1].Inline.Data))
}

// A pro-less key: planning succeeds, the resolver downgrades, and the image
// comes back from the base model without an image size.
func TestPlanAndExecuteWithBaseTierKey(t *testing.T) {
	planning := &fakePlanning{text: `{
		"mode": "GENERATE",
		"model_suggestion": "gemini-3-pro-image-preview",
		"image_config": {"aspectRatio": "3:4", "imageSize": "2K"},
		"final_prompt_text": "portrait of the subject at dusk",
		"negative_instructions": ["facial distortion"]
	}`}
	backend := &fakeImage{responses: map[string]*models.ContentResponse{
		capability.DefaultFallbackModel: imageResponse("png-bytes"),
	}}
	resolver := capability.NewResolver(listing("models/gemini-2.5-flash", "models/gemini-2.5-flash-image"))

	plan, err := NewPlanner(planning).CreatePlan(context.Background(), PlanRequest{
		Text:   "portrait at dusk",
		Images: models.ReferenceImageSet{Face: []models.ReferenceImage{img("f1")}},
	})
	require.NoError(t, err)

	result, err := NewExecutor(backend, resolver).Execute(context.Background(), plan, models.ReferenceImageSet{Face: []models.ReferenceImage{img("f1")}})
	require.NoError(t, err)

	require.Len(t, backend.calls, 1)
	call := backend.calls[0]
	assert.Equal(t, capability.DefaultFallbackModel, call.model)
	assert.Equal(t, "3:4", call.cfg.AspectRatio)
	assert.Empty(t, call.cfg.ImageSize)
	assert.Equal(t, models.DataURL("image/png", []byte("png-bytes")), result.ImageURL)
	assert.False(t, result.FellBack)
}
