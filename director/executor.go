package director

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/1broseidon/director/capability"
	"github.com/1broseidon/director/internal/logging"
	"github.com/1broseidon/director/internal/metrics"
	"github.com/1broseidon/director/models"
)

const (
	// DefaultImageModel is the preferred image model when a plan does not suggest one.
	DefaultImageModel = "gemini-3-pro-image-preview"

	// NoImagePlaceholder is the result text when the model returns neither an image nor text.
	NoImagePlaceholder = "No image generated."
)

// DefaultRetryStatuses are the statuses that trigger a single retry against the fallback model.
var DefaultRetryStatuses = []int{403, 404, 429}

// ImageBackend performs image generation.
type ImageBackend interface {
	GenerateContent(ctx context.Context, model string, parts []models.Part, cfg models.GenerationConfig) (*models.ContentResponse, error)
}

// ModelResolver picks the model the credential can use. capability.Resolver implements it.
type ModelResolver interface {
	Resolve(ctx context.Context, preferred string) string
	Tier(model string) capability.Tier
	Fallback() string
}

// Executor runs confirmed plans against the image model.
type Executor struct {
	backend         ImageBackend
	resolver        ModelResolver
	preferredModel  string
	retryStatuses   map[int]bool
	safetyThreshold string
	logger          logging.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithPreferredModel sets the model used when a plan has no model suggestion.
func WithPreferredModel(model string) ExecutorOption {
	return func(e *Executor) {
		if model != "" {
			e.preferredModel = model
		}
	}
}

// WithRetryStatuses replaces the set of statuses retried against the fallback model.
func WithRetryStatuses(statuses ...int) ExecutorOption {
	return func(e *Executor) {
		e.retryStatuses = statusSet(statuses)
	}
}

// WithExecutorSafetyThreshold sets the harm-block threshold for generation. Empty keeps the service default.
func WithExecutorSafetyThreshold(threshold string) ExecutorOption {
	return func(e *Executor) {
		e.safetyThreshold = threshold
	}
}

// WithExecutorLogger sets the logger.
func WithExecutorLogger(l logging.Logger) ExecutorOption {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExecutor creates an Executor.
func NewExecutor(backend ImageBackend, resolver ModelResolver, opts ...ExecutorOption) *Executor {
	e := &Executor{
		backend:        backend,
		resolver:       resolver,
		preferredModel: DefaultImageModel,
		retryStatuses:  statusSet(DefaultRetryStatuses),
		logger:         logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func statusSet(statuses []int) map[int]bool {
	set := make(map[int]bool, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return set
}

// PreferredModel returns the model tried when a plan does not suggest one.
func (e *Executor) PreferredModel() string {
	return e.preferredModel
}

// Execute generates the image described by plan.
func (e *Executor) Execute(ctx context.Context, plan *models.DirectorPlan, images models.ReferenceImageSet) (*models.GenerationResult, error) {
	if plan == nil {
		return nil, errors.New("no plan to execute")
	}
	if plan.Blocked() {
		return nil, &ContentBlocked{Reason: plan.BlockReason}
	}
	if e.backend == nil || e.resolver == nil {
		return nil, &GenerationFailure{Err: errors.New("no image backend configured")}
	}

	ctx, span := tracer.Start(ctx, "director.Execute")
	defer span.End()

	preferred := plan.ModelSuggestion
	if strings.TrimSpace(preferred) == "" {
		preferred = e.preferredModel
	}
	chosen := e.resolver.Resolve(ctx, preferred)
	fallback := e.resolver.Fallback()
	span.SetAttributes(
		attribute.String("director.preferred_model", preferred),
		attribute.String("director.model", chosen),
	)

	parts := BuildGenerationParts(plan, images)

	resp, err := e.generate(ctx, chosen, parts, plan)
	if err == nil {
		return extractResult(resp, chosen, false), nil
	}

	status := models.StatusCode(err)
	if !e.retryStatuses[status] || chosen == fallback {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		e.logger.Error("Generation error:", err)
		return nil, &GenerationFailure{Model: chosen, Err: err}
	}

	e.logger.Warnf("Model %s failed with status %d. Attempting final fallback to %s.", chosen, status, fallback)
	metrics.RecordFallback(status)
	span.AddEvent("fallback", trace.WithAttributes(
		attribute.String("director.fallback_model", fallback),
		attribute.Int("director.trigger_status", status),
	))

	resp, retryErr := e.generate(ctx, fallback, parts, plan)
	if retryErr != nil {
		span.RecordError(retryErr)
		span.SetStatus(codes.Error, "generation failed with fallback")
		e.logger.Error("Generation failed with fallback:", retryErr)
		return nil, &GenerationFailure{Model: fallback, FallbackAttempted: true, Err: retryErr}
	}
	return extractResult(resp, fallback, true), nil
}

func (e *Executor) generate(ctx context.Context, model string, parts []models.Part, plan *models.DirectorPlan) (*models.ContentResponse, error) {
	cfg := e.configFor(model, plan)
	e.logger.Infof("Executing generation with model: %s", model)

	start := time.Now()
	resp, err := e.backend.GenerateContent(ctx, model, parts, cfg)
	metrics.ObserveRemote("generate", time.Since(start).Seconds())
	metrics.RecordGenerationAttempt(model, models.StatusCode(err))
	return resp, err
}

// configFor derives the image config for model. Only advanced-tier models accept an image size.
func (e *Executor) configFor(model string, plan *models.DirectorPlan) models.GenerationConfig {
	cfg := models.GenerationConfig{
		AspectRatio:     plan.ImageConfig.AspectRatio,
		SafetyThreshold: e.safetyThreshold,
	}
	if cfg.AspectRatio == "" {
		cfg.AspectRatio = models.DefaultAspectRatio
	}
	if e.resolver.Tier(model) == capability.TierAdvanced {
		cfg.ImageSize = plan.ImageConfig.ImageSize
		if cfg.ImageSize == "" {
			cfg.ImageSize = models.DefaultImageSize
		}
	}
	return cfg
}

// BuildGenerationParts assembles the generation content: prompt, negative
// instructions, the input image for edits, then face, body and style references.
func BuildGenerationParts(plan *models.DirectorPlan, images models.ReferenceImageSet) []models.Part {
	parts := []models.Part{models.TextPart(plan.FinalPromptText)}

	if len(plan.NegativeInstructions) > 0 {
		parts = append(parts, models.TextPart(
			"\n\nNEGATIVE INSTRUCTIONS (Avoid these): "+strings.Join(plan.NegativeInstructions, ", ")))
	}

	if plan.Mode == models.ModeEdit && images.Input != nil {
		parts = append(parts, models.ImagePart(*images.Input))
	}
	for _, group := range [][]models.ReferenceImage{images.Face, images.Body, images.Style} {
		for _, img := range group {
			parts = append(parts, models.ImagePart(img))
		}
	}
	return parts
}

func extractResult(resp *models.ContentResponse, model string, fellBack bool) *models.GenerationResult {
	result := &models.GenerationResult{Model: model, FellBack: fellBack}
	if resp != nil {
		for _, part := range resp.Parts {
			if part.Inline != nil && len(part.Inline.Data) > 0 {
				result.ImageURL = models.DataURL(part.Inline.MIMEType, part.Inline.Data)
				return result
			}
		}
		result.Text = resp.Text
	}
	if result.Text == "" {
		result.Text = NoImagePlaceholder
	}
	return result
}
