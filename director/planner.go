// Package director turns a creative request into a DirectorPlan and executes
// confirmed plans against the image model.
package director

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/1broseidon/director/internal/logging"
	"github.com/1broseidon/director/internal/metrics"
	"github.com/1broseidon/director/models"
)

// Planner defaults.
const (
	DefaultPlannerModel       = "gemini-2.5-flash"
	DefaultPlannerTemperature = float32(0.6)
)

var tracer = otel.Tracer("github.com/1broseidon/director/director")

// PlanningBackend performs structured-output generation.
type PlanningBackend interface {
	GenerateStructured(ctx context.Context, req models.StructuredRequest) (string, error)
}

// PlanRequest is the input of one planning call.
type PlanRequest struct {
	Text             string
	Images           models.ReferenceImageSet
	AuxiliaryContext string
}

// Planner builds DirectorPlans with the planning model.
type Planner struct {
	backend           PlanningBackend
	model             string
	systemInstruction string
	constraints       OutputConstraints
	temperature       float32
	safetyThreshold   string
	logger            logging.Logger
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithPlannerModel sets the model used for planning.
func WithPlannerModel(model string) PlannerOption {
	return func(p *Planner) {
		if model != "" {
			p.model = model
		}
	}
}

// WithSystemInstruction replaces the planner's system instruction. Blank values are ignored.
func WithSystemInstruction(instruction string) PlannerOption {
	return func(p *Planner) {
		if strings.TrimSpace(instruction) != "" {
			p.systemInstruction = instruction
		}
	}
}

// WithOutputConstraints sets the constraints sent with every planning request.
func WithOutputConstraints(c OutputConstraints) PlannerOption {
	return func(p *Planner) {
		p.constraints = c
	}
}

// WithTemperature sets the planning temperature.
func WithTemperature(t float32) PlannerOption {
	return func(p *Planner) {
		p.temperature = t
	}
}

// WithPlannerSafetyThreshold sets the harm-block threshold. Empty keeps the service default.
func WithPlannerSafetyThreshold(threshold string) PlannerOption {
	return func(p *Planner) {
		p.safetyThreshold = threshold
	}
}

// WithPlannerLogger sets the logger.
func WithPlannerLogger(l logging.Logger) PlannerOption {
	return func(p *Planner) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPlanner creates a Planner that calls backend.
func NewPlanner(backend PlanningBackend, opts ...PlannerOption) *Planner {
	p := &Planner{
		backend:           backend,
		model:             DefaultPlannerModel,
		systemInstruction: DefaultSystemInstruction,
		constraints:       DefaultOutputConstraints,
		temperature:       DefaultPlannerTemperature,
		logger:            logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Model returns the planning model identifier.
func (p *Planner) Model() string {
	return p.model
}

// CreatePlan asks the planning model for a DirectorPlan. Every failure is a *PlanningFailure.
func (p *Planner) CreatePlan(ctx context.Context, req PlanRequest) (*models.DirectorPlan, error) {
	ctx, span := tracer.Start(ctx, "director.CreatePlan")
	defer span.End()
	span.SetAttributes(
		attribute.String("director.planner_model", p.model),
		attribute.Int("director.face_images", req.Images.Count(models.CategoryFace)),
		attribute.Int("director.body_images", req.Images.Count(models.CategoryBody)),
		attribute.Int("director.style_images", req.Images.Count(models.CategoryStyle)),
		attribute.Bool("director.input_image", req.Images.Input != nil),
	)

	plan, err := p.createPlan(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "planning failed")
		metrics.RecordPlan("failure")
		p.logger.Error("Director plan error:", err)
		return nil, err
	}

	span.SetAttributes(attribute.String("director.mode", string(plan.Mode)))
	metrics.RecordPlan(strings.ToLower(string(plan.Mode)))
	p.logger.Infof("Director plan ready: mode=%s model=%s", plan.Mode, plan.ModelSuggestion)
	return plan, nil
}

func (p *Planner) createPlan(ctx context.Context, req PlanRequest) (*models.DirectorPlan, error) {
	if p.backend == nil {
		return nil, &PlanningFailure{Err: errors.New("no planning backend configured")}
	}

	start := time.Now()
	text, err := p.backend.GenerateStructured(ctx, models.StructuredRequest{
		Model:             p.model,
		Parts:             p.buildParts(req),
		SystemInstruction: p.systemInstruction,
		Schema:            PlanSchema(),
		Temperature:       p.temperature,
		SafetyThreshold:   p.safetyThreshold,
	})
	metrics.ObserveRemote("plan", time.Since(start).Seconds())
	if err != nil {
		return nil, &PlanningFailure{Err: err}
	}

	return ParsePlan(text)
}

func (p *Planner) buildParts(req PlanRequest) []models.Part {
	parts := []models.Part{models.TextPart("USER REQUEST: " + req.Text)}

	if aux := strings.TrimSpace(req.AuxiliaryContext); aux != "" {
		parts = append(parts, models.TextPart(fmt.Sprintf(
			"DRIVE_LORA_DATASET: %s (Use this link as high-priority context for identity training/consistency)", aux)))
	}

	parts = append(parts, models.TextPart("OUTPUT_CONSTRAINTS: "+p.constraints.JSON()))

	if req.Images.Input != nil {
		parts = append(parts,
			models.TextPart("\n[INPUT_IMAGE provided for editing]"),
			models.ImagePart(*req.Images.Input),
		)
	}
	parts = appendLabelled(parts, req.Images.Face, "REF_IMAGE_FACE", " - analyze for identity")
	parts = appendLabelled(parts, req.Images.Body, "REF_IMAGE_BODY", " - analyze for body type")
	parts = appendLabelled(parts, req.Images.Style, "REF_IMAGE_STYLE", "")
	return parts
}

func appendLabelled(parts []models.Part, images []models.ReferenceImage, label, hint string) []models.Part {
	for i, img := range images {
		parts = append(parts,
			models.TextPart(fmt.Sprintf("\n[%s %d/%d%s]", label, i+1, len(images), hint)),
			models.ImagePart(img),
		)
	}
	return parts
}

// ParsePlan decodes and normalizes the planner's JSON output.
func ParsePlan(text string) (*models.DirectorPlan, error) {
	text = stripCodeFence(text)
	if text == "" {
		return nil, &PlanningFailure{Err: errors.New("no response from director model")}
	}

	var plan models.DirectorPlan
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		return nil, &PlanningFailure{Err: fmt.Errorf("invalid plan JSON: %w", err)}
	}

	plan.Normalize()
	if !plan.Mode.Valid() {
		return nil, &PlanningFailure{Err: fmt.Errorf("invalid plan mode %q", plan.Mode)}
	}
	return &plan, nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
