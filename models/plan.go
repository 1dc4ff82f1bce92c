package models

import "strings"

// Mode is the kind of work a DirectorPlan asks for.
type Mode string

const (
	ModeEdit     Mode = "EDIT"
	ModeGenerate Mode = "GENERATE"
	ModeBlocked  Mode = "BLOCKED"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeEdit, ModeGenerate, ModeBlocked:
		return true
	}
	return false
}

const (
	DefaultAspectRatio = "1:1"
	DefaultImageSize   = "1K"
)

// ImageConfig carries the output shape requested from the image model.
type ImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty" yaml:"aspect_ratio,omitempty"`
	ImageSize   string `json:"imageSize,omitempty" yaml:"image_size,omitempty"`
}

// ContentsPlan describes the order in which prompt and reference images are attached.
type ContentsPlan struct {
	Order []string `json:"order,omitempty" yaml:"order,omitempty"`
	Notes string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// MaskingRecommendation is advisory output for edit workflows.
type MaskingRecommendation struct {
	NeedsMask    bool     `json:"needs_mask" yaml:"needs_mask"`
	MaskTargets  []string `json:"mask_targets,omitempty" yaml:"mask_targets,omitempty"`
	MaskGuidance string   `json:"mask_guidance,omitempty" yaml:"mask_guidance,omitempty"`
}

// DirectorPlan is the structured output of the planning step.
type DirectorPlan struct {
	Mode                  Mode                   `json:"mode" yaml:"mode"`
	ModelSuggestion       string                 `json:"model_suggestion,omitempty" yaml:"model_suggestion,omitempty"`
	SubjectAnalysis       string                 `json:"subject_analysis,omitempty" yaml:"subject_analysis,omitempty"`
	ImageConfig           ImageConfig            `json:"image_config" yaml:"image_config"`
	ContentsPlan          ContentsPlan           `json:"contents_plan" yaml:"contents_plan"`
	FinalPromptText       string                 `json:"final_prompt_text" yaml:"final_prompt_text"`
	NegativeInstructions  []string               `json:"negative_instructions" yaml:"negative_instructions"`
	MaskingRecommendation *MaskingRecommendation `json:"masking_recommendation,omitempty" yaml:"masking_recommendation,omitempty"`
	QualityChecks         []string               `json:"quality_checks" yaml:"quality_checks"`
	BlockReason           string                 `json:"block_reason,omitempty" yaml:"block_reason,omitempty"`
}

// Blocked reports whether the planner refused the request.
func (p *DirectorPlan) Blocked() bool {
	return p != nil && p.Mode == ModeBlocked
}

// Normalize fills the fields that are guaranteed to be present after planning.
func (p *DirectorPlan) Normalize() {
	p.Mode = Mode(strings.ToUpper(strings.TrimSpace(string(p.Mode))))
	if strings.TrimSpace(p.ImageConfig.AspectRatio) == "" {
		p.ImageConfig.AspectRatio = DefaultAspectRatio
	}
	if strings.TrimSpace(p.ImageConfig.ImageSize) == "" {
		p.ImageConfig.ImageSize = DefaultImageSize
	}
	if p.NegativeInstructions == nil {
		p.NegativeInstructions = []string{}
	}
	if p.QualityChecks == nil {
		p.QualityChecks = []string{}
	}
}
