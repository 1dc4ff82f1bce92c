package director

import (
	"github.com/1broseidon/director/models"
)

func stringSchema(description string) *models.Schema {
	return &models.Schema{Type: models.SchemaString, Description: description}
}

func stringList() *models.Schema {
	return &models.Schema{Type: models.SchemaArray, Items: &models.Schema{Type: models.SchemaString}}
}

// PlanSchema returns the structured-output schema of a DirectorPlan.
func PlanSchema() *models.Schema {
	return &models.Schema{
		Type: models.SchemaObject,
		Properties: map[string]*models.Schema{
			"mode": {
				Type: models.SchemaString,
				Enum: []string{string(models.ModeEdit), string(models.ModeGenerate), string(models.ModeBlocked)},
			},
			"model_suggestion": stringSchema(""),
			"subject_analysis": stringSchema("Detailed physical description of the person in the photos."),
			"image_config": {
				Type: models.SchemaObject,
				Properties: map[string]*models.Schema{
					"aspectRatio": stringSchema(""),
					"imageSize":   stringSchema(""),
				},
			},
			"contents_plan": {
				Type: models.SchemaObject,
				Properties: map[string]*models.Schema{
					"order": stringList(),
					"notes": stringSchema(""),
				},
			},
			"final_prompt_text":     stringSchema(""),
			"negative_instructions": stringList(),
			"masking_recommendation": {
				Type: models.SchemaObject,
				Properties: map[string]*models.Schema{
					"needs_mask":    {Type: models.SchemaBoolean},
					"mask_targets":  stringList(),
					"mask_guidance": stringSchema(""),
				},
			},
			"quality_checks": stringList(),
			"block_reason":   stringSchema(""),
		},
		Required: []string{"mode", "final_prompt_text"},
	}
}
