package models

// Blob is inline binary data sent to or received from the remote service.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Part is a provider-neutral piece of multimodal content: text or an inline blob.
type Part struct {
	Text   string
	Inline *Blob
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// ImagePart builds an inline part from a reference image.
func ImagePart(img ReferenceImage) Part {
	return Part{Inline: &Blob{MIMEType: img.MIMEType, Data: img.Data}}
}

// SchemaType enumerates the structured-output schema types.
type SchemaType string

const (
	SchemaObject  SchemaType = "object"
	SchemaString  SchemaType = "string"
	SchemaArray   SchemaType = "array"
	SchemaBoolean SchemaType = "boolean"
)

// Schema is a provider-neutral description of the structured output expected from planning.
type Schema struct {
	Type        SchemaType
	Description string
	Enum        []string
	Items       *Schema
	Properties  map[string]*Schema
	Required    []string
}

// StructuredRequest is a structured-output call to the planning capability.
type StructuredRequest struct {
	Model             string
	Parts             []Part
	SystemInstruction string
	Schema            *Schema
	Temperature       float32
	SafetyThreshold   string
}

// GenerationConfig is the per-call configuration for the image capability.
type GenerationConfig struct {
	AspectRatio     string
	ImageSize       string
	SafetyThreshold string
}

// ContentResponse is the provider-neutral form of a generation response.
type ContentResponse struct {
	Parts []Part
	Text  string
}

// Harm-block thresholds accepted by both SDKs. An empty threshold keeps the service default.
const (
	// SafetyServiceDefault is the configuration spelling of the empty threshold.
	SafetyServiceDefault = "DEFAULT"

	SafetyBlockNone           = "BLOCK_NONE"
	SafetyBlockOnlyHigh       = "BLOCK_ONLY_HIGH"
	SafetyBlockMediumAndAbove = "BLOCK_MEDIUM_AND_ABOVE"
	SafetyBlockLowAndAbove    = "BLOCK_LOW_AND_ABOVE"
)

// ValidSafetyThreshold reports whether s is empty or a known threshold.
func ValidSafetyThreshold(s string) bool {
	switch s {
	case "", SafetyBlockNone, SafetyBlockOnlyHigh, SafetyBlockMediumAndAbove, SafetyBlockLowAndAbove:
		return true
	}
	return false
}
