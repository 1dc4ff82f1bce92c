package capability

import "strings"

// Tier is a coarse classification of a model's capability level.
type Tier int

const (
	// TierBase covers the flash-class image models. They do not accept an image size.
	TierBase Tier = iota
	// TierAdvanced covers pro, preview and video-class models.
	TierAdvanced
)

func (t Tier) String() string {
	if t == TierAdvanced {
		return "advanced"
	}
	return "base"
}

// Classifier maps a model identifier to its tier.
type Classifier func(model string) Tier

// DefaultAdvancedMarkers are the name fragments that mark a model as TierAdvanced.
var DefaultAdvancedMarkers = []string{"pro", "preview", "veo"}

// MarkerClassifier returns a Classifier that reports TierAdvanced when the
// lower-cased identifier contains any of the markers.
func MarkerClassifier(markers ...string) Classifier {
	normalized := make([]string, 0, len(markers))
	for _, m := range markers {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			normalized = append(normalized, m)
		}
	}
	return func(model string) Tier {
		name := strings.ToLower(model)
		for _, m := range normalized {
			if strings.Contains(name, m) {
				return TierAdvanced
			}
		}
		return TierBase
	}
}

// DefaultClassifier classifies with DefaultAdvancedMarkers.
var DefaultClassifier = MarkerClassifier(DefaultAdvancedMarkers...)

// DefaultDowngradeMarkers name the models the resolver may swap for the
// fallback when they are missing from the listing. Video models pass through.
var DefaultDowngradeMarkers = []string{"pro", "preview"}

// DefaultDowngradeClassifier classifies with DefaultDowngradeMarkers.
var DefaultDowngradeClassifier = MarkerClassifier(DefaultDowngradeMarkers...)
