package models

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ReferenceImage is one uploaded image held in memory for a planning/generation cycle.
type ReferenceImage struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Base64 returns the standard base64 encoding of the image bytes.
func (r ReferenceImage) Base64() string {
	return base64.StdEncoding.EncodeToString(r.Data)
}

// Category names a slot of the ReferenceImageSet.
type Category string

const (
	CategoryFace  Category = "face"
	CategoryBody  Category = "body"
	CategoryStyle Category = "style"
	CategoryInput Category = "input"
)

// Categories lists the slots in assembly order.
var Categories = []Category{CategoryInput, CategoryFace, CategoryBody, CategoryStyle}

// ReferenceImageSet groups the images supplied for one cycle.
type ReferenceImageSet struct {
	Face  []ReferenceImage
	Body  []ReferenceImage
	Style []ReferenceImage
	Input *ReferenceImage
}

// Count returns the number of images in a category.
func (s ReferenceImageSet) Count(c Category) int {
	switch c {
	case CategoryFace:
		return len(s.Face)
	case CategoryBody:
		return len(s.Body)
	case CategoryStyle:
		return len(s.Style)
	case CategoryInput:
		if s.Input != nil {
			return 1
		}
	}
	return 0
}

// Empty reports whether no image was supplied at all.
func (s ReferenceImageSet) Empty() bool {
	return s.Input == nil && len(s.Face) == 0 && len(s.Body) == 0 && len(s.Style) == 0
}

// GenerationResult is what the image step returns: exactly one of ImageURL or Text is set.
type GenerationResult struct {
	ImageURL string `json:"image_url,omitempty"`
	Text     string `json:"text,omitempty"`
	Model    string `json:"model"`
	FellBack bool   `json:"fell_back,omitempty"`
}

// HasImage reports whether the result carries an image.
func (r *GenerationResult) HasImage() bool {
	return r != nil && r.ImageURL != ""
}

// DataURL formats raw bytes as a base64 data URL.
func DataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// ParseDataURL splits a base64 data URL into its MIME type and decoded bytes.
func ParseDataURL(dataURL string) (string, []byte, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return "", nil, errors.New("not a data URL")
	}
	commaIndex := strings.Index(dataURL, ",")
	if commaIndex == -1 {
		return "", nil, errors.New("invalid data URL format: missing comma")
	}
	prefix := dataURL[len("data:"):commaIndex]
	if !strings.HasSuffix(prefix, ";base64") {
		return "", nil, errors.New("data URL is not base64 encoded")
	}
	mimeType := strings.TrimSuffix(prefix, ";base64")
	if mimeType == "" {
		mimeType = "image/png"
	}
	data, err := base64.StdEncoding.DecodeString(dataURL[commaIndex+1:])
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode base64 image data: %w", err)
	}
	return mimeType, data, nil
}
