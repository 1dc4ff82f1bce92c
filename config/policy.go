package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/director/director"
)

// Policy is the planner's creative policy: its system instruction and default output constraints.
//
//	system_instruction: |
//	  You are an art director...
//	output_constraints:
//	  aspect_ratio: "3:4"
//	  resolution: 2K
//	  photorealism_level: High
//	  language: en
type Policy struct {
	SystemInstruction string                     `yaml:"system_instruction"`
	OutputConstraints director.OutputConstraints `yaml:"output_constraints"`
}

// DefaultPolicy returns the built-in policy.
func DefaultPolicy() *Policy {
	return &Policy{
		SystemInstruction: director.DefaultSystemInstruction,
		OutputConstraints: director.DefaultOutputConstraints,
	}
}

// LoadPolicy reads a YAML policy file. An empty path returns DefaultPolicy.
// Fields missing from the file keep their default values.
func LoadPolicy(path string) (*Policy, error) {
	policy := DefaultPolicy()
	if strings.TrimSpace(path) == "" {
		return policy, nil
	}

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read policy file %q: %w", cleanPath, err)
	}
	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("parse policy file %q: %w", cleanPath, err)
	}
	if strings.TrimSpace(policy.SystemInstruction) == "" {
		return nil, fmt.Errorf("policy file %q has an empty system_instruction", cleanPath)
	}
	return policy, nil
}
