package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyConfig is the on-disk shape of the register policy.
//
// Example:
//
//	statuses: [draft, for_review, issued, superseded]
//	initial_status: draft
//	superseded_status: superseded
//	supersede_previous: false
type PolicyConfig struct {
	Statuses          []string `yaml:"statuses"`
	InitialStatus     string   `yaml:"initial_status"`
	SupersededStatus  string   `yaml:"superseded_status"`
	SupersedePrevious bool     `yaml:"supersede_previous"`
}

// DefaultPolicy is used when no policy file is configured.
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		Statuses:         []string{"draft", "for_review", "issued", "superseded"},
		InitialStatus:    "draft",
		SupersededStatus: "superseded",
	}
}

// LoadPolicy reads the YAML policy at path. An empty path yields DefaultPolicy.
func LoadPolicy(path string) (PolicyConfig, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return PolicyConfig{}, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicy(raw)
}

// ParsePolicy decodes and validates a YAML policy document.
func ParsePolicy(raw []byte) (PolicyConfig, error) {
	var p PolicyConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return PolicyConfig{}, fmt.Errorf("decode policy: %w", err)
	}
	if len(p.Statuses) == 0 {
		return PolicyConfig{}, fmt.Errorf("policy: statuses must not be empty")
	}
	if p.InitialStatus == "" {
		p.InitialStatus = p.Statuses[0]
	}
	if !contains(p.Statuses, p.InitialStatus) {
		return PolicyConfig{}, fmt.Errorf("policy: initial_status %q is not a declared status", p.InitialStatus)
	}
	if p.SupersedePrevious && !contains(p.Statuses, p.SupersededStatus) {
		return PolicyConfig{}, fmt.Errorf("policy: superseded_status %q is not a declared status", p.SupersededStatus)
	}
	return p, nil
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
