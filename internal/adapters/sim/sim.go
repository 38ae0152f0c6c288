// Package sim provides deterministic in-process implementations of every
// collaborator contract, backed by YAML fixtures. They let the agent run
// end-to-end (chat REPL, serve, demos) without any external service, and
// they are intentionally rule-based rather than clever: the orchestration
// engine, not the collaborators, is the point of this repository.
package sim

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/policy.yaml
var policyFixture []byte

//go:embed fixtures/providers.yaml
var providersFixture []byte

type policyFile struct {
	Chunks []policyChunk `yaml:"chunks"`
}

type policyChunk struct {
	SourceRef string   `yaml:"source_ref"`
	Page      int      `yaml:"page"`
	Keywords  []string `yaml:"keywords"`
	Content   string   `yaml:"content"`
}

type providerFile struct {
	Providers []providerSpec `yaml:"providers"`
}

type providerSpec struct {
	Name      string `yaml:"name"`
	Weekdays  []int  `yaml:"weekdays"`
	StartHour int    `yaml:"start_hour"`
	EndHour   int    `yaml:"end_hour"`
}

func loadPolicyChunks() ([]policyChunk, error) {
	var f policyFile
	if err := yaml.Unmarshal(policyFixture, &f); err != nil {
		return nil, fmt.Errorf("parse policy fixture: %w", err)
	}
	return f.Chunks, nil
}

func loadProviders() ([]providerSpec, error) {
	var f providerFile
	if err := yaml.Unmarshal(providersFixture, &f); err != nil {
		return nil, fmt.Errorf("parse providers fixture: %w", err)
	}
	return f.Providers, nil
}
