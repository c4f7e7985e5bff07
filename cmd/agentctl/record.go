package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"humesync/internal/domain/agent"
	"humesync/pkg/errors"
)

// loadAgent reads an agent record from a YAML or JSON file
func loadAgent(path string) (*agent.Agent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	var a agent.Agent
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "parse %s: %v", path, err)
	}
	if err := a.Validate(); err != nil {
		return nil, errors.Wrapf(err, "agent in %s", path)
	}
	return &a, nil
}
