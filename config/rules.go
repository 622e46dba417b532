package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules narrows which collections a scan visits and lets individual
// collections override the global sampling knobs.
type Rules struct {
	Include   []string            `yaml:"include"`
	Exclude   []string            `yaml:"exclude"`
	Overrides map[string]Override `yaml:"overrides"`
}

type Override struct {
	SampleSize *int `yaml:"sample_size"`
	Stride     *int `yaml:"stride"`
}

// LoadRules reads a YAML rules file, e.g.
//
//	include: [users, orders]
//	exclude: [audit_log]
//	overrides:
//	  orders:
//	    sample_size: 500
func LoadRules(path string) (Rules, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	var r Rules
	if err := yaml.Unmarshal(bs, &r); err != nil {
		return Rules{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	return r, nil
}

// Allows reports whether a collection should be scanned. An empty include
// list admits everything not excluded.
func (r Rules) Allows(collection string) bool {
	for _, name := range r.Exclude {
		if name == collection {
			return false
		}
	}
	if len(r.Include) == 0 {
		return true
	}
	for _, name := range r.Include {
		if name == collection {
			return true
		}
	}
	return false
}
