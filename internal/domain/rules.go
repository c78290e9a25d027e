package domain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRules loads a classification rule set from a YAML file.
//
// Expected shape:
//
//	default: backend
//	domains:
//	  - name: backend
//	    patterns:
//	      - "api/*"
//	      - "*.service.py"
//	  - name: frontend
//	    patterns:
//	      - "ui/*"
//
// The table is validated by compiling it; a rule set that does not compile
// is rejected here rather than at first classification.
func LoadRules(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("reading rules file: %w", err)
	}

	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("parsing rules file: %w", err)
	}

	if _, err := NewClassifierFromRules(rs); err != nil {
		return RuleSet{}, fmt.Errorf("invalid rules file %s: %w", path, err)
	}

	return rs, nil
}

// NewClassifierFromFile loads a rules file and compiles it into a Classifier.
func NewClassifierFromFile(path string) (*Classifier, error) {
	rs, err := LoadRules(path)
	if err != nil {
		return nil, err
	}
	return NewClassifierFromRules(rs)
}

// ExportRules renders a rule set as YAML, suitable for seeding a custom
// rules file from the built-in table.
func ExportRules(rs RuleSet) ([]byte, error) {
	return yaml.Marshal(rs)
}
