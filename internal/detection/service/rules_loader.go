package service

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/allisson/secretvault/internal/detection/domain"
)

// LoadRulesFile reads a JSON array of domain.Rule values from path, for a
// project's custom rule set (the Rule Engine's extension point). A missing
// file is not an error — a project with no custom rules file still scans
// with the built-in pattern registry alone.
func LoadRulesFile(path string) ([]domain.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading custom rules file %s: %w", path, err)
	}

	var rules []domain.Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing custom rules file %s: %w", path, err)
	}
	return rules, nil
}
