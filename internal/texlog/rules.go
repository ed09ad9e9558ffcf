package texlog

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk shape of an operator-supplied rule set:
//
//	rules:
//	  - severity: danger
//	    pattern: 'Package natbib Warning:.*'
//	    run: last
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads extra markup rules from a YAML file. Rules are validated
// here so a bad rule file fails at startup rather than mid-annotation; pass
// the result to New, which appends them after the built-in table.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	for i, rule := range file.Rules {
		if !rule.Severity.Valid() {
			return nil, fmt.Errorf("rules file %s: rule %d: unknown severity %q", path, i, rule.Severity)
		}
		if !validActivation(rule.Run) {
			return nil, fmt.Errorf("rules file %s: rule %d: unknown run activation %q", path, i, rule.Run)
		}
		if _, err := regexp.Compile(`(?i)(` + rule.Pattern + `)`); err != nil {
			return nil, fmt.Errorf("rules file %s: rule %d: invalid pattern: %w", path, i, err)
		}
	}

	return file.Rules, nil
}
