// Package events implements C2 EventClassifier: a pure, priority-ranked
// rules engine with no LLM in the loop, grounded on the teacher's
// categorization rule-table shape but evaluated deterministically.
package events

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule is one event-classification rule, loaded from a YAML file.
type Rule struct {
	EventType           string              `yaml:"event_type"`
	Priority            int                 `yaml:"priority"` // lower = higher priority
	Keywords            []string            `yaml:"keywords"`
	EntityRequirements  map[string][]string `yaml:"entity_requirements"` // type -> required names
	Description         string              `yaml:"description"`
	Rationale           string              `yaml:"rationale"`
}

// RuleFile is the on-disk shape of the rule table.
type RuleFile struct {
	Rules []Rule `yaml:"rules"`
}

// Classification is C2's result for a matched rule.
type Classification struct {
	EventType   string
	Priority    int
	Description string
	Rationale   string
}

// Classifier evaluates rules in priority order.
type Classifier struct {
	rules []Rule
}

// LoadClassifier reads the rule table from path.
func LoadClassifier(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event rules %s: %w", path, err)
	}
	var rf RuleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse event rules %s: %w", path, err)
	}
	return &Classifier{rules: rf.Rules}, nil
}

// Classify matches text and entities against the rule table and returns the
// minimum-priority match, or ok=false if no rule matched. Ties break by list
// order (stable sort keeps rule-file order for equal priority).
func (c *Classifier) Classify(text string, entityNames map[string][]string) (Classification, bool) {
	lower := strings.ToLower(text)

	var matches []Rule
	for _, rule := range c.rules {
		if ruleMatches(rule, lower, entityNames) {
			matches = append(matches, rule)
		}
	}
	if len(matches) == 0 {
		return Classification{}, false
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Priority < matches[j].Priority
	})

	best := matches[0]
	return Classification{
		EventType:   best.EventType,
		Priority:    best.Priority,
		Description: best.Description,
		Rationale:   best.Rationale,
	}, true
}

func ruleMatches(rule Rule, lowerText string, entityNames map[string][]string) bool {
	for _, kw := range rule.Keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lowerText, strings.ToLower(kw)) {
			return true
		}
	}

	for entityType, required := range rule.EntityRequirements {
		present := entityNames[entityType]
		for _, req := range required {
			for _, have := range present {
				if strings.EqualFold(req, have) {
					return true
				}
			}
		}
	}

	return false
}
