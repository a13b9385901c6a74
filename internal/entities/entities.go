// Package entities implements FeatureExtractor's entity-recognition step
// (C1): a deterministic gazetteer/regex recognizer loaded from a rule file,
// standing in for the statistical NER model spec.md treats as an external
// collaborator (model downloads and vocabulary files are explicitly out of
// scope, per spec.md 1).
package entities

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// MinNameChars is the trimmed-length floor below which a matched mention is
// dropped, per spec.md 4.1.
const MinNameChars = 3

// Rule is one gazetteer entry: a canonical name, its type, and the surface
// forms (synonyms) that should resolve to it.
type Rule struct {
	Type     string   `yaml:"type"`
	Name     string   `yaml:"name"`
	Synonyms []string `yaml:"synonyms"`
}

// RuleFile is the on-disk shape of a gazetteer, loaded once at startup.
type RuleFile struct {
	Rules []Rule `yaml:"rules"`
}

// monetaryRegex matches currency amounts like "$3.2 billion" or "€500 million".
var monetaryRegex = regexp.MustCompile(`(?i)[$€£¥]\s?\d[\d,]*(?:\.\d+)?\s?(?:billion|million|trillion|bn|mn)?`)

// percentRegex matches percentage figures like "3.2%" or "0.25 percent".
var percentRegex = regexp.MustCompile(`(?i)\d[\d,]*(?:\.\d+)?\s?(?:%|percent|percentage points|bps)`)

// Recognizer extracts named entities from article text using a loaded
// gazetteer plus regex-based monetary/percentage detection.
type Recognizer struct {
	byType map[string][]Rule
}

// LoadRecognizer reads a gazetteer YAML file and builds a Recognizer.
func LoadRecognizer(path string) (*Recognizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gazetteer %s: %w", path, err)
	}

	var rf RuleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse gazetteer %s: %w", path, err)
	}

	r := &Recognizer{byType: make(map[string][]Rule)}
	for _, rule := range rf.Rules {
		r.byType[rule.Type] = append(r.byType[rule.Type], rule)
	}
	return r, nil
}

// Extract returns a mapping type -> ordered, deduped mention names found in
// text. Mentions whose trimmed length is <= 2 are dropped, per spec.md 4.1.
func (r *Recognizer) Extract(text string) map[string][]string {
	lower := strings.ToLower(text)
	result := make(map[string][]string)
	seen := make(map[string]map[string]bool)

	addMention := func(entityType, name string) {
		name = strings.TrimSpace(name)
		if len(name) <= MinNameChars-1 {
			return
		}
		if seen[entityType] == nil {
			seen[entityType] = make(map[string]bool)
		}
		key := strings.ToLower(name)
		if seen[entityType][key] {
			return
		}
		seen[entityType][key] = true
		result[entityType] = append(result[entityType], name)
	}

	for entityType, rules := range r.byType {
		for _, rule := range rules {
			candidates := rule.Synonyms
			if len(candidates) == 0 {
				candidates = []string{rule.Name}
			}
			for _, syn := range candidates {
				if strings.Contains(lower, strings.ToLower(syn)) {
					addMention(entityType, rule.Name)
					break
				}
			}
		}
	}

	for _, m := range monetaryRegex.FindAllString(text, -1) {
		addMention("monetary", m)
	}
	for _, m := range percentRegex.FindAllString(text, -1) {
		addMention("percentage", m)
	}

	for entityType := range result {
		sort.Strings(result[entityType])
	}

	return result
}
