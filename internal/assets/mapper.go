// Package assets implements C3 AssetMapper (rule-table mapping, no LLM) and
// C4 AssetFilter (single strict-schema LLM call).
package assets

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// MappingRule maps one entity (by type and synonym list) to candidate
// financial-instrument symbols.
type MappingRule struct {
	EntityType string   `yaml:"entity_type"`
	Synonyms   []string `yaml:"synonyms"`
	Assets     []string `yaml:"assets"`
}

// MappingRuleFile is the on-disk shape of the asset-mapping rule table.
type MappingRuleFile struct {
	Rules []MappingRule `yaml:"rules"`
}

// Mapper applies the rule table to an entity set.
type Mapper struct {
	rules []MappingRule
}

// LoadMapper reads the asset-mapping rule table from path.
func LoadMapper(path string) (*Mapper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read asset rules %s: %w", path, err)
	}
	var rf MappingRuleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse asset rules %s: %w", path, err)
	}
	return &Mapper{rules: rf.Rules}, nil
}

// MapCandidates returns the sorted, deduplicated union of candidate assets
// implied by entityNames (type -> names), per spec.md 4.3: case-insensitive
// containment both ways, first hit per rule contributes its assets.
func (m *Mapper) MapCandidates(entityNames map[string][]string) []string {
	seen := make(map[string]bool)
	var out []string

	for _, rule := range m.rules {
		names, ok := entityNames[rule.EntityType]
		if !ok {
			continue
		}
		if !ruleHits(rule, names) {
			continue
		}
		for _, asset := range rule.Assets {
			if seen[asset] {
				continue
			}
			seen[asset] = true
			out = append(out, asset)
		}
	}

	sort.Strings(out)
	return out
}

func ruleHits(rule MappingRule, names []string) bool {
	for _, syn := range rule.Synonyms {
		lowerSyn := strings.ToLower(syn)
		for _, name := range names {
			lowerName := strings.ToLower(name)
			if strings.Contains(lowerName, lowerSyn) || strings.Contains(lowerSyn, lowerName) {
				return true
			}
		}
	}
	return false
}
