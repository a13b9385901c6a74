// Package prompts loads versioned LLM prompt templates from disk, keyed by
// (task, version), preserving the original Python system's get_prompt_path
// addressing scheme instead of inlining every prompt as a Go string literal.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

//go:embed templates
var templatesFS embed.FS

var funcMap = template.FuncMap{
	"join": strings.Join,
}

var (
	cacheMu sync.Mutex
	cache   = map[string]*template.Template{}
)

// Task names addressable via Render.
const (
	TaskClusterValidation  = "cluster_validation"
	TaskEnrichmentLabel    = "enrichment_label"
	TaskEnrichmentRationale = "enrichment_rationale"
	TaskSynthesis          = "synthesis"
	TaskMemory             = "memory"
	TaskContinuity         = "continuity"
	TaskAssetFilter        = "asset_filter"
)

// Render loads templates/<task>/<version>.txt (caching parsed templates)
// and executes it against data, returning the rendered prompt text.
func Render(task, version string, data interface{}) (string, error) {
	tmpl, err := load(task, version)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s/%s: %w", task, version, err)
	}
	return buf.String(), nil
}

func load(task, version string) (*template.Template, error) {
	key := task + "/" + version

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if tmpl, ok := cache[key]; ok {
		return tmpl, nil
	}

	path := fmt.Sprintf("templates/%s/%s.txt", task, version)
	data, err := templatesFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load prompt template %s: %w", key, err)
	}

	tmpl, err := template.New(key).Funcs(funcMap).Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", key, err)
	}
	cache[key] = tmpl
	return tmpl, nil
}
