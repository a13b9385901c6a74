package llm

import "strings"

// CleanJSONResponse strips a leading ```json / trailing ``` fence from an
// LLM response, the same normalization the teacher's narrative generator
// applies before unmarshaling (cleanJSONResponse in
// internal/narrative/generator.go).
func CleanJSONResponse(response string) string {
	text := strings.TrimSpace(response)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx != -1 {
			text = text[:idx]
		}
	}
	return strings.TrimSpace(text)
}
