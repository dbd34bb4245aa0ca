// internal/rfq/extract/jsonscan.go
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	trailingCommaObject = regexp.MustCompile(`,\s*}`)
	trailingCommaArray  = regexp.MustCompile(`,\s*\]`)
	unquotedKey         = regexp.MustCompile(`(\w+):`)
)

// extractJSONObject returns the span from the first '{' to the last '}' in
// content. Models often wrap the JSON object in prose on either side.
func extractJSONObject(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return content[start : end+1], true
}

// cleanupJSON repairs the syntax mistakes models make most often: trailing
// commas, single-quoted strings, unquoted keys, and embedded newlines.
func cleanupJSON(s string) string {
	s = trailingCommaObject.ReplaceAllString(s, "}")
	s = trailingCommaArray.ReplaceAllString(s, "]")
	s = strings.ReplaceAll(s, "'", `"`)
	s = strings.ReplaceAll(s, "\n", " ")
	s = unquotedKey.ReplaceAllString(s, `"$1":`)
	return s
}

// parseCandidate turns raw model output into a candidate object. It tries a
// straight parse of the embedded JSON object first, then one cleanup pass.
func parseCandidate(content string) (map[string]interface{}, error) {
	jsonStr, ok := extractJSONObject(content)
	if !ok {
		return nil, fmt.Errorf("no JSON object found in model output")
	}

	var candidate map[string]interface{}
	if err := json.Unmarshal([]byte(jsonStr), &candidate); err == nil {
		return candidate, nil
	}

	cleaned := cleanupJSON(jsonStr)
	if err := json.Unmarshal([]byte(cleaned), &candidate); err != nil {
		return nil, fmt.Errorf("model output is not parseable JSON: %w", err)
	}
	return candidate, nil
}
