package vault

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFrontmatter extracts key: value pairs from the front-matter block
// between two --- delimiter lines at the top of text. It never fails: text
// with no delimiters, an unterminated block, or malformed lines yields an
// empty (or partial) map. Surrounding double quotes are stripped from
// values.
func ParseFrontmatter(text string) map[string]string {
	result := map[string]string{}

	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != "---" {
		return result
	}

	closed := false
	var block []string
	for _, line := range lines[1:] {
		if strings.TrimRight(line, "\r") == "---" {
			closed = true
			break
		}
		block = append(block, line)
	}
	if !closed {
		return result
	}

	for _, line := range block {
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		val = strings.TrimSpace(val)
		val = strings.Trim(val, `"`)
		result[key] = val
	}
	return result
}

// RenderNote serializes a front-matter struct and a markdown body into the
// two-part document shape used by every action file.
func RenderNote(frontmatter interface{}, body string) (string, error) {
	fmData, err := yaml.Marshal(frontmatter)
	if err != nil {
		return "", fmt.Errorf("failed to marshal frontmatter: %w", err)
	}
	return fmt.Sprintf("---\n%s---\n\n%s", string(fmData), body), nil
}
