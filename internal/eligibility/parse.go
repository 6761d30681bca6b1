package eligibility

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/qri-io/jsonschema"

	"github.com/garnizeh/citizenhub/internal/catalog"
)

var (
	// ErrNoArray is returned when the model text holds no bracketed array.
	ErrNoArray = errors.New("no JSON array found in response")
	// ErrSchemaMismatch is returned when the array does not match the scheme record shape.
	ErrSchemaMismatch = errors.New("response does not match scheme schema")
	// ErrUnknownSchemes is returned when every scheme in the answer is missing from the catalog.
	ErrUnknownSchemes = errors.New("response names no catalog schemes")
)

var fenceRe = regexp.MustCompile("```json\\n?|\\n?```")

const schemeListSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "additionalProperties": false,
    "required": ["id", "title", "description", "amount", "deadline", "category", "eligibility",
      "benefits", "applicationSteps", "isNew", "isUrgent", "applied", "slots", "ministry"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "title": {"type": "string", "minLength": 1},
      "description": {"type": "string"},
      "amount": {"type": "string"},
      "deadline": {"type": "string"},
      "category": {"type": "string"},
      "eligibility": {"type": "array", "items": {"type": "string"}},
      "benefits": {"type": "array", "items": {"type": "string"}},
      "applicationSteps": {"type": "array", "items": {"type": "string"}},
      "isNew": {"type": "boolean"},
      "isUrgent": {"type": "boolean"},
      "applied": {"type": "integer", "minimum": 0},
      "slots": {"type": "integer", "minimum": 0},
      "ministry": {"type": "string"}
    }
  }
}`

var schemeSchema = mustCompile(schemeListSchema)

func mustCompile(doc string) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(doc), rs); err != nil {
		panic(fmt.Sprintf("compile scheme schema: %v", err))
	}
	return rs
}

// extractArray strips code fences and returns the text from the first '[' to the last ']'.
func extractArray(s string) string {
	s = strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
	first := strings.Index(s, "[")
	last := strings.LastIndex(s, "]")
	if first == -1 || last == -1 || last < first {
		return ""
	}
	return s[first : last+1]
}

// ParseSchemes extracts the scheme array from model output and validates it
// against the scheme record schema before decoding.
func ParseSchemes(ctx context.Context, raw string) ([]catalog.Scheme, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("empty response")
	}

	j := extractArray(raw)
	if j == "" {
		return nil, ErrNoArray
	}
	if !json.Valid([]byte(j)) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrSchemaMismatch)
	}

	verrs, err := schemeSchema.ValidateBytes(ctx, []byte(j))
	if err != nil {
		return nil, fmt.Errorf("schema validate: %w", err)
	}
	if len(verrs) > 0 {
		var sb strings.Builder
		for _, v := range verrs {
			sb.WriteString(v.PropertyPath)
			sb.WriteString(": ")
			sb.WriteString(v.Message)
			sb.WriteString("; ")
		}
		return nil, fmt.Errorf("%w: %s", ErrSchemaMismatch, sb.String())
	}

	var schemes []catalog.Scheme
	if err := json.Unmarshal([]byte(j), &schemes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if schemes == nil {
		schemes = []catalog.Scheme{}
	}
	return schemes, nil
}

// KnownSchemes keeps the parsed records whose id is in the catalog, once each,
// in the order the model gave them. It fails when the model answered with
// schemes but none of them exist.
func KnownSchemes(parsed, catalogSchemes []catalog.Scheme) ([]catalog.Scheme, error) {
	known := make(map[string]bool, len(catalogSchemes))
	for _, s := range catalogSchemes {
		known[s.ID] = true
	}
	out := make([]catalog.Scheme, 0, len(parsed))
	seen := make(map[string]bool, len(parsed))
	for _, s := range parsed {
		if !known[s.ID] || seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	if len(parsed) > 0 && len(out) == 0 {
		return nil, fmt.Errorf("%w: %d records, none in the catalog", ErrUnknownSchemes, len(parsed))
	}
	return out, nil
}
