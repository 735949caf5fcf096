package llm

import "github.com/google/generative-ai-go/genai"

// toSchema converts the client-supplied JSON-schema descriptor into the SDK's
// schema type. Unknown keywords are ignored; a nil or empty descriptor yields
// nil (schema enforcement off).
func toSchema(m map[string]any) *genai.Schema {
	if len(m) == 0 {
		return nil
	}

	s := &genai.Schema{}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	if n, ok := m["nullable"].(bool); ok {
		s.Nullable = n
	}

	typ, _ := m["type"].(string)
	switch typ {
	case "object":
		s.Type = genai.TypeObject
		if props, ok := m["properties"].(map[string]any); ok {
			s.Properties = make(map[string]*genai.Schema, len(props))
			for name, raw := range props {
				if pm, ok := raw.(map[string]any); ok {
					s.Properties[name] = toSchema(pm)
				}
			}
		}
		if req, ok := m["required"].([]any); ok {
			for _, r := range req {
				if name, ok := r.(string); ok {
					s.Required = append(s.Required, name)
				}
			}
		}
	case "array":
		s.Type = genai.TypeArray
		if items, ok := m["items"].(map[string]any); ok {
			s.Items = toSchema(items)
		}
	case "string":
		s.Type = genai.TypeString
		if f, ok := m["format"].(string); ok {
			s.Format = f
		}
		if enum, ok := m["enum"].([]any); ok {
			for _, e := range enum {
				if v, ok := e.(string); ok {
					s.Enum = append(s.Enum, v)
				}
			}
		}
	case "number":
		s.Type = genai.TypeNumber
	case "integer":
		s.Type = genai.TypeInteger
	case "boolean":
		s.Type = genai.TypeBoolean
	default:
		s.Type = genai.TypeUnspecified
	}
	return s
}
