package llmclient

import "fmt"

// validateInput checks a tool call's Input against the declared InputSchema.
// InputSchema is a JSON-Schema-shaped map but only "type": "object",
// "properties", and "required" are enforced here — tool schemas in this
// domain are narrow enough (a handful of scalar fields) that full JSON
// Schema validation would be pulling in a dependency to check string/number/
// bool/array typing on a handful of fields, not to evaluate composed
// predicates, so the checks below cover exactly what §9's "tool calls as
// free-form maps" design note calls for: presence of required fields and a
// basic type match.
func validateInput(schema map[string]interface{}, input map[string]interface{}) error {
	if schema == nil {
		return nil
	}

	required, _ := schema["required"].([]interface{})
	for _, r := range required {
		name, ok := r.(string)
		if !ok {
			continue
		}
		if _, present := input[name]; !present {
			return fmt.Errorf("missing required field %q", name)
		}
	}

	properties, _ := schema["properties"].(map[string]interface{})
	for name, value := range input {
		propSchema, ok := properties[name].(map[string]interface{})
		if !ok {
			continue
		}
		wantType, _ := propSchema["type"].(string)
		if wantType == "" {
			continue
		}
		if !matchesJSONType(value, wantType) {
			return fmt.Errorf("field %q: expected type %q", name, wantType)
		}
	}
	return nil
}

func matchesJSONType(value interface{}, wantType string) bool {
	switch wantType {
	case "string":
		_, ok := value.(string)
		return ok
	case "number", "integer":
		switch value.(type) {
		case float64, int, int64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "object":
		_, ok := value.(map[string]interface{})
		return ok
	case "array":
		_, ok := value.([]interface{})
		return ok
	}
	return true
}
