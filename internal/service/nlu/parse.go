package nlu

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/seu-repo/voice-banking/internal/domain"
)

// DecodeObject reads model output as a JSON object. When strict JSON fails it
// retries with a permissive literal parse that accepts single quotes, bare
// True/False and None. ok is false when neither yields an object.
func DecodeObject(raw string) (map[string]interface{}, bool) {
	text := stripFences(raw)
	if text == "" {
		return nil, false
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(text), &doc); err == nil && doc != nil {
		return doc, true
	}

	var loose interface{}
	if err := yaml.Unmarshal([]byte(text), &loose); err != nil {
		return nil, false
	}
	obj, ok := normalizeLiteral(loose).(map[string]interface{})
	if !ok {
		return nil, false
	}
	return obj, true
}

// ParseIntentResult turns raw classifier output into an IntentResult. It
// never fails: unreadable or schema-violating output yields the empty result.
func ParseIntentResult(raw string) domain.IntentResult {
	doc, ok := DecodeObject(raw)
	if !ok {
		return domain.IntentResult{}
	}
	if err := validate(intentValidator, doc); err != nil {
		return domain.IntentResult{}
	}

	result := domain.IntentResult{Intent: domain.ParseIntent(doc["intent"].(string))}
	result.Summary, _ = doc["summary"].(string)
	result.AuthRequired, _ = doc["auth_required"].(bool)
	result.Questions, _ = doc["questions"].(string)
	return result
}

func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}

// normalizeLiteral converts the YAML view of a literal into JSON-like values:
// map keys become strings and the None literal becomes nil.
func normalizeLiteral(v interface{}) interface{} {
	switch value := v.(type) {
	case map[string]interface{}:
		for k, item := range value {
			value[k] = normalizeLiteral(item)
		}
		return value
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(value))
		for k, item := range value {
			key, ok := k.(string)
			if !ok {
				return nil
			}
			out[key] = normalizeLiteral(item)
		}
		return out
	case []interface{}:
		for i, item := range value {
			value[i] = normalizeLiteral(item)
		}
		return value
	case string:
		if value == "None" {
			return nil
		}
		return value
	default:
		return value
	}
}
