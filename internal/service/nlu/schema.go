package nlu

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/seu-repo/voice-banking/internal/domain"
)

// IntentResponseSchema is the response schema handed to the language model so
// that it replies with a classifier object. It uses the model's OpenAPI-style
// type names.
func IntentResponseSchema() map[string]interface{} {
	labels := make([]string, 0, len(domain.Intents))
	for _, intent := range domain.Intents {
		labels = append(labels, string(intent))
	}
	return map[string]interface{}{
		"description": "Schema for classifying the user's core intent.",
		"type":        "OBJECT",
		"properties": map[string]interface{}{
			"intent": map[string]interface{}{
				"description": "The primary intent or category of the user's request.",
				"type":        "STRING",
				"enum":        labels,
			},
			"summary": map[string]interface{}{
				"description": "Summary of the customer's request",
				"type":        "STRING",
			},
			"auth_required": map[string]interface{}{
				"type": "BOOLEAN",
			},
			"questions": map[string]interface{}{
				"description": "Questions to ask the customer",
				"type":        "STRING",
			},
		},
		"required": []string{"intent", "summary", "auth_required"},
	}
}

// intentValidator checks parsed classifier output before it is trusted.
var intentValidator = mustCompile(map[string]interface{}{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type":    "object",
	"properties": map[string]interface{}{
		"intent":        map[string]interface{}{"type": "string", "enum": intentLabels()},
		"summary":       map[string]interface{}{"type": "string"},
		"auth_required": map[string]interface{}{"type": "boolean"},
		"questions":     map[string]interface{}{"type": []string{"string", "null"}},
	},
	"required": []string{"intent", "summary", "auth_required"},
})

func intentLabels() []interface{} {
	labels := make([]interface{}, 0, len(domain.Intents))
	for _, intent := range domain.Intents {
		labels = append(labels, string(intent))
	}
	return labels
}

func mustCompile(schema interface{}) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("nlu: invalid schema: %v", err))
	}
	return compiled
}

// validate returns nil when doc satisfies schema, otherwise an error listing
// every violation.
func validate(schema *gojsonschema.Schema, doc interface{}) error {
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	msg := ""
	for i, desc := range result.Errors() {
		if i > 0 {
			msg += "; "
		}
		msg += desc.String()
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}
