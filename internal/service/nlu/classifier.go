package nlu

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/domain"
	"github.com/seu-repo/voice-banking/internal/observability/telemetry"
	"github.com/seu-repo/voice-banking/internal/ports"
)

// Classifier maps an utterance onto the intent taxonomy.
type Classifier struct {
	llm ports.LanguageModel
	log *zap.Logger
}

func NewClassifier(llm ports.LanguageModel, log *zap.Logger) *Classifier {
	return &Classifier{llm: llm, log: log}
}

// Classify returns the parsed intent. Unreadable model output is the empty
// result, not an error; only provider failures are returned.
func (c *Classifier) Classify(ctx context.Context, utterance string) (domain.IntentResult, error) {
	resp, err := c.llm.Generate(ctx, domain.GenerateRequest{
		SystemInstruction: classifyInstruction,
		Turns:             []domain.Turn{{Role: domain.RoleUser, Text: utterance}},
		ResponseSchema:    IntentResponseSchema(),
		JSONResponse:      true,
		TopP:              1,
	})
	if err != nil {
		return domain.IntentResult{}, err
	}

	result := ParseIntentResult(resp.Text)
	if result.Empty() {
		c.log.Warn("Classifier output could not be used", zap.String("raw", resp.Text))
		telemetry.IntentClassificationsTotal.WithLabelValues("unparseable").Inc()
		return result, nil
	}

	telemetry.IntentClassificationsTotal.WithLabelValues(string(result.Intent)).Inc()
	return result, nil
}

// Retriever answers from the grounded document corpus.
type Retriever struct {
	llm ports.LanguageModel
	log *zap.Logger
}

func NewRetriever(llm ports.LanguageModel, log *zap.Logger) *Retriever {
	return &Retriever{llm: llm, log: log}
}

// Retrieve returns the generated answer and the retrieved snippets joined by
// blank lines.
func (r *Retriever) Retrieve(ctx context.Context, query string) (string, string, error) {
	resp, err := r.llm.Generate(ctx, domain.GenerateRequest{
		SystemInstruction: retrievalInstruction,
		Turns:             []domain.Turn{{Role: domain.RoleUser, Text: query}},
		Grounded:          true,
		TopP:              0.95,
	})
	if err != nil {
		return "", "", err
	}

	r.log.Debug("Grounded retrieval completed", zap.Int("snippets", len(resp.Grounding)))
	return strings.TrimSpace(resp.Text), strings.Join(resp.Grounding, "\n\n"), nil
}

// ExtractPayload asks the model for the route's payload given the conversation
// so far and validates it against the route schema.
func ExtractPayload(ctx context.Context, llm ports.LanguageModel, route Route, history []domain.Turn) (map[string]interface{}, error) {
	resp, err := llm.Generate(ctx, domain.GenerateRequest{
		SystemInstruction: PayloadInstruction(route),
		Turns:             history,
		JSONResponse:      true,
		TopP:              1,
	})
	if err != nil {
		return nil, err
	}

	payload, ok := DecodeObject(resp.Text)
	if !ok {
		return nil, fmt.Errorf("%w: payload is not a JSON object", domain.ErrValidation)
	}
	dropNulls(payload)
	if err := route.Validate(payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func dropNulls(payload map[string]interface{}) {
	for k, v := range payload {
		if v == nil {
			delete(payload, k)
		}
	}
}
