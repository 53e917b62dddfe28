package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/domain"
	"github.com/seu-repo/voice-banking/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/voice-banking/internal/observability/telemetry"
)

const (
	publicEndpoint  = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel    = "gemini-2.0-flash"
	maxOutputTokens = 65535
)

// Config selects between the public Generative Language API (APIKey) and
// Vertex AI (Project + Location + AccessToken). Grounded requests need a
// Vertex AI Search Datastore.
type Config struct {
	BaseURL     string
	Model       string
	APIKey      string
	AccessToken string
	Project     string
	Location    string
	Datastore   string
	Timeout     time.Duration
}

// Client implements ports.LanguageModel over the generateContent REST call.
type Client struct {
	cfg  Config
	http *circuitbreaker.HTTPClient
	log  *zap.Logger
}

func NewClient(cfg Config, httpClient *circuitbreaker.HTTPClient, log *zap.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{cfg: cfg, http: httpClient, log: log}
}

func (c *Client) endpoint() string {
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	if c.cfg.Project != "" {
		if base == "" {
			base = fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1", c.cfg.Location)
		}
		return fmt.Sprintf("%s/projects/%s/locations/%s/publishers/google/models/%s:generateContent",
			base, c.cfg.Project, c.cfg.Location, c.cfg.Model)
	}
	if base == "" {
		base = publicEndpoint
	}
	return fmt.Sprintf("%s/models/%s:generateContent", base, c.cfg.Model)
}

func (c *Client) headers() map[string]string {
	headers := make(map[string]string, 1)
	if c.cfg.AccessToken != "" {
		headers["Authorization"] = "Bearer " + c.cfg.AccessToken
	} else if c.cfg.APIKey != "" {
		headers["x-goog-api-key"] = c.cfg.APIKey
	}
	return headers
}

// Generate sends one generateContent request and returns the concatenated
// text parts plus any retrieved grounding snippets.
func (c *Client) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "gemini.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("gemini.model", c.cfg.Model),
		attribute.Bool("gemini.grounded", req.Grounded),
		attribute.Int("gemini.turns", len(req.Turns)),
	)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body := c.buildRequest(req)

	var resp generateResponse
	if err := c.http.PostJSON(ctx, c.endpoint(), c.headers(), body, &resp); err != nil {
		span.RecordError(err)
		c.log.Error("Gemini request failed", zap.String("model", c.cfg.Model), zap.Error(err))
		return nil, err
	}

	if resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: gemini blocked the prompt: %s", domain.ErrUpstreamUnavailable, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: gemini returned no candidates", domain.ErrUpstreamUnavailable)
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}

	var grounding []string
	for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
		if snippet := strings.TrimSpace(chunk.RetrievedContext.Text); snippet != "" {
			grounding = append(grounding, snippet)
		}
	}

	c.log.Debug("Gemini response received",
		zap.Int("chars", text.Len()),
		zap.Int("grounding_chunks", len(grounding)),
		zap.String("finish_reason", candidate.FinishReason),
	)

	return &domain.GenerateResponse{Text: text.String(), Grounding: grounding}, nil
}

func (c *Client) buildRequest(req domain.GenerateRequest) generateRequest {
	topP := req.TopP
	if topP == 0 {
		topP = 1
	}

	body := generateRequest{
		Contents: make([]content, 0, len(req.Turns)),
		GenerationConfig: generationConfig{
			Temperature:     1,
			TopP:            topP,
			Seed:            0,
			MaxOutputTokens: maxOutputTokens,
		},
		SafetySettings: safetySettings(),
	}

	if req.SystemInstruction != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: req.SystemInstruction}}}
	}
	for _, turn := range req.Turns {
		body.Contents = append(body.Contents, content{
			Role:  string(turn.Role),
			Parts: []part{{Text: turn.Text}},
		})
	}
	if req.JSONResponse || req.ResponseSchema != nil {
		body.GenerationConfig.ResponseMimeType = "application/json"
		body.GenerationConfig.ResponseSchema = req.ResponseSchema
	}
	if req.Grounded && c.cfg.Datastore != "" {
		body.Tools = []tool{{
			Retrieval: &retrieval{VertexAISearch: vertexAISearch{Datastore: c.cfg.Datastore}},
		}}
	}
	return body
}

func safetySettings() []safetySetting {
	categories := []string{
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_HARASSMENT",
	}
	settings := make([]safetySetting, 0, len(categories))
	for _, category := range categories {
		settings = append(settings, safetySetting{Category: category, Threshold: "OFF"})
	}
	return settings
}
