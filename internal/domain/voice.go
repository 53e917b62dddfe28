package domain

// AudioFormat is one decoding assumption tried by the speech recognizer.
type AudioFormat struct {
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate_hertz,omitempty"`
}

type VoiceResponse struct {
	Text     string `json:"text"`
	Audio    string `json:"audio,omitempty"` // Base64 encoded MP3
	Language string `json:"language_code,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
}

// Role of a conversation turn, as understood by the language model.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// GenerateRequest is a single call to the language model.
type GenerateRequest struct {
	SystemInstruction string
	Turns             []Turn
	// ResponseSchema forces a JSON reply shaped by the schema when set.
	ResponseSchema map[string]interface{}
	JSONResponse   bool
	// Grounded enables retrieval over the configured document corpus.
	Grounded bool
	TopP     float64
}

type GenerateResponse struct {
	Text      string
	Grounding []string
}
