package gemini

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      float64                `json:"temperature"`
	TopP             float64                `json:"topP"`
	Seed             int                    `json:"seed"`
	MaxOutputTokens  int                    `json:"maxOutputTokens"`
	ResponseMimeType string                 `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]interface{} `json:"responseSchema,omitempty"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type vertexAISearch struct {
	Datastore string `json:"datastore"`
}

type retrieval struct {
	VertexAISearch vertexAISearch `json:"vertexAiSearch"`
}

type tool struct {
	Retrieval *retrieval `json:"retrieval,omitempty"`
}

type generateRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
	SafetySettings    []safetySetting  `json:"safetySettings"`
	Tools             []tool           `json:"tools,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content           content `json:"content"`
		FinishReason      string  `json:"finishReason"`
		GroundingMetadata struct {
			GroundingChunks []struct {
				RetrievedContext struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
					Text  string `json:"text"`
				} `json:"retrievedContext"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}
