package domain

import "time"

// DialogueState is a node of the slot-filling state machine.
type DialogueState string

const (
	StateAwaitingIntent      DialogueState = "AWAITING_INTENT"
	StateAwaitingAuthOrSlots DialogueState = "AWAITING_AUTH_OR_SLOTS"
	StateFillingSlots        DialogueState = "FILLING_SLOTS"
	StateReadyToDispatch     DialogueState = "READY_TO_DISPATCH"
	StateAborted             DialogueState = "ABORTED"
	StateInformationalDone   DialogueState = "INFORMATIONAL_DONE"
)

// Terminal reports whether no further user turns are accepted.
func (s DialogueState) Terminal() bool {
	switch s {
	case StateReadyToDispatch, StateAborted, StateInformationalDone:
		return true
	}
	return false
}

// Conversation is the persisted state of one dialogue session.
type Conversation struct {
	SessionID string        `json:"session_id"`
	State     DialogueState `json:"state"`
	Intent    IntentResult  `json:"intent"`
	History   []Turn        `json:"history"`
	Documents string        `json:"documents,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// DispatchResult records the banking operation run once all slots are known.
type DispatchResult struct {
	Operation string                 `json:"operation"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Result    interface{}            `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// TurnResult is what a single Start/Continue call hands back to the caller.
type TurnResult struct {
	SessionID    string          `json:"session_id"`
	State        DialogueState   `json:"state"`
	Reply        string          `json:"reply"`
	Intent       Intent          `json:"intent,omitempty"`
	AuthRequired bool            `json:"auth_required"`
	Documents    string          `json:"documents,omitempty"`
	Dispatch     *DispatchResult `json:"dispatch,omitempty"`
	Transcript   string          `json:"transcript,omitempty"`
	Audio        string          `json:"audio,omitempty"`
}

// ChatRequest is one user turn as received over HTTP or websocket. Audio, when
// present, is base64 encoded and replaces Text once transcribed; Language asks
// for a spoken reply.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text,omitempty"`
	Audio     string `json:"audio,omitempty"`
	Language  string `json:"language,omitempty"`
}
