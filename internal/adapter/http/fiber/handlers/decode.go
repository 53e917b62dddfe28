package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/seu-repo/voice-banking/internal/domain"
)

// decodeStrict parses a JSON body and rejects fields the request type does
// not declare.
func decodeStrict(body []byte, dst interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrValidation, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: invalid request body: trailing data", domain.ErrValidation)
	}
	return nil
}
