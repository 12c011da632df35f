package trackAdmin

import (
	"encoding/json"
	"strings"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// parseValidationError reads a 400 body in either of the shapes the backend
// emits:
//
//	{"message": "...", "errors": {"email": "must be valid"}}
//	{"message": "...", "errors": [{"field": "email", "message": "must be valid"}]}
//
// It returns nil when the body carries neither a message nor field errors.
func parseValidationError(op string, body []byte) *ValidationError {
	var envelope struct {
		Message string          `json:"message"`
		Error   string          `json:"error"`
		Errors  json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}

	fields := map[string]string{}
	raw := strings.TrimSpace(string(envelope.Errors))
	switch {
	case strings.HasPrefix(raw, "{"):
		var byName map[string]string
		if json.Unmarshal(envelope.Errors, &byName) == nil {
			for k, v := range byName {
				fields[k] = v
			}
		}
	case strings.HasPrefix(raw, "["):
		var list []fieldError
		if json.Unmarshal(envelope.Errors, &list) == nil {
			for _, fe := range list {
				if fe.Field != "" {
					fields[fe.Field] = fe.Message
				}
			}
		}
	}

	message := envelope.Message
	if message == "" {
		message = envelope.Error
	}
	if message == "" && len(fields) == 0 {
		return nil
	}
	return &ValidationError{Op: op, Message: message, Fields: fields}
}
