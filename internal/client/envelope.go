package client

import (
	"bytes"
	"encoding/json"
)

// envelope is the uniform wrapper used by the backing API:
//
//	{"success": true, "data": ..., "message": "..."}
//	{"success": false, "error": {"message": "...", "code": "...", "details": ...}}
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *envelopeError  `json:"error"`
}

type envelopeError struct {
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Details json.RawMessage `json:"details"`
}

// interpret turns a status code and raw body into the payload handed to
// callers, or an APIError.
func interpret(status int, body []byte) (json.RawMessage, error) {
	failed := status < 200 || status >= 300
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) == 0 || !json.Valid(trimmed) {
		if failed {
			return nil, statusError(status)
		}
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		// Valid JSON that is not an object (array, string, number).
		if failed {
			return nil, statusError(status)
		}
		return json.RawMessage(trimmed), nil
	}

	if failed {
		apiErr := statusError(status)
		switch {
		case env.Error != nil:
			if env.Error.Message != "" {
				apiErr.Message = env.Error.Message
			}
			apiErr.Code = env.Error.Code
			if len(env.Error.Details) > 0 && !bytes.Equal(env.Error.Details, []byte("null")) {
				apiErr.Details = env.Error.Details
			}
		case env.Message != "":
			apiErr.Message = env.Message
		}
		return nil, apiErr
	}

	if env.Success != nil && *env.Success && len(env.Data) > 0 {
		return env.Data, nil
	}
	return json.RawMessage(trimmed), nil
}
