package errors

import (
	"encoding/json"
	"net/http"
)

// errorBody is the structured error payload the API returns on failures.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path"`
	Details any    `json:"details"`
}

// Classify translates a failed HTTP response into an AppError. It is total:
// any status and any body (including empty, malformed or non-JSON) produce a
// non-nil error with a resolved user message. Parse failures are absorbed.
func Classify(status int, body []byte) *AppError {
	var parsed errorBody
	if len(body) > 0 {
		// Malformed bodies are fine; classification falls through to defaults.
		_ = json.Unmarshal(body, &parsed)
	}

	code := parsed.Code
	if code == "" {
		if status == http.StatusUnauthorized {
			code = CodeUnauthorized
		} else {
			code = CodeUnknownError
		}
	}

	message := resolveMessage(code, parsed.Message, status)

	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Details: parsed.Details,
		Err:     sentinelFor(code),
	}
}

// resolveMessage applies the lookup chain: code table, server-supplied
// message, HTTP status line, generic fallback.
func resolveMessage(code, serverMessage string, status int) string {
	if msg, ok := userMessages[code]; ok {
		return msg
	}
	if msg, ok := providerMessages[code]; ok {
		return msg
	}
	if serverMessage != "" {
		return serverMessage
	}
	return userMessageForStatus(status)
}
