package zhcw

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/drawsync/internal/core/domain"
)

// successCode is the errorCode the source uses for a good response.
const successCode = "0"

// envelope is the JSON document inside the JSONP callback.
type envelope struct {
	ErrorCode json.RawMessage  `json:"errorCode"`
	Message   string           `json:"message"`
	Value     []domain.RawDraw `json:"value"`
}

// Unwrap returns the text between the first '(' and the last ')'.
func Unwrap(body []byte) ([]byte, error) {
	start := bytes.IndexByte(body, '(')
	end := bytes.LastIndexByte(body, ')')
	if start < 0 || end < 0 || end <= start {
		return nil, ErrMalformedEnvelope
	}
	return body[start+1 : end], nil
}

// decodeEnvelope unwraps and decodes a JSONP response body.
// A non-success errorCode is returned as a *RemoteError.
func decodeEnvelope(body []byte) ([]domain.RawDraw, error) {
	payload, err := Unwrap(body)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	code := errorCodeString(env.ErrorCode)
	if code != successCode {
		return nil, &RemoteError{Code: code, Message: env.Message}
	}
	return env.Value, nil
}

// errorCodeString normalises errorCode, which the source sends as a string
// but has been seen as a bare number.
func errorCodeString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
