package api

import "encoding/json"

// TokenExpiredMessage is the backend message reserved as the refresh trigger
const TokenExpiredMessage = "Token expired"

// SessionExpiredMessage is returned when a refresh attempt fails and the session is destroyed
const SessionExpiredMessage = "Session expired, please login again"

// Envelope is the wrapper every backend response uses.
// Success: {status, message, data}. Failure: {status, message, error}.
type Envelope struct {
	Status  any             `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// DecodeEnvelope parses body leniently: an empty or non-JSON body yields an empty envelope
func DecodeEnvelope(body []byte) (Envelope, bool) {
	var env Envelope
	if len(body) == 0 {
		return env, false
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, false
	}
	return env, true
}

// Failed reports whether a 2xx body still carries a failure status
func (e Envelope) Failed() bool {
	switch s := e.Status.(type) {
	case bool:
		return !s
	case string:
		switch s {
		case "error", "fail", "failed", "false":
			return true
		}
	}
	return false
}
