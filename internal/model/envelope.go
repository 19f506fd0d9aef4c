package model

import "encoding/json"

// Application-level status codes carried inside the response envelope.
// The transport status is not authoritative; the envelope code is.
const (
	CodeOK             = 200
	CodeSessionExpired = 401
)

// Envelope is the wire format every Nola API response is wrapped in:
// {"code": 200, "errMsg": null, "data": ...}. Data stays raw so the
// gateway can unwrap it into whatever the caller expects.
type Envelope struct {
	Code   int             `json:"code"`
	ErrMsg *string         `json:"errMsg"`
	Data   json.RawMessage `json:"data"`
}

// Message returns the server-supplied human-readable error message,
// or the empty string when none was sent.
func (e *Envelope) Message() string {
	if e.ErrMsg == nil {
		return ""
	}
	return *e.ErrMsg
}
