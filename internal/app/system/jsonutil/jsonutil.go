// Package jsonutil writes the API's JSON envelopes and decodes request
// bodies.
//
// Success bodies carry "success": true plus endpoint fields; failures are
// always {"success": false, "error": "..."}.
package jsonutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes bounds request bodies read by Decode.
const MaxBodyBytes = 1 << 20

// Fields is a success payload. "success" is added by OK.
type Fields map[string]any

// Write encodes v with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes {"success": true, ...f}.
func OK(w http.ResponseWriter, status int, f Fields) {
	body := make(map[string]any, len(f)+1)
	for k, v := range f {
		body[k] = v
	}
	body["success"] = true
	Write(w, status, body)
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Error writes {"success": false, "error": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, errorBody{Success: false, Error: msg})
}

// ErrBadBody is returned by Decode for empty, oversized or malformed bodies.
var ErrBadBody = errors.New("request body must be a JSON object")

// Decode reads one JSON object from r's body into dst.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrBadBody)
		}
		return fmt.Errorf("%w: %v", ErrBadBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrBadBody)
	}
	return nil
}
