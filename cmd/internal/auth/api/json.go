package authapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// Boundary error codes. Every failure a handler reports is collapsed to one
// of these short machine codes; the message alongside is client-safe and
// never carries storage or provider detail.
const (
	codeUnauthorized = "unauthorized"
	codeBadRequest   = "bad_request"
	codeNotFound     = "not_found"
	codeInternal     = "internal"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

// writeJSON renders v as a non-cacheable JSON response. Encoding happens
// before the header flush so a marshal failure can still produce a clean
// 500 instead of a truncated body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	buf, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":{"code":"internal","message":"response encoding failed"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	// Token and session payloads must never land in a shared cache.
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: apiError{Code: code, Message: msg}})
}

var errNotSingleJSON = errors.New("body must be a single JSON value")

// decodeJSON parses the request body into dst, enforcing the size cap,
// rejecting unknown fields, and requiring exactly one JSON value.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if r.Body == nil {
		return errNotSingleJSON
	}
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}

	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return errNotSingleJSON
	}
	return nil
}
