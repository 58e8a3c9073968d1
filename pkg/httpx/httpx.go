// Package httpx abstracts a lean handler shape over net/http and fasthttp
// so probe-style endpoints can be served by either engine.
package httpx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// Request is the unified request representation used by handlers.
// Handlers should prefer Request.Ctx for cancellation and values.
type Request struct {
	Ctx        context.Context
	Method     string
	Path       string
	Header     http.Header
	Body       io.ReadCloser
	RemoteAddr string
	// Raw holds the underlying transport-specific request object
	// (*http.Request or *fasthttp.RequestCtx) for escape hatches.
	Raw interface{}
}

// ResponseWriter is the subset of http.ResponseWriter semantics the
// adapters guarantee.
type ResponseWriter interface {
	Header() http.Header
	Write([]byte) (int, error)
	WriteHeader(status int)
}

// HandlerFunc is the application handler signature used across adapters.
type HandlerFunc func(w ResponseWriter, r *Request)

// WriteJSON marshals v and writes it with the given status.
func WriteJSON(w ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(jsonWriter{w}).Encode(v)
}

type jsonWriter struct{ w ResponseWriter }

func (j jsonWriter) Write(b []byte) (int, error) { return j.w.Write(b) }
