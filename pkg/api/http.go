// Package api wires the versioned HTTP surface onto a gorilla/mux router.
package api

import (
	"net/http"

	"chatstore/pkg/api/handlers"
	"chatstore/pkg/auth"

	"github.com/gorilla/mux"
)

// NewRouter builds the /v1 API router. Every route behind /v1 runs through
// the signed-user middleware; backend and admin keys pass without a
// signature, frontend keys must present X-User-ID/X-User-Signature.
func NewRouter() *mux.Router {
	r := mux.NewRouter()

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(func(next http.Handler) http.Handler { return auth.RequireSignedUser(next) })

	handlers.RegisterConversations(v1)
	handlers.RegisterMessages(v1)
	handlers.RegisterReactions(v1)
	handlers.RegisterDirectory(v1)
	handlers.RegisterSigning(v1)

	return r
}
