package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-session-keeper/credential"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySessionView stores the client-facing view of the current session
	ContextKeySessionView ContextKey = "session_view"
	// ContextKeyCredential stores the full credential record of the current session
	ContextKeyCredential ContextKey = "credential"
)

// ViewFromContext returns the session view injected by RequireSession.
func ViewFromContext(ctx context.Context) (credential.View, bool) {
	view, ok := ctx.Value(ContextKeySessionView).(credential.View)
	return view, ok
}

// CredentialFromContext returns the credential record injected by RequireSession.
// It holds the refresh token and must stay on the server.
func CredentialFromContext(ctx context.Context) (credential.Record, bool) {
	rec, ok := ctx.Value(ContextKeyCredential).(credential.Record)
	return rec, ok
}

// RequireSession is middleware for API routes that need a usable access token.
// The session record is materialized (refreshed when expired) before the handler runs;
// requests without a session get a 401, and sessions whose refresh failed are cleared
// and answered with a 401 carrying the error tag so the client signs in again.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			rec, ok := s.currentSession(w, r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if rec.Error.IsSet() {
				s.clearSession(w, r)
				writeJSONError(w, http.StatusUnauthorized, rec.Error.String())
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySessionView, s.manager.Project(rec))
			ctx = context.WithValue(ctx, ContextKeyCredential, rec)
			next(w, r.WithContext(ctx))
		}
	}
}

// currentSession loads the request's session, materializes it and writes it back when it
// changed. ok is false when there is no usable session.
func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) (credential.Record, bool) {
	rec, ok, err := s.carrier.Load(r)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Discarding unreadable session")
		s.clearSession(w, r)
		return credential.Record{}, false
	}
	if !ok {
		return credential.Record{}, false
	}

	next := s.manager.Materialize(r.Context(), rec, false, nil)
	if next != rec {
		if err := s.carrier.Save(w, r, next); err != nil {
			s.logger.Err(err).Str("principal", next.Principal.ID).Msg("Failed to save session")
		}
	}
	return next, true
}

func (s *Server) clearSession(w http.ResponseWriter, r *http.Request) {
	if err := s.carrier.Clear(w, r); err != nil {
		s.logger.Err(err).Msg("Failed to clear session")
	}
}
