package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-session-keeper/credential"
	"github.com/jrsteele09/go-session-keeper/internal/errors"
)

const contentTypeJSON = "application/json; charset=utf-8"

// HealthHandler reports that the process is serving.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// SessionHandler serves the client-facing view of the current session, refreshing the
// access token first when it has expired. A failed refresh is reported through the view's
// error field; a request without a session gets an empty object.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := s.currentSession(w, r)
		if !ok {
			writeJSON(w, http.StatusOK, struct{}{})
			return
		}
		writeJSON(w, http.StatusOK, s.manager.Project(rec))
	}
}

// SignOutHandler drops the current session.
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.carrier.Clear(w, r); err != nil {
			s.logger.Err(err).Msg("Failed to clear session on sign-out")
			writeJSONError(w, http.StatusInternalServerError, "server_error")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// AccessTokenHandler hands a live access token to the client for direct provider API calls.
func (s *Server) AccessTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := CredentialFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"accessToken":        rec.AccessToken,
			"accessTokenExpires": rec.AccessTokenExpiresAt,
		})
	}
}

// PreflightHandler answers CORS preflight requests that reach the router.
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// CompleteSignIn starts a session from the grant delivered by the authorization layer and
// stores it with the response under a new session identifier. It returns the view the
// client should see.
func (s *Server) CompleteSignIn(w http.ResponseWriter, r *http.Request, signIn credential.SignIn) (credential.View, error) {
	rec := s.manager.Materialize(r.Context(), credential.Record{}, true, &signIn)
	if rec.Error.IsSet() {
		return s.manager.Project(rec), errors.Wrapf(errors.ErrMalformedGrant, "sign-in for %q was not accepted", signIn.Principal.ID)
	}

	if err := s.carrier.Start(w, r, rec); err != nil {
		return credential.View{}, errors.Wrapf(err, "failed to store session for %q", signIn.Principal.ID)
	}

	s.logger.Info().Str("principal", rec.Principal.ID).Time("expires_at", rec.ExpiresAt()).Msg("Session started")
	return s.manager.Project(rec), nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
