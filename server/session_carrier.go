package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-session-keeper/credential"
	"github.com/jrsteele09/go-session-keeper/internal/errors"
	"github.com/jrsteele09/go-session-keeper/server/loginsession"
	"github.com/jrsteele09/go-session-keeper/server/sessiontoken"
)

// SessionCarrier moves a credential record between requests.
//
// Load reports ok=false when the request carries no session. A session that is present
// but unreadable is returned as an error and should be cleared by the caller.
// Start begins a new session for a fresh sign-in and never reuses an identifier the
// request presented; Save writes an updated record back into the current session.
type SessionCarrier interface {
	Load(r *http.Request) (rec credential.Record, ok bool, err error)
	Start(w http.ResponseWriter, r *http.Request, rec credential.Record) error
	Save(w http.ResponseWriter, r *http.Request, rec credential.Record) error
	Clear(w http.ResponseWriter, r *http.Request) error
}

var (
	_ SessionCarrier = (*CookieCarrier)(nil)
	_ SessionCarrier = (*StoreCarrier)(nil)
)

// CookieCarrier keeps the whole record in an encrypted, HTTP-only cookie.
type CookieCarrier struct {
	codec      *sessiontoken.Codec
	cookieName string
}

func NewCookieCarrier(codec *sessiontoken.Codec, cookieName string) *CookieCarrier {
	return &CookieCarrier{codec: codec, cookieName: cookieName}
}

func (c *CookieCarrier) Load(r *http.Request) (credential.Record, bool, error) {
	cookie, err := r.Cookie(c.cookieName)
	if err != nil || cookie.Value == "" {
		return credential.Record{}, false, nil
	}

	rec, err := c.codec.Decode(cookie.Value)
	if err != nil {
		return credential.Record{}, false, err
	}
	if err := rec.Validate(); err != nil {
		return credential.Record{}, false, err
	}
	return rec, true, nil
}

// Start issues a new token; the cookie holds no identifier that could be carried over.
func (c *CookieCarrier) Start(w http.ResponseWriter, r *http.Request, rec credential.Record) error {
	return c.Save(w, r, rec)
}

func (c *CookieCarrier) Save(w http.ResponseWriter, r *http.Request, rec credential.Record) error {
	token, err := c.codec.Encode(rec)
	if err != nil {
		return err
	}
	setSessionCookie(w, r, c.cookieName, token, int(c.codec.MaxAge().Seconds()))
	return nil
}

func (c *CookieCarrier) Clear(w http.ResponseWriter, r *http.Request) error {
	clearSessionCookie(w, r, c.cookieName)
	return nil
}

// StoreCarrier keeps an opaque session id in the cookie and the record in a repository.
type StoreCarrier struct {
	repo       loginsession.Repo
	cookieName string
	maxAge     time.Duration
	now        func() time.Time
}

func NewStoreCarrier(repo loginsession.Repo, cookieName string, maxAge time.Duration) *StoreCarrier {
	return &StoreCarrier{
		repo:       repo,
		cookieName: cookieName,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

func (c *StoreCarrier) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(c.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (c *StoreCarrier) Load(r *http.Request) (credential.Record, bool, error) {
	sessionID := c.sessionID(r)
	if sessionID == "" {
		return credential.Record{}, false, nil
	}

	session, err := c.repo.Get(r.Context(), sessionID)
	if errors.Is(err, errors.ErrSessionNotFound) {
		return credential.Record{}, false, nil
	}
	if err != nil {
		return credential.Record{}, false, err
	}
	if err := session.Credential.Validate(); err != nil {
		return credential.Record{}, false, err
	}
	return session.Credential, true, nil
}

// Start stores rec under a newly minted session id. A session the request already carried
// is deleted, so an identifier planted before sign-in never ends up holding the credential.
func (c *StoreCarrier) Start(w http.ResponseWriter, r *http.Request, rec credential.Record) error {
	if previous := c.sessionID(r); previous != "" {
		if err := c.repo.Delete(r.Context(), previous); err != nil {
			return fmt.Errorf("failed to discard previous session: %w", err)
		}
	}
	return c.create(w, r, uuid.NewString(), rec)
}

// Save updates the existing session in place, keeping its original expiry. When the session
// has gone away in the meantime a new one is started.
func (c *StoreCarrier) Save(w http.ResponseWriter, r *http.Request, rec credential.Record) error {
	sessionID := c.sessionID(r)
	if sessionID == "" {
		return c.create(w, r, uuid.NewString(), rec)
	}

	session, err := c.repo.Get(r.Context(), sessionID)
	if errors.Is(err, errors.ErrSessionNotFound) {
		return c.create(w, r, uuid.NewString(), rec)
	}
	if err != nil {
		return err
	}

	session.Credential = rec
	return c.write(w, r, sessionID, session)
}

func (c *StoreCarrier) create(w http.ResponseWriter, r *http.Request, sessionID string, rec credential.Record) error {
	now := c.now()
	return c.write(w, r, sessionID, loginsession.Session{
		Credential: rec,
		CreatedAt:  now,
		ExpiresAt:  now.Add(c.maxAge),
	})
}

func (c *StoreCarrier) write(w http.ResponseWriter, r *http.Request, sessionID string, session loginsession.Session) error {
	if err := c.repo.Upsert(r.Context(), sessionID, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	setSessionCookie(w, r, c.cookieName, sessionID, int(session.ExpiresAt.Sub(c.now()).Seconds()))
	return nil
}

func (c *StoreCarrier) Clear(w http.ResponseWriter, r *http.Request) error {
	clearSessionCookie(w, r, c.cookieName)

	sessionID := c.sessionID(r)
	if sessionID == "" {
		return nil
	}
	return c.repo.Delete(r.Context(), sessionID)
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request, name string) {
	setSessionCookie(w, r, name, "", -1)
}
