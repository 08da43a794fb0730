package loginsession

import (
	"context"
	"time"

	"github.com/jrsteele09/go-session-keeper/credential"
)

// Session is the server-side half of a signed-in browser session.
type Session struct {
	// Credential is stored opaquely; only the lifecycle manager interprets it.
	Credential credential.Record `json:"credential"`

	// Session management
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session outlived its maximum age at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type Repo interface {
	Upsert(ctx context.Context, sessionID string, session Session) error
	Get(ctx context.Context, sessionID string) (Session, error)
	Delete(ctx context.Context, sessionID string) error
}
