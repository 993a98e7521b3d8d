package restapi

import (
	"context"
	"fmt"
	"net/http"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/configloader"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	jsoniter "github.com/json-iterator/go"
)

var sessionCodec = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	sessionStateKey = "coinbase_oauth_state"
	sessionTokenKey = "coinbase_token"
)

// SessionStore keeps session values in memory. The browser only holds the signed
// session id.
type SessionStore struct {
	store sessions.Store
	name  string
}

// NewSessionStore creates a session store. An empty secret is replaced by a random
// key, which invalidates sessions on restart.
func NewSessionStore(cfg configloader.SessionConfig) *SessionStore {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
	}
	maxAge := cfg.TTLMinutes * 60
	if maxAge <= 0 {
		maxAge = 24 * 60 * 60
	}
	name := cfg.CookieName
	if name == "" {
		name = "wallet_dashboard_session"
	}

	store := memstore.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return &SessionStore{store: store, name: name}
}

// Middleware attaches the session to every request of the routes it guards.
func (s *SessionStore) Middleware() gin.HandlerFunc {
	return sessions.Sessions(s.name, s.store)
}

// Session returns the session of the request. A missing or forged cookie yields an
// empty session that is only persisted on first write.
func (s *SessionStore) Session(c *gin.Context) *Session {
	return &Session{s: sessions.Default(c)}
}

// Session is one request's view of its server-side session.
type Session struct {
	s sessions.Session
}

var _ port.TokenSource = (*Session)(nil)

// Token implements port.TokenSource.
func (s *Session) Token(context.Context) (*entity.OAuthToken, error) {
	raw, ok := s.s.Get(sessionTokenKey).(string)
	if !ok || raw == "" {
		return nil, entity.ErrNotAuthenticated
	}
	var tok entity.OAuthToken
	if err := sessionCodec.UnmarshalFromString(raw, &tok); err != nil {
		return nil, fmt.Errorf("%w: unreadable session token: %v", entity.ErrNotAuthenticated, err)
	}
	return &tok, nil
}

// Save implements port.TokenSource.
func (s *Session) Save(_ context.Context, token *entity.OAuthToken) error {
	raw, err := sessionCodec.MarshalToString(token)
	if err != nil {
		return fmt.Errorf("failed to encode session token: %w", err)
	}
	s.s.Set(sessionTokenKey, raw)
	return s.s.Save()
}

// SetState remembers the OAuth state sent to the authorization server.
func (s *Session) SetState(state string) error {
	s.s.Set(sessionStateKey, state)
	return s.s.Save()
}

// ConsumeState returns the pending OAuth state and clears it.
func (s *Session) ConsumeState() string {
	state, _ := s.s.Get(sessionStateKey).(string)
	if state != "" {
		s.s.Delete(sessionStateKey)
		_ = s.s.Save()
	}
	return state
}
