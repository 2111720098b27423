package authentication

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	SessionName     = "jobsy-session"
	sessionTokenKey = "token"
)

// NewSessionStore returns the signed cookie store that keeps the login token
// for browser clients.
func NewSessionStore(secret []byte, ttl time.Duration, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	// keeps the signed value's expiry in step with the cookie's
	store.MaxAge(int(ttl / time.Second))
	return store
}

// sessionToken returns the token held in the cookie session, if any.
func sessionToken(store sessions.Store, r *http.Request) string {
	if store == nil {
		return ""
	}
	sess, err := store.Get(r, SessionName)
	if err != nil {
		return ""
	}
	token, _ := sess.Values[sessionTokenKey].(string)
	return token
}
