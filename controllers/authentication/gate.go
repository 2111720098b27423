package authentication

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"jobsy-backend/controllers/respond"
	"jobsy-backend/services"
)

const identityKey = "identity"

// TokenVerifier resolves a bearer token to the caller's identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*services.Identity, error)
}

// Gate guards routes that need a signed-in user or an administrator.
type Gate struct {
	verifier TokenVerifier
	sessions sessions.Store
	log      zerolog.Logger
}

func NewGate(verifier TokenVerifier, store sessions.Store, logger zerolog.Logger) *Gate {
	return &Gate{
		verifier: verifier,
		sessions: store,
		log:      logger.With().Str("component", "gate").Logger(),
	}
}

func (g *Gate) Authenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := g.authenticate(c); !ok {
			return
		}
		c.Next()
	}
}

// AdminOnly authenticates the caller and then requires the admin flag.
func (g *Gate) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := g.authenticate(c)
		if !ok {
			return
		}
		if !identity.IsAdmin {
			g.debug(c).Uint("user_id", identity.UserID).Msg("rejected: not an admin")
			respond.Error(c, services.ErrForbidden)
			return
		}
		g.debug(c).Uint("user_id", identity.UserID).Msg("admin checked")
		c.Next()
	}
}

// CurrentIdentity returns the identity stored by the gate. Handlers behind
// the gate can rely on ok being true.
func CurrentIdentity(c *gin.Context) (*services.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*services.Identity)
	return identity, ok && identity != nil
}

func (g *Gate) authenticate(c *gin.Context) (*services.Identity, bool) {
	token := g.extractToken(c)
	if token == "" {
		g.debug(c).Msg("rejected: no token")
		respond.Error(c, services.ErrUnauthenticated)
		return nil, false
	}
	g.debug(c).Msg("token extracted")

	identity, err := g.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		g.debug(c).Err(err).Msg("rejected: token not verified")
		respond.Error(c, err)
		return nil, false
	}
	g.debug(c).Uint("user_id", identity.UserID).Msg("token verified")

	c.Set(identityKey, identity)
	return identity, true
}

// extractToken prefers the Authorization header. The cookie session is only
// consulted when no header was sent.
func (g *Gate) extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return sessionToken(g.sessions, c.Request)
}

func (g *Gate) debug(c *gin.Context) *zerolog.Event {
	return g.log.Debug().Str("request_id", c.GetString(respond.RequestIDKey))
}
