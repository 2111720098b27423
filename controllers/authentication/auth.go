package authentication

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"jobsy-backend/controllers/respond"
	"jobsy-backend/services"
)

// Handler serves signup, login, logout and the caller's profile.
type Handler struct {
	issuer   *services.SessionIssuer
	users    *services.UserStore
	sessions sessions.Store
	log      zerolog.Logger
}

func NewHandler(issuer *services.SessionIssuer, store *services.UserStore, sessionStore sessions.Store, logger zerolog.Logger) *Handler {
	return &Handler{
		issuer:   issuer,
		users:    store,
		sessions: sessionStore,
		log:      logger.With().Str("component", "auth").Logger(),
	}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userView struct {
	ID      uint   `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
}

var errMalformedBody = fmt.Errorf("%w: malformed JSON body", services.ErrValidation)

// Signup registers a regular account. It does not sign the user in.
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Failure(c, errMalformedBody)
		return
	}

	if _, err := h.issuer.Register(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
		respond.Failure(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully",
	})
}

// Login returns a bearer token and also keeps it in the cookie session.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Failure(c, errMalformedBody)
		return
	}

	token, user, err := h.issuer.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respond.Failure(c, err)
		return
	}

	// a stale or foreign cookie still yields a fresh session to write into
	if sess, _ := h.sessions.Get(c.Request, SessionName); sess != nil {
		sess.Values[sessionTokenKey] = token
		if err := sess.Save(c.Request, c.Writer); err != nil {
			h.log.Warn().Err(err).Uint("user_id", user.ID).Msg("save session failed")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user": userView{
			ID:      user.ID,
			Email:   user.Email,
			Name:    user.Name,
			IsAdmin: user.IsAdmin,
		},
	})
}

// Logout drops the cookie session. Bearer tokens stay valid until they
// expire.
func (h *Handler) Logout(c *gin.Context) {
	sess, _ := h.sessions.Get(c.Request, SessionName)
	if sess != nil {
		delete(sess.Values, sessionTokenKey)
		if sess.Options == nil {
			sess.Options = &sessions.Options{Path: "/"}
		}
		sess.Options.MaxAge = -1
		if err := sess.Save(c.Request, c.Writer); err != nil {
			h.log.Warn().Err(err).Msg("clear session failed")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully",
	})
}
