package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"jobsy-backend/models/users"
)

const MinPasswordLength = 6

// Claims is the signed token payload.
type Claims struct {
	UserID  uint `json:"userId"`
	IsAdmin bool `json:"isAdmin"`
	jwt.StandardClaims
}

// Identity is the caller resolved from a verified token.
type Identity struct {
	UserID  uint   `json:"userId"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
}

// SessionIssuer registers accounts, checks credentials and issues and
// verifies bearer tokens.
type SessionIssuer struct {
	users  *UserStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    zerolog.Logger
}

func NewSessionIssuer(store *UserStore, secret []byte, ttl time.Duration, logger zerolog.Logger) *SessionIssuer {
	return &SessionIssuer{
		users:  store,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
		log:    logger.With().Str("component", "session").Logger(),
	}
}

func (s *SessionIssuer) TTL() time.Duration { return s.ttl }

func (s *SessionIssuer) Register(ctx context.Context, name, email, password string) (*users.User, error) {
	name = strings.TrimSpace(name)
	email = users.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, validationErrorf("name, email and password required")
	}
	if !strings.Contains(email, "@") {
		return nil, validationErrorf("email is malformed")
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &users.User{Name: name, Email: email, Password: hashed}
	// a concurrent signup for the same email is caught by the unique index
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info().Uint("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Authenticate returns ErrInvalidCredentials for both an unknown email and a
// wrong password. The reason is only logged.
func (s *SessionIssuer) Authenticate(ctx context.Context, email, password string) (string, *users.User, error) {
	email = users.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, validationErrorf("email and password required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		s.log.Debug().Str("email", email).Msg("login failed: unknown email")
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.log.Debug().Uint("user_id", user.ID).Msg("login failed: password mismatch")
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *SessionIssuer) IssueToken(user *users.User) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry, then reloads the user so that deleted
// accounts and revoked admin rights take effect immediately.
func (s *SessionIssuer) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return &Identity{
		UserID:  user.ID,
		Email:   user.Email,
		Name:    user.Name,
		IsAdmin: user.IsAdmin,
	}, nil
}

// ChangePassword replaces the caller's password after checking the current
// one. Issued tokens stay valid until they expire.
func (s *SessionIssuer) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	if current == "" || next == "" {
		return validationErrorf("current and new password required")
	}
	if len(next) < MinPasswordLength {
		return ErrWeakPassword
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		s.log.Debug().Uint("user_id", userID).Msg("password change refused: current password mismatch")
		return ErrInvalidCredentials
	}

	hashed, err := hashPassword(next)
	if err != nil {
		return err
	}
	if err := s.users.SetPassword(ctx, userID, hashed); err != nil {
		return err
	}
	s.log.Info().Uint("user_id", userID).Msg("password changed")
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
