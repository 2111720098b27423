package services

import (
	"context"
	"errors"
	"strings"

	"jobsy-backend/models/users"
)

// SeedAdmin makes sure an administrator with the given email exists. An
// existing account is promoted and keeps its password; otherwise a new one
// is created. The returned bool reports whether an account was created.
func SeedAdmin(ctx context.Context, store *UserStore, email, password, name string) (bool, error) {
	email = users.NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return false, validationErrorf("admin email is malformed")
	}

	existing, err := store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsAdmin {
			return false, nil
		}
		return false, store.SetAdmin(ctx, existing.ID, true)
	case !errors.Is(err, ErrNotFound):
		return false, err
	}

	if len(password) < MinPasswordLength {
		return false, ErrWeakPassword
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	hashed, err := hashPassword(password)
	if err != nil {
		return false, err
	}

	admin := &users.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: hashed,
		IsAdmin:  true,
	}
	if err := store.Create(ctx, admin); err != nil {
		return false, err
	}
	return true, nil
}
