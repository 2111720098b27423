package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"jobsy-backend/config"
	"jobsy-backend/models/users"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenDB(config.Database{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "jobsy.db"),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, store *UserStore, email string, admin bool) *users.User {
	t.Helper()
	hashed, err := hashPassword("secret123")
	require.NoError(t, err)
	user := &users.User{Name: "Test " + email, Email: email, Password: hashed, IsAdmin: admin}
	require.NoError(t, store.Create(context.Background(), user))
	return user
}

func jobInput(title, location string) JobInput {
	return JobInput{
		Title:        title,
		Description:  "Build and run services",
		Requirements: "Go, SQL",
		Location:     location,
		Salary:       "$100k",
		JobType:      "Full-time",
	}
}

// recordingPublisher keeps published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []ApplicationEvent
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, event ApplicationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

var nopLogger = zerolog.Nop()
