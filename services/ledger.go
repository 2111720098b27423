package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"jobsy-backend/models/applications"
)

// Ledger records applications and moves them through their statuses.
type Ledger struct {
	db      *gorm.DB
	catalog *Catalog
	events  EventPublisher
	now     func() time.Time
	log     zerolog.Logger
}

func NewLedger(db *gorm.DB, catalog *Catalog, events EventPublisher, logger zerolog.Logger) *Ledger {
	if events == nil {
		events = NopPublisher{}
	}
	return &Ledger{
		db:      db,
		catalog: catalog,
		events:  events,
		now:     time.Now,
		log:     logger.With().Str("component", "ledger").Logger(),
	}
}

// Apply creates a pending application. The pre-check gives the common case a
// clean answer; the unique index decides races between identical requests.
func (l *Ledger) Apply(ctx context.Context, jobID, userID uint, userEmail string) (*applications.Application, error) {
	var existing int64
	err := l.db.WithContext(ctx).Model(&applications.Application{}).
		Where("job_id = ? AND user_id = ?", jobID, userID).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("check existing application: %w", err)
	}
	if existing > 0 {
		return nil, ErrAlreadyApplied
	}

	ok, err := l.catalog.Exists(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrJobNotFound
	}

	app := applications.Application{
		JobID:     jobID,
		UserID:    userID,
		UserEmail: userEmail,
		Status:    applications.StatusPending,
	}
	if err := l.db.WithContext(ctx).Create(&app).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("create application: %w", err)
	}

	l.log.Info().Uint("application_id", app.ID).Uint("job_id", jobID).Uint("user_id", userID).Msg("application submitted")
	l.publish(ctx, ApplicationEvent{
		Type:          EventApplicationSubmitted,
		ApplicationID: app.ID,
		JobID:         jobID,
		UserID:        userID,
		Status:        string(app.Status),
	})
	return &app, nil
}

// ListMine returns the user's applications, newest first, each carrying a
// projection of its job (nil when the job is gone).
func (l *Ledger) ListMine(ctx context.Context, userID uint) ([]applications.Application, error) {
	out := []applications.Application{}
	err := l.db.WithContext(ctx).
		Preload("Job").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list applications of user %d: %w", userID, err)
	}
	return out, nil
}

func (l *Ledger) ListAll(ctx context.Context) ([]applications.Application, error) {
	out := []applications.Application{}
	err := l.db.WithContext(ctx).
		Preload("Job").
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return out, nil
}

func (l *Ledger) Get(ctx context.Context, id uint) (*applications.Application, error) {
	var app applications.Application
	err := l.db.WithContext(ctx).First(&app, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load application %d: %w", id, err)
	}
	return &app, nil
}

// SetStatus sets any of the known statuses regardless of the current one.
func (l *Ledger) SetStatus(ctx context.Context, id uint, status applications.Status) (*applications.Application, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w %q: allowed pending, accepted, rejected", ErrInvalidStatus, status)
	}

	app, err := l.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := app.Status

	err = l.db.WithContext(ctx).Model(app).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": l.now(),
	}).Error
	if err != nil {
		return nil, fmt.Errorf("update application %d: %w", id, err)
	}
	app.Status = status

	l.log.Info().Uint("application_id", id).Str("from", string(previous)).Str("to", string(status)).Msg("application status changed")
	l.publish(ctx, ApplicationEvent{
		Type:           EventApplicationStatusChanged,
		ApplicationID:  app.ID,
		JobID:          app.JobID,
		UserID:         app.UserID,
		Status:         string(status),
		PreviousStatus: string(previous),
	})
	return app, nil
}

func (l *Ledger) Delete(ctx context.Context, id uint) error {
	app, err := l.Get(ctx, id)
	if err != nil {
		return err
	}
	res := l.db.WithContext(ctx).Delete(&applications.Application{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete application %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrApplicationNotFound
	}

	l.log.Info().Uint("application_id", id).Msg("application deleted")
	l.publish(ctx, ApplicationEvent{
		Type:          EventApplicationDeleted,
		ApplicationID: app.ID,
		JobID:         app.JobID,
		UserID:        app.UserID,
		Status:        string(app.Status),
	})
	return nil
}

// publish is best effort: the mutation is already stored.
func (l *Ledger) publish(ctx context.Context, event ApplicationEvent) {
	event.OccurredAt = l.now().UTC()
	if err := l.events.Publish(ctx, event); err != nil {
		l.log.Warn().Err(err).Str("event", event.Type).Uint("application_id", event.ApplicationID).Msg("publish event failed")
	}
}
