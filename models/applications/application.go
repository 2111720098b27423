package applications

import (
	"time"

	"jobsy-backend/models/jobs"
	"jobsy-backend/models/users"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Application joins a user to a job. The composite unique index is what
// guarantees a single application per (job, user), not the service pre-check.
type Application struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	JobID     uint      `gorm:"not null;uniqueIndex:idx_application_job_user" json:"jobId"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_application_job_user;index" json:"userId"`
	UserEmail string    `gorm:"size:255;not null" json:"userEmail"`
	Status    Status    `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Job  *jobs.Summary  `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"job"`
	User *users.Summary `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
