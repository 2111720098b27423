package jobs

import "time"

// Company is optional metadata a job can point at.
type Company struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Website     string    `json:"website,omitempty"`
	Location    string    `json:"location,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	Size        string    `gorm:"size:16" json:"size,omitempty"` // 1-10, 11-50, 51-200, 201-500, 500+
	Logo        string    `json:"logo,omitempty"`
	CreatedBy   *uint     `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
