package jobs

import (
	"time"

	"gorm.io/gorm"
)

const (
	TypeFullTime   = "Full-time"
	TypePartTime   = "Part-time"
	TypeContract   = "Contract"
	TypeInternship = "Internship"
)

const (
	ExperienceEntry     = "Entry"
	ExperienceMid       = "Mid"
	ExperienceSenior    = "Senior"
	ExperienceExecutive = "Executive"
)

const (
	StatusActive = "active"
	StatusClosed = "closed"
	StatusDraft  = "draft"
)

// Job is a posting managed by admins. Views only ever grows, and only through
// an atomic increment.
type Job struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Title        string     `gorm:"size:255;not null;index:idx_job_title_location" json:"title"`
	Description  string     `gorm:"type:text;not null" json:"description"`
	Requirements string     `gorm:"type:text;not null" json:"requirements"`
	Location     string     `gorm:"size:255;not null;index:idx_job_title_location" json:"location"`
	Salary       string     `gorm:"size:255;not null" json:"salary"`
	JobType      string     `gorm:"size:32;not null" json:"jobType"`
	Experience   string     `gorm:"size:32;not null;default:Entry" json:"experience"`
	Skills       []string   `gorm:"-" json:"skills"`
	SkillTags    []JobSkill `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"-"`
	Benefits     []string   `gorm:"type:text;serializer:json" json:"benefits"`
	Remote       bool       `gorm:"not null;default:false" json:"remote"`
	Urgent       bool       `gorm:"not null;default:false" json:"urgent"`
	Deadline     *time.Time `json:"deadline"`
	CompanyID    *uint      `json:"companyId"`
	Company      *Company   `gorm:"constraint:OnDelete:SET NULL" json:"company,omitempty"`
	Status       string     `gorm:"size:16;not null;default:active" json:"status"`
	Views        int64      `gorm:"not null;default:0" json:"views"`
	CreatedBy    *uint      `json:"createdBy"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// AfterFind exposes the preloaded skill rows as plain tags.
func (j *Job) AfterFind(*gorm.DB) error {
	j.Skills = make([]string, 0, len(j.SkillTags))
	for _, tag := range j.SkillTags {
		j.Skills = append(j.Skills, tag.Skill)
	}
	return nil
}

// JobSkill is one skill tag of a job. Tags live in their own table so a
// search can match a single tag instead of an encoded list.
type JobSkill struct {
	ID    uint   `gorm:"primaryKey" json:"-"`
	JobID uint   `gorm:"not null;index" json:"-"`
	Skill string `gorm:"size:255;not null" json:"skill"`
}

// SkillRows turns tags into rows for jobID, dropping blanks.
func SkillRows(jobID uint, tags []string) []JobSkill {
	rows := make([]JobSkill, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		rows = append(rows, JobSkill{JobID: jobID, Skill: tag})
	}
	return rows
}

// Summary is the read-only job projection embedded in application listings.
type Summary struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Location string `json:"location"`
	Salary   string `json:"salary"`
	JobType  string `json:"jobType"`
}

func (Summary) TableName() string { return "jobs" }
