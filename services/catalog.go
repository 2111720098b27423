package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jobsy-backend/models/applications"
	"jobsy-backend/models/jobs"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var errUnknownCompany = fmt.Errorf("%w: company not found", ErrValidation)

// JobFilter holds the optional, conjunctive search criteria.
type JobFilter struct {
	Location   string
	JobType    string
	Experience string
	RemoteOnly bool
	Search     string
	Page       int
	Limit      int
}

// JobInput is the payload for creating a job.
type JobInput struct {
	Title        string     `json:"title" validate:"required"`
	Description  string     `json:"description" validate:"required"`
	Requirements string     `json:"requirements" validate:"required"`
	Location     string     `json:"location" validate:"required"`
	Salary       string     `json:"salary" validate:"required"`
	JobType      string     `json:"jobType" validate:"required,oneof=Full-time Part-time Contract Internship"`
	Experience   string     `json:"experience" validate:"omitempty,oneof=Entry Mid Senior Executive"`
	Skills       []string   `json:"skills"`
	Benefits     []string   `json:"benefits"`
	Remote       bool       `json:"remote"`
	Urgent       bool       `json:"urgent"`
	Deadline     *time.Time `json:"deadline"`
	CompanyID    *uint      `json:"company"`
	Status       string     `json:"status" validate:"omitempty,oneof=active closed draft"`
}

// JobPatch lists the fields an admin may change. Nil means unchanged; views,
// creator and id are not reachable through it.
type JobPatch struct {
	Title        *string    `json:"title" validate:"omitnil,min=1"`
	Description  *string    `json:"description" validate:"omitnil,min=1"`
	Requirements *string    `json:"requirements" validate:"omitnil,min=1"`
	Location     *string    `json:"location" validate:"omitnil,min=1"`
	Salary       *string    `json:"salary" validate:"omitnil,min=1"`
	JobType      *string    `json:"jobType" validate:"omitnil,oneof=Full-time Part-time Contract Internship"`
	Experience   *string    `json:"experience" validate:"omitnil,oneof=Entry Mid Senior Executive"`
	Skills       *[]string  `json:"skills"`
	Benefits     *[]string  `json:"benefits"`
	Remote       *bool      `json:"remote"`
	Urgent       *bool      `json:"urgent"`
	Deadline     *time.Time `json:"deadline"`
	CompanyID    *uint      `json:"company"`
	Status       *string    `json:"status" validate:"omitnil,oneof=active closed draft"`
}

// trimmed strips surrounding blanks so a whitespace-only field fails the
// required check.
func (in JobInput) trimmed() JobInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Requirements = strings.TrimSpace(in.Requirements)
	in.Location = strings.TrimSpace(in.Location)
	in.Salary = strings.TrimSpace(in.Salary)
	return in
}

func (p JobPatch) trimmed() JobPatch {
	for _, field := range []**string{&p.Title, &p.Description, &p.Requirements, &p.Location, &p.Salary} {
		if *field != nil {
			v := strings.TrimSpace(**field)
			*field = &v
		}
	}
	return p
}

// Catalog stores job postings.
type Catalog struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewCatalog(db *gorm.DB, logger zerolog.Logger) *Catalog {
	return &Catalog{db: db, log: logger.With().Str("component", "catalog").Logger()}
}

func (f JobFilter) normalized() JobFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	return f
}

func (c *Catalog) filtered(ctx context.Context, f JobFilter) *gorm.DB {
	q := c.db.WithContext(ctx).Model(&jobs.Job{})
	if loc := strings.TrimSpace(f.Location); loc != "" {
		q = q.Where("LOWER(location) LIKE ? ESCAPE '!'", likePattern(loc))
	}
	if f.JobType != "" {
		q = q.Where("job_type = ?", f.JobType)
	}
	if f.Experience != "" {
		q = q.Where("experience = ?", f.Experience)
	}
	if f.RemoteOnly {
		q = q.Where("remote = ?", true)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		pattern := likePattern(term)
		q = q.Where(
			"LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!' OR "+
				"EXISTS (SELECT 1 FROM job_skills s WHERE s.job_id = jobs.id AND LOWER(s.skill) LIKE ? ESCAPE '!')",
			pattern, pattern, pattern,
		)
	}
	return q
}

// Search returns urgent jobs first, then newest first.
func (c *Catalog) Search(ctx context.Context, f JobFilter) ([]jobs.Job, error) {
	f = f.normalized()
	out := []jobs.Job{}
	err := c.filtered(ctx, f).
		Preload("Company", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "logo") }).
		Preload("SkillTags", orderedSkills).
		Order("urgent DESC").
		Order("created_at DESC").
		Order("id DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("search jobs: %w", err)
	}
	return out, nil
}

func (c *Catalog) Count(ctx context.Context, f JobFilter) (int64, error) {
	var total int64
	if err := c.filtered(ctx, f).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return total, nil
}

// Get fetches a job and counts the view. The increment is a single UPDATE so
// concurrent fetches never lose a view.
func (c *Catalog) Get(ctx context.Context, id uint) (*jobs.Job, error) {
	res := c.db.WithContext(ctx).Model(&jobs.Job{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return nil, fmt.Errorf("count view for job %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrJobNotFound
	}

	var job jobs.Job
	err := c.db.WithContext(ctx).Preload("Company").Preload("SkillTags", orderedSkills).First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load job %d: %w", id, err)
	}
	return &job, nil
}

func (c *Catalog) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := c.db.WithContext(ctx).Model(&jobs.Job{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check job %d: %w", id, err)
	}
	return n > 0, nil
}

// ExistsByTitleLocation is the import dedupe key.
func (c *Catalog) ExistsByTitleLocation(ctx context.Context, title, location string) (bool, error) {
	var n int64
	err := c.db.WithContext(ctx).Model(&jobs.Job{}).
		Where("title = ? AND location = ?", title, location).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check job %q/%q: %w", title, location, err)
	}
	return n > 0, nil
}

func (c *Catalog) Create(ctx context.Context, in JobInput, createdBy uint) (*jobs.Job, error) {
	in = in.trimmed()
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := c.checkCompany(ctx, in.CompanyID); err != nil {
		return nil, err
	}
	job := jobs.Job{
		Title:        in.Title,
		Description:  in.Description,
		Requirements: in.Requirements,
		Location:     in.Location,
		Salary:       in.Salary,
		JobType:      in.JobType,
		Experience:   defaultString(in.Experience, jobs.ExperienceEntry),
		Skills:       cleanTags(in.Skills),
		Benefits:     nonNil(in.Benefits),
		Remote:       in.Remote,
		Urgent:       in.Urgent,
		Deadline:     in.Deadline,
		CompanyID:    in.CompanyID,
		Status:       defaultString(in.Status, jobs.StatusActive),
	}
	if createdBy != 0 {
		job.CreatedBy = &createdBy
	}
	job.SkillTags = jobs.SkillRows(0, job.Skills)
	if err := c.db.WithContext(ctx).Create(&job).Error; err != nil {
		return nil, writeError("create job", err)
	}
	c.log.Info().Uint("job_id", job.ID).Uint("created_by", createdBy).Msg("job created")
	return &job, nil
}

func (c *Catalog) Update(ctx context.Context, id uint, patch JobPatch) (*jobs.Job, error) {
	patch = patch.trimmed()
	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	if err := c.checkCompany(ctx, patch.CompanyID); err != nil {
		return nil, err
	}

	var job jobs.Job
	err := c.db.WithContext(ctx).Preload("SkillTags", orderedSkills).First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load job %d: %w", id, err)
	}

	columns := applyPatch(&job, patch)
	if len(columns) == 0 && patch.Skills == nil {
		return &job, nil
	}
	job.UpdatedAt = time.Now()
	columns = append(columns, "updated_at")

	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// only the patched columns are written, so a concurrent view
		// increment is never overwritten
		if err := tx.Model(&job).Select(columns).Omit(clause.Associations).Updates(&job).Error; err != nil {
			return err
		}
		if patch.Skills == nil {
			return nil
		}
		job.Skills = cleanTags(*patch.Skills)
		if err := tx.Where("job_id = ?", job.ID).Delete(&jobs.JobSkill{}).Error; err != nil {
			return err
		}
		rows := jobs.SkillRows(job.ID, job.Skills)
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, writeError(fmt.Sprintf("update job %d", id), err)
	}
	return &job, nil
}

// checkCompany rejects a company reference that points nowhere.
func (c *Catalog) checkCompany(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := c.db.WithContext(ctx).Model(&jobs.Company{}).Where("id = ?", *id).Count(&n).Error; err != nil {
		return fmt.Errorf("check company %d: %w", *id, err)
	}
	if n == 0 {
		return errUnknownCompany
	}
	return nil
}

// writeError maps a foreign key failure (company deleted between the check
// and the write) to a validation error.
func writeError(op string, err error) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return errUnknownCompany
	}
	return fmt.Errorf("%s: %w", op, err)
}

func orderedSkills(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

// Delete removes the job and every application that references it in one
// transaction.
func (c *Catalog) Delete(ctx context.Context, id uint) error {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", id).Delete(&applications.Application{}).Error; err != nil {
			return fmt.Errorf("delete applications of job %d: %w", id, err)
		}
		if err := tx.Where("job_id = ?", id).Delete(&jobs.JobSkill{}).Error; err != nil {
			return fmt.Errorf("delete skills of job %d: %w", id, err)
		}
		res := tx.Delete(&jobs.Job{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete job %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrJobNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.log.Info().Uint("job_id", id).Msg("job deleted")
	return nil
}

func (c *Catalog) CountApplications(ctx context.Context, jobID uint) (int64, error) {
	var n int64
	err := c.db.WithContext(ctx).Model(&applications.Application{}).Where("job_id = ?", jobID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count applications of job %d: %w", jobID, err)
	}
	return n, nil
}

func applyPatch(job *jobs.Job, p JobPatch) []string {
	var cols []string
	setString := func(dst *string, src *string, col string) {
		if src != nil {
			*dst = *src
			cols = append(cols, col)
		}
	}
	setString(&job.Title, p.Title, "title")
	setString(&job.Description, p.Description, "description")
	setString(&job.Requirements, p.Requirements, "requirements")
	setString(&job.Location, p.Location, "location")
	setString(&job.Salary, p.Salary, "salary")
	setString(&job.JobType, p.JobType, "job_type")
	setString(&job.Experience, p.Experience, "experience")
	setString(&job.Status, p.Status, "status")
	if p.Benefits != nil {
		job.Benefits = nonNil(*p.Benefits)
		cols = append(cols, "benefits")
	}
	if p.Remote != nil {
		job.Remote = *p.Remote
		cols = append(cols, "remote")
	}
	if p.Urgent != nil {
		job.Urgent = *p.Urgent
		cols = append(cols, "urgent")
	}
	if p.Deadline != nil {
		job.Deadline = p.Deadline
		cols = append(cols, "deadline")
	}
	if p.CompanyID != nil {
		job.CompanyID = p.CompanyID
		cols = append(cols, "company_id")
	}
	return cols
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, describeFieldError(fe))
		}
		return validationErrorf("%s", strings.Join(parts, "; "))
	}
	return validationErrorf("%v", err)
}

func describeFieldError(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required", "min":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// likePattern builds a lowercase substring pattern, escaping LIKE wildcards
// with '!' which every supported driver accepts as an ESCAPE character.
func likePattern(term string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// cleanTags trims every tag and drops the blank ones.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
