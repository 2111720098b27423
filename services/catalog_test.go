package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsy-backend/models/applications"
	"jobsy-backend/models/jobs"
)

func newTestCatalog(t *testing.T) (*Catalog, *UserStore) {
	t.Helper()
	db := newTestDB(t)
	return NewCatalog(db, nopLogger), NewUserStore(db)
}

func titles(list []jobs.Job) []string {
	out := make([]string, 0, len(list))
	for _, j := range list {
		out = append(out, j.Title)
	}
	return out
}

func TestCatalogCreateValidatesAndDefaults(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()

	job, err := catalog.Create(ctx, jobInput("Backend Engineer", "Berlin"), 7)
	require.NoError(t, err)
	assert.Equal(t, jobs.ExperienceEntry, job.Experience)
	assert.Equal(t, jobs.StatusActive, job.Status)
	assert.Equal(t, int64(0), job.Views)
	require.NotNil(t, job.CreatedBy)
	assert.Equal(t, uint(7), *job.CreatedBy)
	assert.Equal(t, []string{}, job.Skills)

	bad := jobInput("", "Berlin")
	_, err = catalog.Create(ctx, bad, 7)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "title is required")

	bad = jobInput("Intern", "Berlin")
	bad.JobType = "Freelance"
	_, err = catalog.Create(ctx, bad, 7)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "jobType must be one of")
}

func TestCatalogSearchFiltersAreConjunctive(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()

	a := jobInput("Go Developer", "Berlin, Germany")
	a.Remote = true
	a.Skills = []string{"Go", "Postgres"}
	b := jobInput("Frontend Developer", "Berlin")
	b.JobType = "Contract"
	b.Skills = []string{"React"}
	c := jobInput("Data Analyst", "Paris")
	c.Experience = "Senior"
	c.Description = "Dashboards in GO and SQL"

	for _, in := range []JobInput{a, b, c} {
		_, err := catalog.Create(ctx, in, 1)
		require.NoError(t, err)
	}

	found, err := catalog.Search(ctx, JobFilter{Location: "berlin"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Go Developer", "Frontend Developer"}, titles(found))

	found, err = catalog.Search(ctx, JobFilter{Location: "berlin", RemoteOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go Developer"}, titles(found))

	found, err = catalog.Search(ctx, JobFilter{JobType: "Contract"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Frontend Developer"}, titles(found))

	found, err = catalog.Search(ctx, JobFilter{Experience: "Senior"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Data Analyst"}, titles(found))

	// title, description or a skill
	found, err = catalog.Search(ctx, JobFilter{Search: "go"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Go Developer", "Data Analyst"}, titles(found))

	found, err = catalog.Search(ctx, JobFilter{Search: "react"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Frontend Developer"}, titles(found))

	found, err = catalog.Search(ctx, JobFilter{Search: "go", Location: "paris"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Data Analyst"}, titles(found))

	found, err = catalog.Search(ctx, JobFilter{Search: "100%"})
	require.NoError(t, err)
	assert.Empty(t, found)

	total, err := catalog.Count(ctx, JobFilter{Location: "berlin"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestCatalogSearchOrdersUrgentThenNewest(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	create := func(title string, urgent bool, age time.Duration) {
		in := jobInput(title, "Remote")
		in.Urgent = urgent
		job, err := catalog.Create(ctx, in, 1)
		require.NoError(t, err)
		require.NoError(t, catalog.db.Model(job).UpdateColumn("created_at", base.Add(-age)).Error)
	}
	create("old urgent", true, 48*time.Hour)
	create("new plain", false, 0)
	create("new urgent", true, time.Hour)
	create("old plain", false, 72*time.Hour)

	found, err := catalog.Search(ctx, JobFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"new urgent", "old urgent", "new plain", "old plain"}, titles(found))
}

func TestCatalogSearchPaginates(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		_, err := catalog.Create(ctx, jobInput("Job "+string(rune('A'+i)), "Remote"), 1)
		require.NoError(t, err)
	}

	first, err := catalog.Search(ctx, JobFilter{})
	require.NoError(t, err)
	assert.Len(t, first, DefaultPageLimit)

	second, err := catalog.Search(ctx, JobFilter{Page: 2})
	require.NoError(t, err)
	assert.Len(t, second, 2)

	small, err := catalog.Search(ctx, JobFilter{Page: 3, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, small, 2)
}

func TestCatalogGetCountsEveryView(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()
	job, err := catalog.Create(ctx, jobInput("Backend Engineer", "Berlin"), 1)
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := catalog.Get(ctx, job.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := catalog.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n+1), got.Views)

	_, err = catalog.Get(ctx, job.ID+100)
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogUpdateOnlyTouchesPatchedFields(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()
	job, err := catalog.Create(ctx, jobInput("Backend Engineer", "Berlin"), 1)
	require.NoError(t, err)
	_, err = catalog.Get(ctx, job.ID)
	require.NoError(t, err)

	title := "Senior Backend Engineer"
	urgent := true
	updated, err := catalog.Update(ctx, job.ID, JobPatch{Title: &title, Urgent: &urgent})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.True(t, updated.Urgent)
	assert.Equal(t, "Berlin", updated.Location)
	assert.Equal(t, int64(1), updated.Views)
	require.NotNil(t, updated.CreatedBy)
	assert.Equal(t, uint(1), *updated.CreatedBy)

	bad := "Gig"
	_, err = catalog.Update(ctx, job.ID, JobPatch{JobType: &bad})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = catalog.Update(ctx, job.ID+100, JobPatch{Title: &title})
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestCatalogDeleteCascadesApplications(t *testing.T) {
	catalog, store := newTestCatalog(t)
	ctx := context.Background()
	ledger := NewLedger(catalog.db, catalog, nil, nopLogger)

	in := jobInput("Backend Engineer", "Berlin")
	in.Skills = []string{"Go"}
	job, err := catalog.Create(ctx, in, 1)
	require.NoError(t, err)
	other, err := catalog.Create(ctx, jobInput("Frontend Engineer", "Berlin"), 1)
	require.NoError(t, err)

	u1 := createUser(t, store, "u1@example.com", false)
	u2 := createUser(t, store, "u2@example.com", false)
	for _, u := range []uint{u1.ID, u2.ID} {
		_, err := ledger.Apply(ctx, job.ID, u, "")
		require.NoError(t, err)
	}
	_, err = ledger.Apply(ctx, other.ID, u1.ID, u1.Email)
	require.NoError(t, err)

	n, err := catalog.CountApplications(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, catalog.Delete(ctx, job.ID))

	var left int64
	require.NoError(t, catalog.db.Model(&applications.Application{}).Where("job_id = ?", job.ID).Count(&left).Error)
	assert.Zero(t, left)
	require.NoError(t, catalog.db.Model(&jobs.JobSkill{}).Where("job_id = ?", job.ID).Count(&left).Error)
	assert.Zero(t, left)

	n, err = catalog.CountApplications(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.ErrorIs(t, catalog.Delete(ctx, job.ID), ErrJobNotFound)
}

func TestCatalogSearchMatchesWholeSkillTags(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()

	lab := jobInput("Lab Engineer", "Munich")
	lab.Skills = []string{" R&D ", "C<>", ""}
	created, err := catalog.Create(ctx, lab, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"R&D", "C<>"}, created.Skills)

	backend := jobInput("Backend Engineer", "Munich")
	backend.Skills = []string{"go", "sql"}
	_, err = catalog.Create(ctx, backend, 1)
	require.NoError(t, err)

	found, err := catalog.Search(ctx, JobFilter{Search: "r&d"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Lab Engineer"}, titles(found))
	assert.Equal(t, []string{"R&D", "C<>"}, found[0].Skills)

	found, err = catalog.Search(ctx, JobFilter{Search: "c<>"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Lab Engineer"}, titles(found))

	for _, term := range []string{",", `","`, `["go"`} {
		found, err = catalog.Search(ctx, JobFilter{Search: term})
		require.NoError(t, err)
		assert.Empty(t, found, "search %q", term)
	}
}

func TestCatalogUpdateReplacesSkills(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()

	in := jobInput("Backend Engineer", "Berlin")
	in.Skills = []string{"Go", "Postgres"}
	job, err := catalog.Create(ctx, in, 1)
	require.NoError(t, err)

	title := "Platform Engineer"
	updated, err := catalog.Update(ctx, job.ID, JobPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Postgres"}, updated.Skills)

	skills := []string{"Rust"}
	updated, err = catalog.Update(ctx, job.ID, JobPatch{Skills: &skills})
	require.NoError(t, err)
	assert.Equal(t, []string{"Rust"}, updated.Skills)
	assert.Equal(t, title, updated.Title)

	got, err := catalog.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rust"}, got.Skills)

	found, err := catalog.Search(ctx, JobFilter{Search: "postgres"})
	require.NoError(t, err)
	assert.Empty(t, found)
	found, err = catalog.Search(ctx, JobFilter{Search: "rust"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestCatalogRejectsBlankRequiredFields(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()

	_, err := catalog.Create(ctx, jobInput("   ", "Berlin"), 1)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "title is required")

	_, err = catalog.Create(ctx, jobInput("Backend Engineer", "\t "), 1)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "location is required")

	job, err := catalog.Create(ctx, jobInput("  Backend Engineer ", " Berlin"), 1)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, "Berlin", job.Location)

	blank := "  "
	_, err = catalog.Update(ctx, job.ID, JobPatch{Title: &blank})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "title is required")

	got, err := catalog.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", got.Title)
}

func TestCatalogRejectsUnknownCompany(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()

	missing := uint(999)
	in := jobInput("Backend Engineer", "Berlin")
	in.CompanyID = &missing
	_, err := catalog.Create(ctx, in, 1)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "company not found")

	company := jobs.Company{Name: "Acme"}
	require.NoError(t, catalog.db.Create(&company).Error)
	in.CompanyID = &company.ID
	job, err := catalog.Create(ctx, in, 1)
	require.NoError(t, err)

	_, err = catalog.Update(ctx, job.ID, JobPatch{CompanyID: &missing})
	require.ErrorIs(t, err, ErrValidation)

	got, err := catalog.Get(ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CompanyID)
	assert.Equal(t, company.ID, *got.CompanyID)
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, "%go%", likePattern("Go"))
	assert.Equal(t, "%100!%%", likePattern("100%"))
	assert.Equal(t, "%a!_b%", likePattern("a_b"))
	assert.Equal(t, "%!!%", likePattern("!"))
}
