package jobs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jobsy-backend/controllers/authentication"
	"jobsy-backend/controllers/respond"
	jobmodels "jobsy-backend/models/jobs"
	"jobsy-backend/services"
)

// Handler serves the job catalog, bulk import and applying to a job.
type Handler struct {
	catalog  *services.Catalog
	ledger   *services.Ledger
	importer *services.Importer
	log      zerolog.Logger
}

func NewHandler(catalog *services.Catalog, ledger *services.Ledger, importer *services.Importer, logger zerolog.Logger) *Handler {
	return &Handler{
		catalog:  catalog,
		ledger:   ledger,
		importer: importer,
		log:      logger.With().Str("component", "jobs").Logger(),
	}
}

type jobDetail struct {
	jobmodels.Job
	ApplicationCount int64 `json:"applicationCount"`
}

type importRequest struct {
	JobsData []json.RawMessage `json:"jobsData"`
	APIURL   string            `json:"apiUrl"`
}

var errMalformedBody = fmt.Errorf("%w: malformed JSON body", services.ErrValidation)

// List searches the catalog. The total for the filter is sent in
// X-Total-Count.
func (h *Handler) List(c *gin.Context) {
	filter := filterFromQuery(c)

	found, err := h.catalog.Search(c.Request.Context(), filter)
	if err != nil {
		respond.Error(c, err)
		return
	}
	total, err := h.catalog.Count(c.Request.Context(), filter)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, found)
}

// Get returns one job and counts the view.
func (h *Handler) Get(c *gin.Context) {
	id, err := respond.ParamID(c, "id", services.ErrJobNotFound)
	if err != nil {
		respond.Error(c, err)
		return
	}

	job, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	count, err := h.catalog.CountApplications(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, jobDetail{Job: *job, ApplicationCount: count})
}

func (h *Handler) Create(c *gin.Context) {
	identity, _ := authentication.CurrentIdentity(c)

	var in services.JobInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, errMalformedBody)
		return
	}

	job, err := h.catalog.Create(c.Request.Context(), in, identity.UserID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := respond.ParamID(c, "id", services.ErrJobNotFound)
	if err != nil {
		respond.Error(c, err)
		return
	}

	var patch services.JobPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respond.Error(c, errMalformedBody)
		return
	}

	job, err := h.catalog.Update(c.Request.Context(), id, patch)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Delete removes the job together with its applications.
func (h *Handler) Delete(c *gin.Context) {
	id, err := respond.ParamID(c, "id", services.ErrJobNotFound)
	if err != nil {
		respond.Error(c, err)
		return
	}

	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job deleted successfully"})
}

// Import takes inline records in jobsData, or fetches them from apiUrl.
// jobsData wins when both are sent.
func (h *Handler) Import(c *gin.Context) {
	identity, _ := authentication.CurrentIdentity(c)

	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, errMalformedBody)
		return
	}

	var result services.ImportResult
	switch {
	case req.JobsData != nil:
		result = h.importer.ImportRecords(c.Request.Context(), req.JobsData, identity.UserID)
	case strings.TrimSpace(req.APIURL) != "":
		var err error
		result, err = h.importer.ImportFromURL(c.Request.Context(), strings.TrimSpace(req.APIURL), identity.UserID)
		if err != nil {
			respond.Error(c, err)
			return
		}
	default:
		respond.Error(c, fmt.Errorf("%w: jobsData or apiUrl required", services.ErrValidation))
		return
	}
	c.JSON(http.StatusOK, result)
}

// Apply submits the caller's application to the job.
func (h *Handler) Apply(c *gin.Context) {
	identity, _ := authentication.CurrentIdentity(c)

	id, err := respond.ParamID(c, "id", services.ErrJobNotFound)
	if err != nil {
		respond.Failure(c, err)
		return
	}

	if _, err := h.ledger.Apply(c.Request.Context(), id, identity.UserID, identity.Email); err != nil {
		respond.Failure(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Application submitted successfully",
	})
}

func filterFromQuery(c *gin.Context) services.JobFilter {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	remote, _ := strconv.ParseBool(c.Query("remote"))
	return services.JobFilter{
		Location:   c.Query("location"),
		JobType:    c.Query("jobType"),
		Experience: c.Query("experience"),
		RemoteOnly: remote,
		Search:     c.Query("search"),
		Page:       page,
		Limit:      limit,
	}
}
