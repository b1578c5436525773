package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/delivery/http/middleware"
	"github.com/Harsh-BH/dispatch/internal/domain"
	"github.com/Harsh-BH/dispatch/internal/geo"
	"github.com/Harsh-BH/dispatch/internal/usecase"
)

// JobHandler exposes the dispatch engine.
type JobHandler struct {
	engine *usecase.DispatchEngine
	logger *zap.Logger
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(engine *usecase.DispatchEngine, logger *zap.Logger) *JobHandler {
	return &JobHandler{engine: engine, logger: logger}
}

// List handles GET /jobs.
//
//	?assigned=1            jobs claimed by the caller (auth required)
//	?available=1           claimable jobs
//	?near=lat,lng&r=km     restrict to a radius and sort by distance
//
// A malformed near parameter is ignored.
func (h *JobHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Query("assigned") == "1" {
		jobs, err := h.engine.ListAssignedTo(ctx, middleware.ContactKey(c))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, jobs)
		return
	}

	near := parseNear(c.Query("near"), c.Query("r"))

	switch {
	case c.Query("available") == "1":
		views, err := h.engine.ListAvailable(ctx, near)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, views)
	case near != nil:
		views, err := h.engine.ListNear(ctx, *near)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, views)
	default:
		jobs, err := h.engine.ListAll(ctx)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, jobs)
	}
}

// Create handles POST /jobs
func (h *JobHandler) Create(c *gin.Context) {
	var req domain.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	job, err := h.engine.CreateJob(c.Request.Context(), middleware.ContactKey(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"job": job})
}

// Demo handles POST /jobs/demo
func (h *JobHandler) Demo(c *gin.Context) {
	job, err := h.engine.CreateDemoJob(c.Request.Context(), middleware.ContactKey(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

// Claim handles POST /jobs/claim. Losing a race answers 409.
func (h *JobHandler) Claim(c *gin.Context) {
	var req domain.ClaimJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	job, err := h.engine.Claim(c.Request.Context(), req.ID, middleware.ContactKey(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

// parseNear returns nil when near is absent or not a lat,lng pair. A present
// but unparseable radius is passed through as NaN and rejected downstream.
func parseNear(near, radius string) *domain.NearQuery {
	latStr, lngStr, ok := strings.Cut(near, ",")
	if !ok {
		return nil
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || !geo.IsFinite(lat) {
		return nil
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil || !geo.IsFinite(lng) {
		return nil
	}

	r := usecase.DefaultJobRadiusKm
	if radius != "" {
		r = parseFloat(radius)
	}
	return &domain.NearQuery{Point: geo.Point{Lat: lat, Lng: lng}, RadiusKm: r}
}
