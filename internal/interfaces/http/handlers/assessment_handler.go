package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appassessment "github.com/turtacn/risknet/internal/application/assessment"
	"github.com/turtacn/risknet/internal/domain/entity"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/pkg/errors"
)

// AssessmentHandler exposes the assessment coordinator over HTTP.
type AssessmentHandler struct {
	svc    appassessment.Service
	logger logging.Logger
}

// NewAssessmentHandler builds the handler.
func NewAssessmentHandler(svc appassessment.Service, log logging.Logger) *AssessmentHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &AssessmentHandler{svc: svc, logger: log}
}

// Assess handles POST /api/v1/assess. The body is an entity.Input; the
// response is the full assessment document. A replayed result is flagged
// with cached=true rather than a distinct status.
func (h *AssessmentHandler) Assess(c *gin.Context) {
	var input entity.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	res, err := h.svc.Assess(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// statisticsResponse joins the service counters with the optional graph
// totals.
type statisticsResponse struct {
	Service appassessment.Statistics `json:"service"`
	Graph   interface{}              `json:"graph,omitempty"`
}

// Statistics handles GET /api/v1/statistics.
func (h *AssessmentHandler) Statistics(c *gin.Context) {
	snap, graph := h.svc.Statistics(c.Request.Context())
	resp := statisticsResponse{Service: snap}
	if graph != nil {
		resp.Graph = graph
	}
	c.JSON(http.StatusOK, resp)
}

// Recent handles GET /api/v1/assess/recent?limit=N.
func (h *AssessmentHandler) Recent(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(c, errors.Newf(errors.ErrCodeBadRequest, "invalid limit %q", v))
			return
		}
		limit = n
	}

	records, err := h.svc.RecentAssessments(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessments": records, "count": len(records)})
}

type fastModeRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// FastMode handles POST /api/v1/fast-mode, toggling parallel source
// collection for subsequent assessments.
func (h *AssessmentHandler) FastMode(c *gin.Context) {
	var req fastModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	h.svc.SetFastMode(*req.Enabled)
	h.logger.Info("fast mode toggled", logging.Bool("enabled", *req.Enabled))
	c.JSON(http.StatusOK, gin.H{"fast_mode": h.svc.FastMode()})
}
