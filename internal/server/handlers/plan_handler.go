package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/braincoral/reefplan/internal/config"
	"github.com/braincoral/reefplan/internal/domain/models"
	"github.com/braincoral/reefplan/internal/service/planning"
)

const dateLayout = "2006-01-02"

// PlanHandler exposes the planning pipeline over HTTP.
type PlanHandler struct {
	svc      *planning.Service
	defaults config.PlanningConfig
	logger   *zap.Logger
}

// NewPlanHandler constructs the HTTP handler adapter.
func NewPlanHandler(svc *planning.Service, defaults config.PlanningConfig, logger *zap.Logger) *PlanHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanHandler{svc: svc, defaults: defaults, logger: logger}
}

// runPlanRequest is the JSON body shared by the run and save endpoints.
// Every field is optional; omitted ones fall back to configured defaults.
type runPlanRequest struct {
	Tenant          string             `json:"tenant"`
	Days            int                `json:"days"`
	ProductionOrder map[string]int     `json:"production_order"`
	FarmConfig      *models.FarmConfig `json:"farm_config"`
	StartDate       string             `json:"start_date"`
	AsOf            string             `json:"as_of"`
	NoOutplantStart string             `json:"no_outplant_start"`
	NoOutplantEnd   string             `json:"no_outplant_end"`
	Seed            *int64             `json:"seed"`
}

type savePlanRequest struct {
	Name string `json:"name" binding:"required"`
	runPlanRequest
}

// RunPlan executes the pipeline and returns the forecast, recovery and
// unified series.
func (h *PlanHandler) RunPlan(c *gin.Context) {
	var body runPlanRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.logger.Warn("invalid run payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req, err := h.buildRunRequest(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.Run(c.Request.Context(), req)
	if err != nil {
		h.respondRunError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SavePlan executes the pipeline and persists the unified series under the
// requested plan name.
func (h *PlanHandler) SavePlan(c *gin.Context) {
	var body savePlanRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.logger.Warn("invalid save payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req, err := h.buildRunRequest(body.runPlanRequest)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.RunAndSave(c.Request.Context(), body.Name, req)
	if err != nil {
		h.respondRunError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListPlans returns the names of saved plans.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	names, err := h.svc.ListPlans(c.Request.Context())
	if err != nil {
		h.logger.Error("failed listing plans", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to list plans"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": names})
}

// GetPlan returns the flattened records of one saved plan.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	name := c.Param("name")

	records, err := h.svc.LoadPlan(c.Request.Context(), name)
	if err != nil {
		h.logger.Error("failed loading plan", zap.String("plan", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to load plan"})
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": name, "records": records})
}

func (h *PlanHandler) buildRunRequest(body runPlanRequest) (planning.RunRequest, error) {
	req := planning.RunRequest{
		Tenant:          body.Tenant,
		Days:            body.Days,
		ProductionOrder: body.ProductionOrder,
		FarmConfig:      body.FarmConfig,
		Seed:            h.defaults.Seed,
	}
	if req.Tenant == "" {
		req.Tenant = h.defaults.Tenant
	}
	if req.Days == 0 {
		req.Days = h.defaults.ForecastDays
	}
	if body.Seed != nil {
		req.Seed = *body.Seed
	}

	var err error
	if req.StartDate, err = parseOptionalDateValue(body.StartDate, "start_date"); err != nil {
		return req, err
	}
	if req.AsOf, err = parseOptionalDate(body.AsOf, "as_of"); err != nil {
		return req, err
	}
	if req.NoOutplantStart, err = parseOptionalDate(body.NoOutplantStart, "no_outplant_start"); err != nil {
		return req, err
	}
	if req.NoOutplantEnd, err = parseOptionalDate(body.NoOutplantEnd, "no_outplant_end"); err != nil {
		return req, err
	}
	if (req.NoOutplantStart == nil) != (req.NoOutplantEnd == nil) {
		return req, errors.New("no_outplant_start and no_outplant_end must be provided together")
	}

	return req, nil
}

func (h *PlanHandler) respondRunError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrUnmappableRow) {
		h.logger.Warn("inventory mapping failed", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error("plan run failed", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func parseOptionalDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, errors.New(field + " must be formatted as YYYY-MM-DD")
	}
	return &t, nil
}

func parseOptionalDateValue(value, field string) (time.Time, error) {
	t, err := parseOptionalDate(value, field)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, nil
	}
	return *t, nil
}
