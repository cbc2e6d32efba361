package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/domain/planner"
	"github.com/voyago/voyago/internal/app/domain/trips"
	"github.com/voyago/voyago/internal/app/models"
)

// PlanHandler covers plan generation, CRUD and itinerary editing.
type PlanHandler struct {
	logger  *zap.Logger
	planner planner.Service
	trips   trips.Service
}

func NewPlanHandler(plannerSvc planner.Service, tripsSvc trips.Service, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{logger: logger, planner: plannerSvc, trips: tripsSvc}
}

// Generate builds a plan from a structured trip request.
func (h *PlanHandler) Generate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "destination, start_date and end_date are required"})
		return
	}

	plan, err := h.planner.GenerateFromRequest(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

type voiceGenerateRequest struct {
	Transcript string `json:"transcript" binding:"required"`
}

// GenerateFromVoice builds a plan from a free-form spoken request.
func (h *PlanHandler) GenerateFromVoice(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req voiceGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transcript is required"})
		return
	}

	plan, err := h.planner.GenerateFromVoice(c.Request.Context(), userID, req.Transcript)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

type regenerateRequest struct {
	Feedback string `json:"feedback"`
}

// Regenerate rebuilds an existing plan's itinerary with user feedback.
func (h *PlanHandler) Regenerate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := planIDParam(c)
	if !ok {
		return
	}

	var req regenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed body"})
		return
	}

	plan, err := h.planner.Regenerate(c.Request.Context(), userID, planID, req.Feedback)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	plans, err := h.trips.ListPlans(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (h *PlanHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := planIDParam(c)
	if !ok {
		return
	}

	plan, err := h.trips.GetPlan(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

type updatePlanRequest struct {
	Title       *string            `json:"title"`
	Status      *models.PlanStatus `json:"status"`
	Description *string            `json:"description"`
	Budget      *float64           `json:"budget"`
}

func (h *PlanHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := planIDParam(c)
	if !ok {
		return
	}

	var req updatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed body"})
		return
	}

	plan, err := h.trips.UpdatePlan(c.Request.Context(), userID, planID, trips.UpdatePlanParams{
		Title:       req.Title,
		Status:      req.Status,
		Description: req.Description,
		Budget:      req.Budget,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := planIDParam(c)
	if !ok {
		return
	}

	if err := h.trips.DeletePlan(c.Request.Context(), userID, planID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type saveItineraryRequest struct {
	Days []models.ItineraryDay `json:"days" binding:"required"`
}

// SaveItinerary replaces the full day set of a plan.
func (h *PlanHandler) SaveItinerary(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := planIDParam(c)
	if !ok {
		return
	}

	var req saveItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days are required"})
		return
	}

	plan, err := h.trips.ReplaceItinerary(c.Request.Context(), userID, planID, req.Days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

type addActivityRequest struct {
	Day      int             `json:"day" binding:"required"`
	Activity models.Activity `json:"activity" binding:"required"`
}

func (h *PlanHandler) AddActivity(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := planIDParam(c)
	if !ok {
		return
	}

	var req addActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day and activity are required"})
		return
	}

	plan, err := h.trips.AddActivity(c.Request.Context(), userID, planID, req.Day, req.Activity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

type updateActivityRequest struct {
	SourceDay int             `json:"source_day" binding:"required"`
	Index     int             `json:"index"`
	TargetDay int             `json:"target_day" binding:"required"`
	Activity  models.Activity `json:"activity" binding:"required"`
}

func (h *PlanHandler) UpdateActivity(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := planIDParam(c)
	if !ok {
		return
	}

	var req updateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source_day, target_day and activity are required"})
		return
	}

	plan, err := h.trips.UpdateActivity(c.Request.Context(), userID, planID,
		req.SourceDay, req.Index, req.TargetDay, req.Activity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

type deleteActivityRequest struct {
	Day   int `json:"day" binding:"required"`
	Index int `json:"index"`
}

func (h *PlanHandler) DeleteActivity(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := planIDParam(c)
	if !ok {
		return
	}

	var req deleteActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day is required"})
		return
	}

	plan, err := h.trips.DeleteActivity(c.Request.Context(), userID, planID, req.Day, req.Index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}
