package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yudhap12/go-sipp-backend/internal/repository"
	"github.com/yudhap12/go-sipp-backend/internal/service"
)

// CaseHandler serves the synced read side: cases, schedules, reference
// tables, statistics. All endpoints are public.
type CaseHandler struct {
	Repo  *repository.PostgresRepo
	Stats *service.StatisticsService
}

func NewCaseHandler(repo *repository.PostgresRepo, stats *service.StatisticsService) *CaseHandler {
	return &CaseHandler{Repo: repo, Stats: stats}
}

// GET /api/v1/cases?status=&limit=
func (h *CaseHandler) ListCases(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	cases, err := h.Repo.ListCases(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list cases"})
		return
	}
	c.JSON(http.StatusOK, cases)
}

// GET /api/v1/cases/:number
func (h *CaseHandler) GetCaseByNumber(c *gin.Context) {
	cs, err := h.Repo.GetCaseByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get case"})
		return
	}
	if cs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Case not found"})
		return
	}
	c.JSON(http.StatusOK, cs)
}

// GET /api/v1/schedules?date=YYYY-MM-DD&limit=
func (h *CaseHandler) ListSchedules(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	schedules, err := h.Repo.ListSchedules(c.Request.Context(), c.Query("date"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list schedules"})
		return
	}
	c.JSON(http.StatusOK, schedules)
}

// GET /api/v1/judges
func (h *CaseHandler) ListJudges(c *gin.Context) {
	judges, err := h.Repo.ListJudges(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list judges"})
		return
	}
	c.JSON(http.StatusOK, judges)
}

// GET /api/v1/court-rooms
func (h *CaseHandler) ListCourtRooms(c *gin.Context) {
	rooms, err := h.Repo.ListCourtRooms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list court rooms"})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// GET /api/v1/case-types
func (h *CaseHandler) ListCaseTypes(c *gin.Context) {
	types, err := h.Repo.ListCaseTypes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list case types"})
		return
	}
	c.JSON(http.StatusOK, types)
}

// GET /api/v1/statistics/cases?year=
func (h *CaseHandler) GetCaseStatistics(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	stats, err := h.Stats.CaseStatistics(c.Request.Context(), year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build case statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
