package handler

import (
	"net/http"
	"time"

	"github.com/erp/accounting/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
)

// SystemHandler handles health and build-info endpoints
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	appName   string
	env       string
	startedAt time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *persistence.Database, appName, env string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		appName:   appName,
		env:       env,
		startedAt: time.Now(),
	}
}

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// InfoResponse represents the build info payload
type InfoResponse struct {
	Name   string `json:"name"`
	Env    string `json:"env"`
	Uptime string `json:"uptime"`
}

// Health godoc
// @ID           systemHealth
// @Summary      Health check
// @Description  Reports service and database health
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /system/health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Database: "ok"}

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}

	h.Success(c, resp)
}

// Info godoc
// @ID           systemInfo
// @Summary      Service info
// @Description  Reports service name, environment and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /system/info [get]
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, InfoResponse{
		Name:   h.appName,
		Env:    h.env,
		Uptime: time.Since(h.startedAt).Round(time.Second).String(),
	})
}
