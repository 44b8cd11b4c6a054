package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/example/farm-dashboard/internal/auth"
	"github.com/example/farm-dashboard/internal/logging"
	"github.com/example/farm-dashboard/internal/timewindow"
	"github.com/example/farm-dashboard/internal/usecase"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardService is the use case behind the dashboard routes.
type DashboardService interface {
	GetDashboard(ctx context.Context, req usecase.Request) (*usecase.Dashboard, error)
	ExportWorkbook(ctx context.Context, req usecase.Request) (*excelize.File, error)
}

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type dashboardHandler struct {
	svc    DashboardService
	logger *zap.Logger
}

// RegisterRoutes wires the HTTP handlers to the Gin router.
func RegisterRoutes(router *gin.Engine, svc DashboardService, health HealthChecker, authMiddleware gin.HandlerFunc, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &dashboardHandler{svc: svc, logger: logger.Named("dashboard_handler")}

	router.GET("/health", func(c *gin.Context) {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health.Ping(ctx); err != nil {
				h.logger.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := router.Group("/api/admin", authMiddleware)
	admin.GET("/dashboard", h.getDashboard)
	admin.GET("/dashboard/export", h.exportDashboard)
}

func (h *dashboardHandler) getDashboard(c *gin.Context) {
	req, ok := h.dashboardRequest(c)
	if !ok {
		return
	}

	dashboard, err := h.svc.GetDashboard(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, "handlers.get_dashboard", err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *dashboardHandler) exportDashboard(c *gin.Context) {
	req, ok := h.dashboardRequest(c)
	if !ok {
		return
	}

	f, err := h.svc.ExportWorkbook(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, "handlers.export_dashboard", err)
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		writeError(c, h.logger, "handlers.export_dashboard", exportFailed(err))
		return
	}

	filename := fmt.Sprintf("dashboard-%s.xlsx", timewindow.DayLabel(time.Now()))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *dashboardHandler) dashboardRequest(c *gin.Context) (usecase.Request, bool) {
	principal, ok := auth.PrincipalFromContext(c.Request.Context())
	if !ok {
		writeError(c, h.logger, "handlers.dashboard_request", unauthenticated())
		return usecase.Request{}, false
	}
	return usecase.Request{
		RequestID: logging.RequestIDFromContext(c.Request.Context()),
		UserID:    principal.UserID,
		IsAdmin:   principal.IsAdmin,
		FarmID:    c.Query("farmId"),
	}, true
}
