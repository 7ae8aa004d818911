package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/finsense/server/internal/observability"
)

// MetricsOverviewResponse summarizes in-process request counters.
type MetricsOverviewResponse struct {
	TotalRequests int64                                       `json:"total_requests"`
	FailedCount   int64                                       `json:"failed_count"`
	SuccessRate   float64                                     `json:"success_rate"`
	Operations    map[string]*observability.OperationSnapshot `json:"operations"`
}

// GetMetricsOverview returns the system metrics overview.
// GET /api/v1/system/metrics/overview
func (s *APIV1Service) GetMetricsOverview(c echo.Context) error {
	snapshot := observability.GlobalMetrics().Snapshot()

	successRate := float64(0)
	if snapshot.RequestTotal > 0 {
		successRate = float64(snapshot.RequestTotal-snapshot.RequestFailed) / float64(snapshot.RequestTotal)
	}

	return c.JSON(http.StatusOK, MetricsOverviewResponse{
		TotalRequests: snapshot.RequestTotal,
		FailedCount:   snapshot.RequestFailed,
		SuccessRate:   successRate,
		Operations:    snapshot.Operations,
	})
}
