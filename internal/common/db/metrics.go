package db

import (
	"github.com/glimmer-social/backend/internal/observability/metrics"
)

func setPoolGauges(acquired, idle, max, total int64) {
	metrics.DBPoolAcquiredConnections.Set(float64(acquired))
	metrics.DBPoolIdleConnections.Set(float64(idle))
	metrics.DBPoolMaxConnections.Set(float64(max))
	metrics.DBPoolTotalConnections.Set(float64(total))
}
