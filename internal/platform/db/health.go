package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

const pingTimeout = 5 * time.Second

// healthReport is the /healthz body. It carries enough pool detail to tell
// connection exhaustion apart from an unreachable database.
type healthReport struct {
	Status        string `json:"status"`
	PingMillis    int64  `json:"ping_ms"`
	AcquiredConns int32  `json:"acquired_conns"`
	IdleConns     int32  `json:"idle_conns"`
	MaxConns      int32  `json:"max_conns"`
	Error         string `json:"error,omitempty"`
}

// HealthHandler reports database liveness with a bounded ping.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
		defer cancel()

		start := time.Now()
		err := pool.Ping(ctx)
		stat := pool.Stat()

		report := healthReport{
			Status:        "ok",
			PingMillis:    time.Since(start).Milliseconds(),
			AcquiredConns: stat.AcquiredConns(),
			IdleConns:     stat.IdleConns(),
			MaxConns:      stat.MaxConns(),
		}
		if err != nil {
			report.Status = "unavailable"
			report.Error = err.Error()
			return c.JSON(http.StatusServiceUnavailable, report)
		}
		return c.JSON(http.StatusOK, report)
	}
}
