package http

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/jhoicas/crm-api/internal/application/dto"
)

const healthPingTimeout = 2 * time.Second

// Pinger comprueba la conexión con la base de datos. Lo implementa *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler expone el estado del proceso y de la base de datos.
type HealthHandler struct {
	db        Pinger
	poolStats func() dto.PoolStats
	version   string
	env       string
	startedAt time.Time
	proc      *process.Process
}

// NewHealthHandler construye el handler. poolStats puede ser nil.
func NewHealthHandler(db Pinger, poolStats func() dto.PoolStats, version, env string) *HealthHandler {
	h := &HealthHandler{db: db, poolStats: poolStats, version: version, env: env, startedAt: time.Now()}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn().Err(err).Msg("health: no se pudo abrir el proceso para métricas de memoria")
	} else {
		h.proc = proc
	}
	return h
}

// Check godoc
// @Summary      Estado del servicio
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Failure      503  {object}  dto.HealthResponse
// @Router       /api/health [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	out := dto.HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC(),
		Version:     h.version,
		Environment: h.env,
		Uptime:      int64(time.Since(h.startedAt).Seconds()),
		PID:         os.Getpid(),
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), healthPingTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		out.Status = "degraded"
		out.Database = dto.DatabaseHealth{Connected: false, Error: err.Error()}
	} else {
		out.Database.Connected = true
		if h.poolStats != nil {
			stats := h.poolStats()
			out.Database.Pool = &stats
		}
	}

	if h.proc != nil {
		if mem, err := h.proc.MemoryInfo(); err == nil {
			out.Memory = &dto.MemoryHealth{RSS: mem.RSS, VMS: mem.VMS}
		}
	}

	if !out.Database.Connected {
		return c.Status(fiber.StatusServiceUnavailable).JSON(out)
	}
	return c.JSON(out)
}
