package dto

import "time"

// HealthResponse respuesta de GET /api/health.
type HealthResponse struct {
	Status      string         `json:"status"` // ok | degraded
	Timestamp   time.Time      `json:"timestamp"`
	Version     string         `json:"version"`
	Environment string         `json:"environment"`
	Database    DatabaseHealth `json:"database"`
	Uptime      int64          `json:"uptime"` // segundos
	PID         int            `json:"pid"`
	Memory      *MemoryHealth  `json:"memory,omitempty"`
}

// DatabaseHealth estado de la conexión y del pool.
type DatabaseHealth struct {
	Connected bool       `json:"connected"`
	Error     string     `json:"error,omitempty"`
	Pool      *PoolStats `json:"pool,omitempty"`
}

// PoolStats snapshot del pool de conexiones.
type PoolStats struct {
	TotalConns    int32 `json:"totalConns"`
	IdleConns     int32 `json:"idleConns"`
	AcquiredConns int32 `json:"acquiredConns"`
	MaxConns      int32 `json:"maxConns"`
}

// MemoryHealth memoria del proceso en bytes.
type MemoryHealth struct {
	RSS uint64 `json:"rss"`
	VMS uint64 `json:"vms"`
}
