// Package logger configura zerolog para la API y los comandos auxiliares.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones para el logger.
type Config struct {
	Env     string // "development" escribe en consola legible, el resto JSON
	Level   string
	Service string
	Version string
	Out     io.Writer // nil = stdout
}

// Logger envuelve un zerolog.Logger para pasarlo por inyección.
type Logger struct {
	zerolog.Logger
}

// New construye el logger y reemplaza log.Logger, que usan los middlewares y repositorios.
func New(cfg Config) *Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	if cfg.Env == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	fields := map[string]any{}
	if cfg.Service != "" {
		fields["service"] = cfg.Service
	}
	if cfg.Version != "" {
		fields["version"] = cfg.Version
	}

	zl := zerolog.New(out).
		Level(levelFromString(cfg.Level)).
		With().Timestamp().Fields(fields).
		Logger()
	log.Logger = zl
	return &Logger{Logger: zl}
}

var levels = map[string]zerolog.Level{
	"trace":   zerolog.TraceLevel,
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
}

// levelFromString cae en info para valores vacíos o desconocidos.
func levelFromString(s string) zerolog.Level {
	if lvl, ok := levels[strings.ToLower(strings.TrimSpace(s))]; ok {
		return lvl
	}
	return zerolog.InfoLevel
}
