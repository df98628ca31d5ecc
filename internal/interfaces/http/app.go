package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// AppConfig opciones del servidor Fiber.
type AppConfig struct {
	Name         string
	Debug        bool // detalle de errores 500 en la respuesta
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AllowOrigins string        // separados por coma
	DBTimeout    time.Duration // plazo del contexto de cada request; 0 sin plazo
}

// NewApp crea la app con el stack común de middlewares:
// recover, request id, headers de seguridad, CORS, métricas y log de requests.
// /metrics queda registrado; las rutas de la API se agregan con Router.
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: ErrorHandler(cfg.Debug),
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.Debug}))
	app.Use(RequestID())
	app.Use(ContextTimeout(cfg.DBTimeout))
	// Swagger UI carga sus assets desde un CDN
	app.Use(helmet.New(helmet.Config{CrossOriginEmbedderPolicy: "unsafe-none"}))
	if cfg.AllowOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.AllowOrigins,
			AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		}))
	}
	app.Use(Metrics())
	app.Use(RequestLogger())

	app.Get("/metrics", MetricsHandler())
	return app
}
