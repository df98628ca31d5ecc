package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/crm-api/internal/infrastructure/postgres/migrations"
	"github.com/jhoicas/crm-api/pkg/config"
)

const (
	defaultPGPort   = "5432"
	fallbackDNSAddr = "8.8.8.8:53"
)

var errNoIPv4 = errors.New("sin dirección IPv4")

// NewPool abre el pool de PostgreSQL. El host del DSN (DATABASE_URL o DB_*) se reemplaza
// por su IPv4 cuando se puede: en contenedores sin IPv6 el AAAA no es alcanzable.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(pinIPv4(ctx, cfg.ConnectionString()))
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	pc.ConnConfig.DialFunc = dialIPv4
	pc.MaxConns = int32(cfg.MaxConns)
	pc.MinConns = int32(cfg.MinConns)
	pc.MaxConnLifetime = time.Hour
	pc.MaxConnIdleTime = 30 * time.Minute
	pc.HealthCheckPeriod = time.Minute
	// NUMERIC <-> decimal.Decimal en cada conexión nueva
	pc.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	return connectWithRetry(ctx, pc, cfg.ConnectRetries, cfg.ConnectRetryDelay)
}

// connectWithRetry crea el pool y hace Ping. Reintenta hasta attempts veces con espera fija;
// es el único reintento automático de la aplicación.
func connectWithRetry(ctx context.Context, pc *pgxpool.Config, attempts int, delay time.Duration) (*pgxpool.Pool, error) {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pool, err := pgxpool.NewWithConfig(ctx, pc)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Int("max", attempts).Msg("conexión a PostgreSQL fallida")
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("conectar a PostgreSQL tras %d intentos: %w", attempts, lastErr)
}

// Migrate aplica el esquema usando un *sql.DB sobre el mismo pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return migrations.Apply(ctx, db)
}

// pinIPv4 devuelve el DSN con el host sustituido por su IPv4. Ante cualquier fallo
// devuelve el DSN original y deja que el dial lo intente.
func pinIPv4(ctx context.Context, dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Hostname() == "" {
		return dsn
	}
	ip, err := lookupIPv4(ctx, u.Hostname())
	if err != nil {
		return dsn
	}
	port := u.Port()
	if port == "" {
		port = defaultPGPort
	}
	u.Host = net.JoinHostPort(ip, port)
	return u.String()
}

func dialIPv4(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	ip, err := lookupIPv4(ctx, host)
	if err != nil {
		return d.DialContext(ctx, network, addr)
	}
	return d.DialContext(ctx, "tcp4", net.JoinHostPort(ip, port))
}

// lookupIPv4 consulta primero el resolver del sistema y después un DNS público,
// porque el DNS embebido de Docker a veces solo responde AAAA.
func lookupIPv4(ctx context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() == nil {
			return "", errNoIPv4
		}
		return host, nil
	}
	public := &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "udp", fallbackDNSAddr)
		},
	}
	var lastErr error = errNoIPv4
	for _, r := range []*net.Resolver{net.DefaultResolver, public} {
		addrs, err := r.LookupIP(ctx, "ip4", host)
		if err != nil {
			lastErr = err
			continue
		}
		for _, a := range addrs {
			if v4 := a.To4(); v4 != nil {
				return v4.String(), nil
			}
		}
	}
	return "", lastErr
}
