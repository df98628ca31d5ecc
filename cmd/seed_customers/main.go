// seed_customers importa clientes desde un CSV exportado de otra herramienta.
//
// Uso: go run ./cmd/seed_customers [-dry-run] clientes.csv
//
// La primera fila es el encabezado; las columnas reconocidas son las del JSON de
// la API (name, company, industry, email, phone, address, city, postalCode, state,
// country, status, notes, estimatedValue, website, employeeCount, tags). Las tags
// van separadas por ";". El archivo puede venir en UTF-8 o en ISO-8859-1 (Excel).
// Cada fila pasa por las mismas validaciones que POST /api/customers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/infrastructure/postgres"
	"github.com/jhoicas/crm-api/pkg/config"
	"github.com/jhoicas/crm-api/pkg/logger"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "solo valida el archivo, no escribe en la base")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_customers [-dry-run] archivo.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "seed_customers"})

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	rows, rowErrs, err := readCustomers(f)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}
	for _, re := range rowErrs {
		log.Warn().Int("line", re.Line).Str("error", re.Err).Msg("fila descartada")
	}
	log.Info().Int("valid", len(rows)).Int("discarded", len(rowErrs)).Msg("CSV leído")
	if *dryRun {
		return
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	repo := postgres.NewCustomerRepository(pool)
	uc := usecase.NewCustomerUseCase(repo, postgres.NewTxRunner(pool), nil)

	var created, failed int
	for _, row := range rows {
		out, err := uc.Create(ctx, row.Request)
		if err != nil {
			failed++
			log.Warn().Int("line", row.Line).Err(err).Msg("no se pudo crear el cliente")
			continue
		}
		created++
		log.Debug().Int64("id", out.ID).Str("name", out.Name).Msg("cliente creado")
	}
	log.Info().Int("created", created).Int("failed", failed).Msg("importación terminada")
}
