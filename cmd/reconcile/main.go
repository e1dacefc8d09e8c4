// reconcile ejecuta la conciliación del libro de inventario contra PostgreSQL sin levantar la API.
//
// Uso:
//
//	go run ./cmd/reconcile preview   # diferencias entre el libro actual y el reconstruido, sin escribir
//	go run ./cmd/reconcile run       # reconstruye el libro y registra la corrida
//	go run ./cmd/reconcile runs      # últimas corridas
//
// Toma la misma configuración que la API (DATABASE_URL, REDIS_ADDR, ...).
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/application/reconciliation"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/redislock"
	"github.com/jhoicas/Logistica-api/pkg/config"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

func main() {
	cmd := "preview"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	if err := run(cmd); err != nil {
		color.Red("✗ %v", err)
		os.Exit(1)
	}
}

func run(cmd string) error {
	switch cmd {
	case "preview", "run", "runs":
	default:
		return fmt.Errorf("comando desconocido %q (preview | run | runs)", cmd)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	if cfg.Storage.Driver != config.StorageDriverPostgres {
		return fmt.Errorf("reconcile solo opera sobre PostgreSQL (STORAGE_DRIVER=%s)", cfg.Storage.Driver)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "reconcile", Out: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(pool, log.Component("migrate")); err != nil {
			return err
		}
	}

	var lock reconciliation.Lock
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		lock = redislock.New(rdb, cfg.Reconcile.LockTTL, log.Component("redislock"))
	}

	sweep := reconciliation.NewSweep(
		postgres.NewTxRunner(pool),
		postgres.NewInventoryRepository(pool),
		postgres.NewDocumentRepository(pool),
		postgres.NewReconciliationRunRepository(pool),
		lock,
		log.Component("reconciliation"),
	).WithTimeout(cfg.Reconcile.Timeout)

	switch cmd {
	case "preview":
		p, err := sweep.Preview(ctx)
		if err != nil {
			return err
		}
		printPreview(os.Stdout, p)
	case "run":
		r, err := sweep.Run(ctx, entity.ReconciliationTriggerManual)
		if err != nil {
			return err
		}
		printReport(os.Stdout, r)
	case "runs":
		runs, err := sweep.ListRuns(ctx, dto.PageRequest{Limit: 20})
		if err != nil {
			return err
		}
		printRuns(os.Stdout, runs)
	}
	return nil
}

func printPreview(w io.Writer, p *dto.ReconciliationPreview) {
	bold := color.New(color.Bold)
	bold.Fprintf(w, "Documentos leídos: %d   Entradas reconstruidas: %d\n", p.DocumentsRead, p.Entries)

	if len(p.Negative) > 0 {
		color.New(color.FgRed).Fprintf(w, "✗ Saldos negativos, la conciliación sería rechazada:\n")
		for _, k := range p.Negative {
			fmt.Fprintf(w, "    %s\n", k)
		}
	}
	if len(p.Drift) == 0 {
		color.New(color.FgGreen).Fprintln(w, "✓ El libro coincide con los documentos")
		return
	}

	color.New(color.FgYellow).Fprintf(w, "%d entradas con diferencia:\n", len(p.Drift))
	fmt.Fprintf(w, "  %-14s %-14s %14s %14s %14s\n", "UBICACIÓN", "MATERIAL", "ACTUAL", "RECONSTRUIDO", "DIFERENCIA")
	for _, d := range p.Drift {
		diff := color.New(color.FgGreen)
		if d.Difference.IsNegative() {
			diff = color.New(color.FgRed)
		}
		fmt.Fprintf(w, "  %-14s %-14s %14s %14s ", d.LocationID, d.MaterialID, d.Current.StringFixed(3), d.Replayed.StringFixed(3))
		diff.Fprintf(w, "%14s\n", d.Difference.StringFixed(3))
	}
}

func printReport(w io.Writer, r *dto.ReconciliationReport) {
	color.New(color.FgGreen).Fprintf(w, "✓ Conciliación %s completada\n", r.RunID)
	fmt.Fprintf(w, "  documentos leídos:   %d\n", r.DocumentsRead)
	fmt.Fprintf(w, "  entradas en cero:    %d\n", r.EntriesZeroed)
	fmt.Fprintf(w, "  entradas escritas:   %d\n", r.EntriesWritten)
	fmt.Fprintf(w, "  duración:            %s\n", r.FinishedAt.Sub(r.StartedAt))
}

func printRuns(w io.Writer, runs []dto.ReconciliationRunResponse) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "Sin corridas registradas")
		return
	}
	for _, r := range runs {
		status := color.New(color.FgGreen)
		if r.Status != entity.ReconciliationStatusSucceeded {
			status = color.New(color.FgRed)
		}
		fmt.Fprintf(w, "%s  %-9s ", r.StartedAt.Format("2006-01-02 15:04:05"), r.Trigger)
		status.Fprintf(w, "%-9s", r.Status)
		fmt.Fprintf(w, " escritas=%d", r.EntriesWritten)
		if r.Error != "" {
			fmt.Fprintf(w, "  %s", r.Error)
		}
		fmt.Fprintln(w)
	}
}
