package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	_ "github.com/jhoicas/Logistica-api/docs"
	"github.com/jhoicas/Logistica-api/internal/application/documents"
	"github.com/jhoicas/Logistica-api/internal/application/inventory"
	"github.com/jhoicas/Logistica-api/internal/application/reconciliation"
	"github.com/jhoicas/Logistica-api/internal/application/usecase"
	"github.com/jhoicas/Logistica-api/internal/domain/completion"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/redislock"
	httpRouter "github.com/jhoicas/Logistica-api/internal/interfaces/http"
	"github.com/jhoicas/Logistica-api/pkg/config"
	"github.com/jhoicas/Logistica-api/pkg/logger"
	"github.com/jhoicas/Logistica-api/pkg/tracing"
)

// @title           Logística API
// @version         1.0
// @description     Ciclo de vida de documentos logísticos y libro de inventario de patios.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:     cfg.OTel.Enabled,
		Endpoint:    cfg.OTel.Endpoint,
		ServiceName: cfg.App.Name,
		Env:         cfg.App.Env,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}
	if cfg.OTel.Enabled {
		log.Info().Str("endpoint", cfg.OTel.Endpoint).Msg("trazas OTLP habilitadas")
	}

	store, err := openStorage(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	var lock reconciliation.Lock
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		lock = redislock.New(rdb, cfg.Reconcile.LockTTL, log.Component("redislock"))
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: candado de conciliación en proceso")
	}

	evaluator := completion.NewEvaluator(cfg.Ledger.ExemptLocationIDs)
	catalogUC := usecase.NewCatalogUseCase(store.locations, store.materials)
	documentsUC := documents.NewUseCase(
		store.tx, store.documents, store.locations, store.materials,
		evaluator, log.Component("documents"),
		documents.NewLogObserver(log.Component("documents.observer")),
	)
	transfers := inventory.NewTransferPostingEngine(
		store.tx, store.inventory, store.transfers, store.locations, store.materials,
		log.Component("transfers"),
	)
	sweep := reconciliation.NewSweep(
		store.tx, store.inventory, store.documents, store.runs, lock,
		log.Component("reconciliation"),
	).WithTimeout(cfg.Reconcile.Timeout)

	var scheduler *reconciliation.Scheduler
	if cfg.Reconcile.Cron != "" {
		scheduler, err = reconciliation.NewScheduler(sweep, cfg.Reconcile.Cron, cfg.Reconcile.Timeout, log.Component("scheduler"))
		if err != nil {
			log.Fatal().Err(err).Msg("programar conciliación")
		}
		scheduler.Start()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Logística API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CatalogUC:   catalogUC,
		DocumentsUC: documentsUC,
		Transfers:   transfers,
		Sweep:       sweep,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if scheduler != nil {
		select {
		case <-scheduler.Stop().Done():
		case <-shutdownCtx.Done():
			log.Warn().Msg("conciliación programada aún en curso al apagar")
		}
	}

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre del exportador de trazas")
	}

	log.Info().Msg("aplicación detenida")
}
