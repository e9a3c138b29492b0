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

	"github.com/jhoicas/Almacenaje-api/internal/application/allocation"
	"github.com/jhoicas/Almacenaje-api/internal/application/auth"
	"github.com/jhoicas/Almacenaje-api/internal/application/loads"
	appnotify "github.com/jhoicas/Almacenaje-api/internal/application/notify"
	"github.com/jhoicas/Almacenaje-api/internal/application/usecase"
	infranotify "github.com/jhoicas/Almacenaje-api/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/Almacenaje-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Almacenaje-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Almacenaje-api/internal/interfaces/http"
	"github.com/jhoicas/Almacenaje-api/pkg/config"
	"github.com/jhoicas/Almacenaje-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	requestRepo := postgres.NewRequestRepository(pool)
	rackRepo := postgres.NewRackRepository(pool)
	loadRepo := postgres.NewLoadRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	authorizer := auth.NewRoleAuthorizer(userRepo)

	requestUC := usecase.NewRequestUseCase(requestRepo, auditRepo)
	rackUC := usecase.NewRackUseCase(rackRepo, txRunner)
	coordinatorUC := allocation.NewCoordinatorUseCase(txRunner, authorizer)

	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	trackerUC := loads.NewTrackerUseCase(txRunner, loadRepo, pdfGenerator)

	// Canales de notificación: chat deshabilitado si no hay webhook.
	emailSender := infranotify.NewSMTPSender(cfg.Notify)
	var chatSender appnotify.ChatSender
	if cfg.Notify.ChatWebhookURL != "" {
		chatSender = infranotify.NewWebhookChatSender(cfg.Notify.ChatWebhookURL)
	}
	dispatcherUC := appnotify.NewDispatcherUseCase(txRunner, emailSender, chatSender, appnotify.Options{
		BatchSize:   cfg.Notify.DispatchBatchSize,
		MaxAttempts: cfg.Notify.MaxAttempts,
		SendTimeout: cfg.Notify.SendTimeout(),
	}, log.Component("dispatcher"))

	// Worker de notificaciones: drena la cola a intervalo fijo hasta el apagado.
	workerCtx, stopWorker := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(cfg.Notify.DispatchInterval())
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				summary, err := dispatcherUC.RunOnce(workerCtx)
				if err != nil {
					log.Error().Err(err).Msg("pasada del worker de notificaciones")
					continue
				}
				if summary.Processed > 0 {
					log.Info().
						Int("processed", summary.Processed).
						Int("success", summary.Success).
						Int("failed", summary.Failed).
						Msg("pasada de notificaciones completada")
				}
			}
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Almacenaje API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		RequestUC:   requestUC,
		RackUC:      rackUC,
		Coordinator: coordinatorUC,
		Tracker:     trackerUC,
		Dispatcher:  dispatcherUC,
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
	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
