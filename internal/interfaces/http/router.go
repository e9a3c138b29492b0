package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacenaje-api/internal/application/allocation"
	"github.com/jhoicas/Almacenaje-api/internal/application/auth"
	"github.com/jhoicas/Almacenaje-api/internal/application/loads"
	"github.com/jhoicas/Almacenaje-api/internal/application/notify"
	"github.com/jhoicas/Almacenaje-api/internal/application/usecase"
	"github.com/jhoicas/Almacenaje-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	RequestUC   *usecase.RequestUseCase
	RackUC      *usecase.RackUseCase
	Coordinator *allocation.CoordinatorUseCase
	Tracker     *loads.TrackerUseCase
	Dispatcher  *notify.DispatcherUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	operator := RequireRole(entity.RoleOperador)

	// Solicitudes de almacenaje
	requests := protected.Group("/requests")
	requestHandler := NewRequestHandler(deps.RequestUC, deps.Coordinator)
	requests.Post("/", requestHandler.Create)
	requests.Get("/", requestHandler.List)
	requests.Get("/:id", requestHandler.GetByID)
	requests.Post("/:id/submit", requestHandler.Submit)
	requests.Post("/:id/approve", operator, requestHandler.Approve)
	requests.Post("/:id/reject", operator, requestHandler.Reject)
	requests.Post("/:id/archive", operator, requestHandler.Archive)

	// Cargas de camión
	loadHandler := NewLoadHandler(deps.Tracker)
	requests.Post("/:id/loads", operator, loadHandler.Register)
	requests.Get("/:id/loads", loadHandler.ListByRequest)
	loadGroup := protected.Group("/loads")
	loadGroup.Get("/:id", loadHandler.GetByID)
	loadGroup.Put("/:id/state", operator, loadHandler.Advance)
	loadGroup.Post("/:id/complete", operator, loadHandler.Complete)
	loadGroup.Get("/:id/manifest", loadHandler.Manifest)

	// Racks del patio (solo operador)
	racks := protected.Group("/racks", operator)
	rackHandler := NewRackHandler(deps.RackUC)
	racks.Post("/", rackHandler.Create)
	racks.Get("/", rackHandler.List)
	racks.Post("/:id/reconcile", rackHandler.Reconcile)

	// Cola de notificaciones (solo operador)
	notifications := protected.Group("/notifications", operator)
	notificationHandler := NewNotificationHandler(deps.Dispatcher)
	notifications.Post("/dispatch", notificationHandler.Dispatch)
	notifications.Get("/failed", notificationHandler.ListFailed)
	notifications.Post("/:id/resend", notificationHandler.Resend)
}
