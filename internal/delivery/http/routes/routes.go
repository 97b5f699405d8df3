package routes

import (
	"worklink/internal/app"
	"worklink/internal/delivery/http/handler"
	"worklink/internal/delivery/http/middleware"
	"worklink/internal/domain/user"
	"worklink/internal/ws"

	"github.com/gofiber/fiber/v3"
)

// Register mounts the whole HTTP surface: health, the versioned API and the
// chat websocket endpoint.
func Register(fapp *fiber.App, c *app.Container) {
	if fapp == nil || c == nil {
		return
	}

	healthHandler := handler.NewHealthHandler(c.DB, c.Cache)
	healthHandler.RegisterRoutes(fapp)

	api := fapp.Group("/api")
	registerV1(api.Group("/v1"), c)
}

func registerV1(r fiber.Router, c *app.Container) {
	authMw := middleware.NewAuthMiddleware(c.JWT)

	authHandler := handler.NewAuthHandler(c.Auth)
	userHandler := handler.NewUserHandler(c.Auth)
	workerJobs := handler.NewWorkerJobsHandler(c.Jobs, c.Icons)
	customerJobs := handler.NewCustomerJobsHandler(c.Jobs, c.Icons)
	jobDetail := handler.NewJobDetailHandler(c.Jobs, c.Icons)
	reviewHandler := handler.NewReviewHandler(c.Reviews)
	chatHandler := handler.NewChatHandler(c.Chat)
	professionHandler := handler.NewProfessionHandler(c.Professions, c.Icons)
	wsHandler := ws.NewHandler(c.Hub, c.Chat, c.JWT, c.Logger)

	authHandler.RegisterRoutes(r.Group("/auth"))

	protected := r.Group("", authMw.Middleware())

	userHandler.RegisterRoutes(protected.Group("/users"))
	professionHandler.RegisterRoutes(protected.Group("/professions"))

	// Job-scoped reads shared by both roles.
	jobs := protected.Group("/jobs")
	jobDetail.RegisterRoutes(jobs)
	reviewHandler.RegisterJobRoutes(jobs)
	chatHandler.RegisterRoutes(jobs)

	reviewHandler.RegisterReviewRoutes(protected.Group("/reviews"))

	workerJobs.RegisterRoutes(protected.Group("/worker/jobs", authMw.RequireRole(string(user.RoleWorker))))
	customerJobs.RegisterRoutes(protected.Group("/customer/jobs", authMw.RequireRole(string(user.RoleCustomer))))

	// Websocket auth rides the token query param, not the auth middleware.
	r.Get("/ws/chat", wsHandler.HandleChatWS)
}
