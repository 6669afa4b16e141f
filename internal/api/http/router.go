package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Avdeevkonst/oauth2-chat/internal/api/http/handlers"
	"github.com/Avdeevkonst/oauth2-chat/internal/auth"
	"github.com/Avdeevkonst/oauth2-chat/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Contacts       *handlers.ContactsHandler
	WS             *handlers.WSHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/oauth2/api/v1")

	userGroup := api.Group("/user")
	userGroup.Post("/registration", cfg.Users.Register)
	userGroup.Post("/login", cfg.Users.Login)
	userGroup.Post("/refresh-token", cfg.Users.Refresh)
	userGroup.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	userGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)

	protected := userGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireRoles(domain.RoleUser, domain.RoleAdministrator))
	protected.Put("/change/password", cfg.Users.ChangePassword)
	protected.Get("/profile/:user_id", cfg.Users.Profile)
	protected.Put("/change/profile", cfg.Users.ChangeProfile)
	protected.Post("/add-contact", cfg.Contacts.Add)
	protected.Get("/contacts", cfg.Contacts.List)
	protected.Delete("/contact/:chat_id", cfg.Contacts.Delete)
	protected.Get("/chat/:chat_id", cfg.Contacts.History)
	protected.Get("/me", cfg.Users.Me)

	wsGroup := api.Group("/ws", cfg.AuthMiddleware.Handle, auth.RequireRoles(domain.RoleUser, domain.RoleAdministrator))
	wsGroup.Get("/:receiver", cfg.WS.Upgrade, cfg.WS.Handle())
}
