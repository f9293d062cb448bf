package routes

import (
	"github.com/Dosada05/lobby-royale/handlers"
	"github.com/Dosada05/lobby-royale/middleware"
	"github.com/Dosada05/lobby-royale/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Auth,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	lobbyHandler *handlers.LobbyHandler,
	settingsHandler *handlers.SettingsHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/lobbies", func(r chi.Router) {
		// Публичные маршруты для просмотра лобби
		r.Get("/", lobbyHandler.ListHandler)
		r.Get("/{lobbyID}", lobbyHandler.GetByIDHandler)

		// Защищённые маршруты
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/", lobbyHandler.CreateHandler)
			r.Post("/{lobbyID}/join", lobbyHandler.JoinHandler)
			r.Post("/{lobbyID}/exit", lobbyHandler.ExitHandler)
			r.Post("/{lobbyID}/reset", lobbyHandler.ResetHandler)
			r.Post("/{lobbyID}/complete", lobbyHandler.CompleteHandler)
			r.Delete("/{lobbyID}", lobbyHandler.DeleteHandler)
		})
	})

	router.Route("/users", func(r chi.Router) {
		r.Get("/{userID}", userHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/{userID}/avatar", userHandler.UploadAvatarHandler)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authorize(models.RoleAdmin))
				r.Put("/{userID}/role", userHandler.UpdateRoleHandler)
			})
		})
	})

	router.Route("/settings", func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Get("/", settingsHandler.GetHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleAdmin))
			r.Put("/", settingsHandler.UpdateHandler)
		})
	})

	router.Get("/ws/lobbies/{lobbyID}", webSocketHandler.ServeWs)
}
