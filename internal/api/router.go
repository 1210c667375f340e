package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jogivikas/skill-exchange/internal/api/handlers"
	"github.com/jogivikas/skill-exchange/internal/auth"
	"github.com/jogivikas/skill-exchange/internal/services"
	"github.com/jogivikas/skill-exchange/internal/websocket"
)

// Deps bundles everything the router needs.
type Deps struct {
	Hub           *websocket.Hub
	Users         services.UserServiceProvider
	Matches       services.MatchServiceProvider
	Requests      services.RequestServiceProvider
	Conversations services.ConversationServiceProvider
	Messages      services.MessageServiceProvider
	Admin         services.AdminServiceProvider
	Events        services.EventServiceProvider
	CORSOrigin    string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{deps.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(deps.Users, deps.Events)
	matchHandler := handlers.NewMatchHandler(deps.Matches)
	requestHandler := handlers.NewRequestHandler(deps.Requests)
	conversationHandler := handlers.NewConversationHandler(deps.Conversations)
	messageHandler := handlers.NewMessageHandler(deps.Messages)
	adminHandler := handlers.NewAdminHandler(deps.Admin, deps.Users, deps.Events)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.Messages)

	requireAuth := auth.JWTMiddleware()
	requireAdmin := auth.AdminMiddleware()

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Realtime channel; authenticates itself via query token.
		r.Get("/ws", wsHandler.Serve)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.With(requireAuth).Get("/me", userHandler.GetMe)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile", userHandler.GetProfile)
			r.Put("/profile", userHandler.UpdateProfile)
			r.Post("/skills/have", userHandler.AddSkill(services.SkillListOffered))
			r.Delete("/skills/have/{skill}", userHandler.RemoveSkill(services.SkillListOffered))
			r.Post("/skills/want", userHandler.AddSkill(services.SkillListWanted))
			r.Delete("/skills/want/{skill}", userHandler.RemoveSkill(services.SkillListWanted))
			r.Get("/{id}", userHandler.Get)
			r.Post("/{id}/reviews", userHandler.AddReview)
		})

		r.With(requireAuth).Get("/matches", matchHandler.Find)

		r.Route("/requests", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", requestHandler.Create)
			r.Get("/incoming", requestHandler.ListIncoming)
			r.Get("/outgoing", requestHandler.ListOutgoing)
			r.Put("/{id}/accept", requestHandler.Accept)
			r.Put("/{id}/reject", requestHandler.Reject)
		})

		r.Route("/conversations", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", conversationHandler.GetOrCreate)
			r.Get("/{userId}", conversationHandler.ListForUser)
		})

		r.Route("/messages", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/send", messageHandler.Send)
			r.Get("/{conversationId}", messageHandler.History)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(requireAdmin)
			r.Get("/metrics", adminHandler.GetMetrics)
			r.Get("/users", adminHandler.ListUsers)
			r.Put("/users/{id}/status", adminHandler.UpdateUserStatus)
			r.Get("/activity", adminHandler.GetActivity)
		})
	})

	return r
}
