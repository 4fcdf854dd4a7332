package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"nutriboard-backend/internal/handlers"
	"nutriboard-backend/internal/middleware"
	"nutriboard-backend/internal/websocket"
)

// New builds the HTTP API. webhookProxy is nil outside development.
func New(
	jwtAuth *middleware.JWTAuth,
	chatLimiter *middleware.RateLimiter,
	dashboardHandler *handlers.DashboardHandler,
	chatHandler *handlers.ChatHandler,
	wsHub *websocket.Hub,
	webhookProxy http.Handler,
	proxyPrefix string,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Dashboard Routes ────
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/profile", dashboardHandler.Profile)
			r.Post("/profile/refresh", dashboardHandler.RefreshProfile)
			r.Get("/nutrition", dashboardHandler.Nutrition)
			r.Get("/meal-plan", dashboardHandler.MealPlan)
			r.Get("/dashboard", dashboardHandler.Overview)
		})

		// ──── Chat Routes ────
		r.Route("/chat", func(r chi.Router) {
			r.Get("/welcome", chatHandler.Welcome)

			// The socket authenticates with a token query param.
			r.With(chatLimiter.Middleware).Get("/ws", wsHub.HandleChat)

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Use(chatLimiter.Middleware)
				r.Post("/", chatHandler.Send)
			})
		})
	})

	// ──── Dev Webhook Proxy ────
	if webhookProxy != nil {
		prefix := strings.TrimRight(proxyPrefix, "/")
		r.Handle(prefix+"/*", webhookProxy)
	}

	return r
}
