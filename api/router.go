package api

import (
	"net/http"

	"socialmap/api/middleware"
	"socialmap/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps are the collaborators the HTTP surface needs. A nil Limiter disables rate
// limiting and a nil Webhook leaves the webhook route unregistered.
type Deps struct {
	Users       service.UserService
	Locations   service.LocationService
	Avatars     service.AvatarService
	Links       service.LinkService
	Auth        middleware.TokenVerifier
	Limiter     *middleware.RateLimiter
	Webhook     *WebhookHandler
	CORSOrigins []string
}

// NewRouter builds the HTTP routes
func NewRouter(deps Deps) http.Handler {
	locationHandler := NewLocationHandler(deps.Locations)
	profileHandler := NewProfileHandler(deps.Users, deps.Avatars, deps.Links)

	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, map[string]string{"status": "ok"})
	})

	if deps.Webhook != nil {
		r.Post("/telegram/webhook/{secret}", deps.Webhook.HandleWebhook)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/locations", locationHandler.ListLocations)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.FirebaseAuth(deps.Auth))

			r.Get("/profile", profileHandler.GetProfile)
			r.Post("/profile/avatar", profileHandler.UploadAvatar)
			r.Post("/telegram/link-code", profileHandler.IssueLinkCode)
			r.Delete("/location", locationHandler.RemoveLocation)

			r.Group(func(r chi.Router) {
				if deps.Limiter != nil {
					r.Use(middleware.RateLimit(deps.Limiter))
				}
				r.Post("/location", locationHandler.SetLocation)
			})
		})
	})

	return r
}
