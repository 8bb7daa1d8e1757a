package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/quillpost/quillpost-go/internal/middleware"
	"github.com/quillpost/quillpost-go/internal/respond"
	"github.com/quillpost/quillpost-go/internal/service"
)

// Services groups the business services exposed over HTTP.
type Services struct {
	Auth      *service.AuthService
	Posts     *service.PostService
	Comments  *service.CommentService
	Dashboard *service.DashboardService
}

// RouterConfig holds the transport settings of the API.
type RouterConfig struct {
	Verifier      middleware.TokenVerifier
	CORSOrigins   []string
	AuthRateRPS   float64
	AuthRateBurst int
	// Ping reports database health for /health. Optional.
	Ping func(ctx context.Context) error
}

// NewRouter builds the chi router serving the QuillPost API.
func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(svc.Auth)
	postHandler := NewPostHandler(svc.Posts)
	commentHandler := NewCommentHandler(svc.Comments)
	dashboardHandler := NewDashboardHandler(svc.Dashboard)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/health", healthHandler(cfg.Ping))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.AuthRateRPS, cfg.AuthRateBurst))
			r.Post("/users/register", authHandler.HandleRegister)
			r.Post("/users/login", authHandler.HandleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(cfg.Verifier))

			r.Get("/users/me", authHandler.HandleMe)
			r.Put("/users/{id}", authHandler.HandleUpdateProfile)

			r.Get("/blogs", postHandler.HandleList)
			r.Post("/blogs", postHandler.HandleCreate)
			r.Get("/blogs/{id}", postHandler.HandleGet)
			r.Put("/blogs/{id}", postHandler.HandleUpdate)
			r.Delete("/blogs/{id}", postHandler.HandleDelete)

			r.Get("/comments", commentHandler.HandleList)
			r.Post("/comments", commentHandler.HandleCreate)

			r.Get("/dashboard/stats", dashboardHandler.HandleStats)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

func healthHandler(ping func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				respond.Error(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
