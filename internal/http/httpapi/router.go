package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"descsvc/internal/http/handlers"
	"descsvc/internal/middleware"
)

type RouterOptions struct {
	APIToken           string
	CORSOrigins        []string
	RateLimitPerMinute int
	Logger             zerolog.Logger
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		middleware.Recoverer(opts.Logger),
		middleware.CORS(opts.CORSOrigins),
	)

	// Health stays reachable without a token for load balancers.
	r.Get("/health", app.Health)

	r.Group(func(r chi.Router) {
		r.Use(
			middleware.AuthToken(opts.APIToken),
			middleware.RateLimit(opts.RateLimitPerMinute, time.Minute),
		)

		r.Post("/generate-descriptions", app.GenerateDescriptions)
		r.Get("/jobs/{jobID}", app.JobStatus)

		r.Route("/descriptions/{subject}", func(r chi.Router) {
			r.Get("/", app.ListDescriptions)
			r.Get("/{item}", app.GetDescription)
		})

		r.Route("/admin/prompts", func(r chi.Router) {
			r.Get("/", app.ListPrompts)
			r.Get("/{name}", app.GetPrompt)
			r.Patch("/{name}", app.UpdatePrompt)
		})
	})

	r.NotFound(middleware.NotFound)
	r.MethodNotAllowed(middleware.MethodNotAllowed)

	return r
}
