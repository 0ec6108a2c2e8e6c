package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig carries the transport settings main reads from config
type RouterConfig struct {
	CORSOrigins    []string
	RateLimitRPM   int
	RequestTimeout time.Duration
	MetricsHandler http.Handler
}

func (h *Handler) Routes(m *Middleware, cfg RouterConfig) *chi.Mux {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(m.RequestID)
	r.Use(m.RequestLogger)
	r.Use(m.Recoverer)
	r.Use(m.SecurityHeaders)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(m.CORS(cfg.CORSOrigins))

	// Health endpoints
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(m.RateLimit(cfg.RateLimitRPM))

		// Live updates hold the connection open, so they skip the timeout
		r.Get("/stream", h.HandleSSE)
		r.Get("/ws", h.HandleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(m.Timeout(cfg.RequestTimeout))

			r.Route("/calendar", func(r chi.Router) {
				r.Get("/week", h.GetWeek)
				r.Get("/navigate", h.Navigate)
				r.Get("/list", h.GetList)
				r.Get("/day/{date}", h.GetDay)
			})

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", h.ListPosts)
				r.Post("/", h.CreatePost)
				r.Get("/{id}", h.GetPost)
				r.Put("/{id}", h.UpdatePost)
				r.Patch("/{id}/status", h.SetPostStatus)
				r.Delete("/{id}", h.DeletePost)
			})

			r.Route("/approvals", func(r chi.Router) {
				r.Get("/", h.ListApprovals)
				r.Post("/", h.SubmitApproval)
				r.Get("/{id}", h.GetApproval)
				r.Delete("/{id}", h.DeleteApproval)
				r.Post("/{id}/approve", h.ApproveItem)
				r.Post("/{id}/reject", h.RejectItem)
				r.Post("/{id}/resubmit", h.ResubmitItem)
			})

			r.Route("/generator", func(r chi.Router) {
				r.Get("/templates", h.ListTemplates)
				r.Post("/preview", h.PreviewGeneration)
				r.Post("/jobs", h.StartGeneration)
				r.Get("/jobs/{id}", h.GetGeneration)
				r.Delete("/jobs/{id}", h.CancelGeneration)
				r.Get("/history", h.GenerationHistory)
			})

			r.Route("/assets", func(r chi.Router) {
				r.Get("/", h.ListAssets)
				r.Post("/", h.UploadAsset)
				r.Get("/jobs/{id}", h.GetUpload)
				r.Get("/{id}", h.GetAsset)
				r.Delete("/{id}", h.DeleteAsset)
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/platforms", h.PlatformStats)
				r.Get("/top-content", h.TopContent)
				r.Get("/audience", h.AudienceGrowth)
			})
			r.Get("/dashboard/summary", h.DashboardSummary)
			r.Get("/platforms", h.ListPlatforms)
		})
	})

	return r
}
