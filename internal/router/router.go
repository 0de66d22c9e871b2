package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"killrvideo-backend/internal/handlers"
	"killrvideo-backend/internal/middleware"
)

func New(
	jwtAuth *middleware.JWTAuth,
	videoHandler *handlers.VideoHandler,
	searchHandler *handlers.SearchHandler,
	ratingHandler *handlers.RatingHandler,
	commentHandler *handlers.CommentHandler,
	moderationHandler *handlers.ModerationHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Write rate limiter (30 req/min per IP)
	writeLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Video Routes ────
		r.Route("/videos", func(r chi.Router) {
			// Public reads
			r.Get("/latest", videoHandler.Latest)
			r.Get("/trending", videoHandler.Trending)
			r.Get("/{id}", videoHandler.Get)
			r.Get("/{id}/status", videoHandler.Status)
			r.Get("/{id}/related", videoHandler.Related)
			r.Get("/{id}/ratings", ratingHandler.Summary)
			r.Get("/{id}/comments", commentHandler.List)

			// Views count anonymously
			r.Post("/{id}/views", videoHandler.RecordView)

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Use(writeLimiter.Middleware)
				r.Post("/", videoHandler.Submit)
				r.Put("/{id}", videoHandler.Update)
				r.Delete("/{id}", videoHandler.Delete)
				r.Post("/{id}/ratings", ratingHandler.Submit)
				r.Delete("/{id}/ratings", ratingHandler.Remove)
				r.Get("/{id}/ratings/me", ratingHandler.Mine)
				r.Post("/{id}/comments", commentHandler.Submit)
			})
		})

		// ──── Comment Routes ────
		r.Route("/comments", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Delete("/{commentID}", commentHandler.Delete)
		})

		// ──── Search Routes ────
		r.Route("/search", func(r chi.Router) {
			r.Get("/videos", searchHandler.Videos)
			r.Get("/tags", searchHandler.TagSuggestions)
		})

		// ──── Browse by tag / uploader ────
		r.Get("/tags/{tag}/videos", videoHandler.ByTag)
		r.Get("/users/{userID}/videos", videoHandler.ByUploader)

		// ──── Moderation Routes ────
		r.Route("/moderation", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)

			// Any authenticated user can report content
			r.Post("/flags", moderationHandler.CreateFlag)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Get("/flags", moderationHandler.ListFlags)
				r.Get("/flags/{flagID}", moderationHandler.GetFlag)
				r.Post("/flags/{flagID}/action", moderationHandler.ActOnFlag)
			})
		})
	})

	return r
}
