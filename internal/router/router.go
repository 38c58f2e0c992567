// Package router assembles the HTTP routes of the blog API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayush/inkwell/backend/internal/auth"
	"github.com/ayush/inkwell/backend/internal/category"
	"github.com/ayush/inkwell/backend/internal/middleware"
	"github.com/ayush/inkwell/backend/internal/posts"
)

// Deps are the handlers and collaborators the router wires together.
type Deps struct {
	Auth        *auth.Handler
	Categories  *category.Handler
	Posts       *posts.Handler
	Verifier    middleware.TokenVerifier
	APIPrefix   string
	CORSOrigins []string
}

func New(d Deps) http.Handler {
	requireAuth := middleware.RequireAuth(d.Verifier)
	optionalAuth := middleware.OptionalAuth(d.Verifier)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Uploaded images are served unprefixed, matching the stored paths.
	r.Get("/uploads/{name}", d.Posts.ServeUpload)

	api := func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", d.Auth.Register)
			r.Post("/login", d.Auth.Login)
			r.With(requireAuth).Get("/me", d.Auth.Me)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", d.Categories.List)
			r.With(requireAuth).Post("/", d.Categories.Create)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", d.Posts.List)
			r.With(requireAuth).Post("/", d.Posts.Create)
			r.With(requireAuth).Post("/upload", d.Posts.Upload)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", d.Posts.Get)
				r.With(requireAuth).Put("/", d.Posts.Update)
				r.With(requireAuth).Delete("/", d.Posts.Delete)

				r.With(optionalAuth).Post("/comments", d.Posts.AddComment)
				r.With(requireAuth).Delete("/comments/{commentId}", d.Posts.DeleteComment)
				r.With(optionalAuth).Post("/comments/{commentId}/replies", d.Posts.AddReply)
				r.With(requireAuth).Delete("/comments/{commentId}/replies/{replyId}", d.Posts.DeleteReply)
			})
		})
	}
	if d.APIPrefix == "" || d.APIPrefix == "/" {
		r.Group(api)
	} else {
		r.Route(d.APIPrefix, api)
	}

	return r
}
