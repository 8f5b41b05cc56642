package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lekhoni/lekhoni/internal/feed"
	"github.com/lekhoni/lekhoni/internal/files"
	"github.com/lekhoni/lekhoni/internal/likes"
	"github.com/lekhoni/lekhoni/internal/posts"
	"github.com/lekhoni/lekhoni/internal/session"
)

type AppConfig struct {
	Port         uint16
	CORSOrigin   string
	CookieName   string
	CookieSecure bool
}

type App struct {
	config   AppConfig
	posts    *posts.Service
	auth     *session.Service
	sessions *session.Cache
	toggler  *likes.Toggler
	files    files.FileStore
	feed     *feed.Refresher
}

func New(config AppConfig, postService *posts.Service, auth *session.Service, sessions *session.Cache, toggler *likes.Toggler, fileStore files.FileStore, refresher *feed.Refresher) *App {
	return &App{
		config:   config,
		posts:    postService,
		auth:     auth,
		sessions: sessions,
		toggler:  toggler,
		files:    fileStore,
		feed:     refresher,
	}
}

func (a *App) initRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{a.config.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", a.register)
		r.Post("/login", a.login)
		r.Get("/me", a.me)
		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth)
			r.Post("/logout", a.logout)
			r.Patch("/profile", a.updateProfile)
			r.Patch("/password", a.updatePassword)
			r.Delete("/account", a.deleteAccount)
		})
	})

	r.Route("/api/v1/posts", func(r chi.Router) {
		r.Get("/", a.listPosts)
		r.Get("/{postId}", a.getPost)
		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth)
			r.Post("/", a.createPost)
			r.Put("/{postId}", a.updatePost)
			r.Delete("/{postId}", a.deletePost)
			r.Post("/{postId}/like", a.toggleLike)
		})
	})

	r.With(a.requireAuth).Get("/api/v1/users/{userId}/posts", a.userPosts)

	r.Route("/api/v1/files", func(r chi.Router) {
		r.Get("/{fileId}", a.serveFile)
		r.With(a.requireAuth).Post("/", a.uploadFile)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func (a *App) Start() error {
	go a.sessions.Init(context.Background())
	if a.feed != nil {
		if err := a.feed.Start(); err != nil {
			return err
		}
		defer a.feed.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", a.config.Port),
		Handler:           a.initRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("listening on %s", srv.Addr)
	return srv.ListenAndServe()
}
