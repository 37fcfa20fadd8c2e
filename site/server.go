package site

import (
	"io/fs"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/statnotes/statnotes/pkg/errors"
	"github.com/statnotes/statnotes/pkg/log"
)

// Config holds the server settings, read from the environment.
type Config struct {
	Addr      string // LISTEN_ADDR, default :8080
	PostsDir  string // POSTS_DIR, default ./posts
	StaticDir string // STATIC_DIR, default ./static, figures and CSV exports
	LogLevel  string // LOG_LEVEL, default info
}

// LoadConfig loads a .env file when present, then reads the environment.
func LoadConfig() Config {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := Config{
		Addr:      os.Getenv("LISTEN_ADDR"),
		PostsDir:  os.Getenv("POSTS_DIR"),
		StaticDir: os.Getenv("STATIC_DIR"),
		LogLevel:  os.Getenv("LOG_LEVEL"),
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.PostsDir == "" {
		cfg.PostsDir = "posts"
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = "static"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg
}

// Server serves the rendered blog.
type Server struct {
	cfg    Config
	posts  []*Post
	bySlug map[string]*Post
	static fs.FS
	logger log.Logger
}

// NewServer builds a server from already-loaded posts. static may be nil
// when there are no figures to serve.
func NewServer(cfg Config, posts []*Post, static fs.FS) *Server {
	bySlug := make(map[string]*Post, len(posts))
	for _, p := range posts {
		bySlug[p.Slug] = p
	}
	return &Server{
		cfg:    cfg,
		posts:  posts,
		bySlug: bySlug,
		static: static,
		logger: log.GetLoggerWithName("site"),
	}
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleIndex)
	r.Get("/posts/{slug}", s.handlePost)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(s.static))))
	}
	return r
}

// ListenAndServe runs the server until it fails.
func (s *Server) ListenAndServe() error {
	s.logger.Info("serving",
		"addr", s.cfg.Addr,
		"posts", len(s.posts),
	)
	return errors.Wrap(http.ListenAndServe(s.cfg.Addr, s.Router()), "site server")
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := RenderIndex(s.posts)
	if err != nil {
		s.logger.Error("rendering index failed", log.ErrAttrKey, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	p, ok := s.bySlug[slug]
	if !ok {
		http.NotFound(w, r)
		return
	}
	page, err := RenderPost(p)
	if err != nil {
		s.logger.Error("rendering post failed", "slug", slug, log.ErrAttrKey, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}
