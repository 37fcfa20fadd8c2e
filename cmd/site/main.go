// Command site renders the posts directory to HTML and serves the blog,
// with generated figures and tables under /static/.
package main

import (
	"os"

	"github.com/statnotes/statnotes/pkg/log"
	"github.com/statnotes/statnotes/site"
)

func main() {
	cfg := site.LoadConfig()

	// JSON logs for the server process, with stack traces split out of
	// logged errors.
	log.SetupLogger(cfg.LogLevel)
	log.SetLogger(log.NewSlogLogger(nil))
	logger := log.GetLoggerWithName("site")

	posts, err := site.LoadPosts(os.DirFS(cfg.PostsDir))
	if err != nil {
		logger.Error("loading posts failed", "dir", cfg.PostsDir, log.ErrAttrKey, err)
		os.Exit(1)
	}
	if len(posts) == 0 {
		logger.Warn("no posts found", "dir", cfg.PostsDir)
	}

	var static = os.DirFS(cfg.StaticDir)
	if _, err := os.Stat(cfg.StaticDir); err != nil {
		logger.Warn("static directory missing, figures will 404", "dir", cfg.StaticDir)
		static = nil
	}

	srv := site.NewServer(cfg, posts, static)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", log.ErrAttrKey, err)
		os.Exit(1)
	}
}
