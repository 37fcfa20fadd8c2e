package site

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePost = `---
title: Getting better at charts
date: 2024-06-01
summary: Small steps toward accessible figures.
tags: charts, accessibility
---

# Why alt text

Every figure gets a description.
`

func TestParsePost(t *testing.T) {
	p, err := ParsePost("charts", []byte(samplePost))
	require.NoError(t, err)

	assert.Equal(t, "charts", p.Slug)
	assert.Equal(t, "Getting better at charts", p.Title)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), p.Date)
	assert.Equal(t, "Small steps toward accessible figures.", p.Summary)
	assert.Equal(t, []string{"charts", "accessibility"}, p.Tags)
	assert.Contains(t, string(p.Body), "# Why alt text")
	assert.NotContains(t, string(p.Body), "---")
}

func TestParsePost_Errors(t *testing.T) {
	_, err := ParsePost("x", []byte("---\ntitle: unterminated"))
	assert.Error(t, err)

	_, err = ParsePost("x", []byte("no front matter, no title"))
	assert.Error(t, err)

	_, err = ParsePost("x", []byte("---\ntitle: t\ndate: June 1st\n---\nbody"))
	assert.Error(t, err, "non-ISO dates should be rejected")
}

func TestLoadPosts_SortsNewestFirst(t *testing.T) {
	fsys := fstest.MapFS{
		"old.md":   {Data: []byte("---\ntitle: Old\ndate: 2023-01-01\n---\nbody")},
		"new.md":   {Data: []byte("---\ntitle: New\ndate: 2025-03-01\n---\nbody")},
		"notes.txt": {Data: []byte("ignored")},
	}
	posts, err := LoadPosts(fsys)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "new", posts[0].Slug)
	assert.Equal(t, "old", posts[1].Slug)
}

func TestRenderHTML(t *testing.T) {
	out := string(RenderHTML([]byte("# Heading\n\nSome *emphasis* and a [link](/x).\n")))
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<em>emphasis</em>")
	assert.Contains(t, out, `href="/x"`)
}

func testServer(t *testing.T) *Server {
	t.Helper()
	fsys := fstest.MapFS{
		"charts.md": {Data: []byte(samplePost)},
	}
	posts, err := LoadPosts(fsys)
	require.NoError(t, err)
	return NewServer(Config{Addr: ":0"}, posts, fstest.MapFS{
		"fig.txt": {Data: []byte("figure placeholder")},
	})
}

func TestServer_Index(t *testing.T) {
	srv := httptest.NewServer(testServer(t).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Getting better at charts")
}

func TestServer_PostAndNotFound(t *testing.T) {
	srv := httptest.NewServer(testServer(t).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/posts/charts")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/posts/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("POSTS_DIR", "")
	t.Setenv("STATIC_DIR", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := LoadConfig()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "posts", cfg.PostsDir)
	assert.Equal(t, "static", cfg.StaticDir)
	assert.Equal(t, "info", cfg.LogLevel)
}
