// Package site turns the posts directory into a small blog: markdown posts
// with front matter, rendered to HTML behind a chi router.
package site

import (
	"bufio"
	"bytes"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/statnotes/statnotes/pkg/errors"
)

// Post is one notebook-style article.
type Post struct {
	Slug    string
	Title   string
	Date    time.Time
	Summary string
	Tags    []string
	Body    []byte // markdown, front matter stripped
}

// ParsePost reads a markdown file with a front matter block:
//
//	---
//	title: Getting better at charts
//	date: 2024-06-01
//	summary: ...
//	tags: charts, accessibility
//	---
func ParsePost(slug string, raw []byte) (*Post, error) {
	p := &Post{Slug: slug}

	rest := raw
	if bytes.HasPrefix(raw, []byte("---\n")) {
		end := bytes.Index(raw[4:], []byte("\n---"))
		if end < 0 {
			return nil, errors.NewValueError("site.ParsePost", "unterminated front matter")
		}
		front := raw[4 : 4+end]
		rest = raw[4+end+4:]
		rest = bytes.TrimLeft(rest, "\n")

		sc := bufio.NewScanner(bytes.NewReader(front))
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			key, value, found := strings.Cut(line, ":")
			if !found {
				return nil, errors.NewValueError("site.ParsePost", "malformed front matter line: "+line)
			}
			value = strings.TrimSpace(value)
			switch strings.TrimSpace(key) {
			case "title":
				p.Title = value
			case "date":
				d, err := time.Parse("2006-01-02", value)
				if err != nil {
					return nil, errors.Wrapf(err, "parsing date of %s", slug)
				}
				p.Date = d
			case "summary":
				p.Summary = value
			case "tags":
				for _, tag := range strings.Split(value, ",") {
					if tag = strings.TrimSpace(tag); tag != "" {
						p.Tags = append(p.Tags, tag)
					}
				}
			}
		}
	}

	if p.Title == "" {
		return nil, errors.NewValueError("site.ParsePost", "post has no title: "+slug)
	}
	p.Body = rest
	return p, nil
}

// LoadPosts reads every .md file in the root of fsys and returns the posts
// newest first. The slug is the file name without extension.
func LoadPosts(fsys fs.FS) ([]*Post, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errors.Wrap(err, "reading posts directory")
	}

	var posts []*Post
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		raw, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", e.Name())
		}
		slug := strings.TrimSuffix(e.Name(), ".md")
		p, err := ParsePost(slug, raw)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Slug < posts[j].Slug
	})
	return posts, nil
}
