// Package articles indexes the markdown posts of a fragy site and writes the
// article list consumed by themes.
package articles

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/inful/mdfp"
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/fragy/internal/foundation/errors"
)

// Article is one entry of the article list.
type Article struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date,omitzero"`
	Tags        []string  `json:"tags,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Path        string    `json:"path"` // slash-separated, relative to the posts dir
	Fingerprint string    `json:"fingerprint"`
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"}

// Index walks postsDir for markdown files and returns the non-draft
// articles, newest first. A missing postsDir yields an empty list.
func Index(postsDir string) ([]Article, error) {
	if _, err := os.Stat(postsDir); os.IsNotExist(err) {
		return []Article{}, nil
	}

	list := []Article{}
	err := filepath.WalkDir(postsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(postsDir, path)
		if err != nil {
			return err
		}
		a, draft, err := Parse(filepath.ToSlash(rel), data)
		if err != nil {
			return err
		}
		if !draft {
			list = append(list, a)
		}
		return nil
	})
	if err != nil {
		return nil, ferrors.FileSystemError("index articles").WithCause(err).WithContext("path", postsDir).Build()
	}

	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].Slug < list[j].Slug
	})
	return list, nil
}

// Parse reads one markdown document. rel is its slash-separated path below
// the posts dir. The returned bool reports whether the article is a draft.
func Parse(rel string, data []byte) (Article, bool, error) {
	fields := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(data), &fields)
	if err != nil {
		body = data
		fields = map[string]any{}
	}

	slug := strings.TrimSuffix(rel, filepath.Ext(rel))
	a := Article{
		Slug:    slug,
		Path:    rel,
		Title:   stringField(fields, "title"),
		Summary: stringField(fields, "description"),
		Tags:    stringsField(fields, "tags"),
	}
	if a.Title == "" {
		a.Title = firstHeading(body)
	}
	if a.Title == "" {
		a.Title = titleFromName(filepath.Base(slug))
	}
	if raw, ok := fields["date"]; ok {
		d, err := parseDate(raw)
		if err != nil {
			return Article{}, false, fmt.Errorf("%s: %w", rel, err)
		}
		a.Date = d
	}

	fp, err := fingerprint(fields, body)
	if err != nil {
		return Article{}, false, fmt.Errorf("%s: %w", rel, err)
	}
	a.Fingerprint = fp

	draft, _ := fields["draft"].(bool)
	return a, draft, nil
}

func fingerprint(fields map[string]any, body []byte) (string, error) {
	fm := ""
	if len(fields) > 0 {
		out, err := yaml.Marshal(fields)
		if err != nil {
			return "", fmt.Errorf("serialize front matter: %w", err)
		}
		fm = strings.TrimSuffix(string(out), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(fm, string(body)), nil
}

func firstHeading(body []byte) string {
	root := goldmark.New().Parser().Parse(text.NewReader(body))
	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		var sb strings.Builder
		_ = gmast.Walk(h, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
			if t, ok := c.(*gmast.Text); ok && entering {
				sb.Write(t.Segment.Value(body))
			}
			return gmast.WalkContinue, nil
		})
		title = strings.TrimSpace(sb.String())
		return gmast.WalkStop, nil
	})
	return title
}

func titleFromName(name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.English).String(name)
}

func parseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(d)); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", d)
	default:
		return time.Time{}, fmt.Errorf("unsupported date value %v", v)
	}
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return strings.TrimSpace(s)
}

func stringsField(fields map[string]any, key string) []string {
	switch v := fields[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	case string:
		return []string{v}
	}
	return nil
}

// WriteList writes list as indented JSON to path, creating parent dirs.
func WriteList(path string, list []Article) error {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal article list: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ferrors.FileSystemError("create article list directory").WithCause(err).WithContext("path", path).Build()
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return ferrors.FileSystemError("write article list").WithCause(err).WithContext("path", path).Build()
	}
	return nil
}
