package bootstrap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/fragy/internal/config"
)

// Host attaches rendered markup to the element with the anchor id.
type Host interface {
	Mount(ctx context.Context, anchor, markup string) error
}

// DocumentHost mounts into an HTML document held in memory.
type DocumentHost struct {
	mu  sync.Mutex
	doc *html.Node
}

// NewDocumentHost parses the shell document from r.
func NewDocumentHost(r io.Reader) (*DocumentHost, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse shell document: %w", err)
	}
	return &DocumentHost{doc: doc}, nil
}

// DefaultShell returns the document the application mounts into when the
// theme provides none.
func DefaultShell(c config.BuildConstants) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"")
	b.WriteString(html.EscapeString(c.Locale))
	b.WriteString("\"><head><meta charset=\"utf-8\"><title>")
	b.WriteString(html.EscapeString(c.Title))
	b.WriteString("</title>")
	if c.FaviconURL != "" {
		b.WriteString("<link rel=\"icon\" href=\"")
		b.WriteString(html.EscapeString(c.FaviconURL))
		b.WriteString("\">")
	}
	b.WriteString("</head><body><div id=\"")
	b.WriteString(AnchorID)
	b.WriteString("\"></div></body></html>\n")
	return b.String()
}

// Mount replaces the children of the anchor element with markup.
func (h *DocumentHost) Mount(_ context.Context, anchor, markup string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	target := findByID(h.doc, anchor)
	if target == nil {
		return fmt.Errorf("anchor element #%s not found", anchor)
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     target.Data,
		DataAtom: atom.Lookup([]byte(target.Data)),
	})
	if err != nil {
		return fmt.Errorf("parse rendered root: %w", err)
	}
	for c := target.FirstChild; c != nil; {
		next := c.NextSibling
		target.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		target.AppendChild(n)
	}
	return nil
}

// Render writes the current document to w.
func (h *DocumentHost) Render(w io.Writer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return html.Render(w, h.doc)
}

// String renders the document.
func (h *DocumentHost) String() string {
	var buf bytes.Buffer
	if err := h.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}
