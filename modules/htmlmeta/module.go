// Package htmlmeta extracts document metadata from HTML files: title, meta
// tags, link/heading counts, and a readability pass for article-like pages.
package htmlmeta

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/vk/metascan/internal/handlers"
)

// Module implements handlers.Module for this package.
type Module struct{}

// ExtractHTML parses the document and reports its structural metadata.
func ExtractHTML(ctx context.Context, path string, args map[string]any) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, err
	}

	attrs := map[string]any{
		"title":    strings.TrimSpace(doc.Find("title").First().Text()),
		"links":    doc.Find("a[href]").Length(),
		"images":   doc.Find("img").Length(),
		"headings": doc.Find("h1, h2, h3, h4, h5, h6").Length(),
	}

	meta := make(map[string]any)
	doc.Find("meta[name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		if content, ok := s.Attr("content"); ok && name != "" {
			meta[name] = content
		}
	})
	if len(meta) > 0 {
		attrs["meta"] = meta
	}
	if lang, ok := doc.Find("html").Attr("lang"); ok {
		attrs["lang"] = lang
	}
	return attrs, nil
}

// ExtractReadability runs a readability pass and reports the article fields
// it finds: byline, excerpt, estimated reading length.
func ExtractReadability(ctx context.Context, path string, args map[string]any) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Readability resolves relative links against the page URL; a file URL
	// stands in for local inputs.
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	pageURL, err := url.Parse("file://" + abs)
	if err != nil {
		return nil, err
	}

	parser := readability.NewParser()
	article, err := parser.Parse(f, pageURL)
	if err != nil {
		return nil, err
	}

	attrs := map[string]any{
		"title":  article.Title,
		"length": article.Length,
	}
	if article.Byline != "" {
		attrs["byline"] = article.Byline
	}
	if article.Excerpt != "" {
		attrs["excerpt"] = article.Excerpt
	}
	if article.SiteName != "" {
		attrs["site_name"] = article.SiteName
	}
	return attrs, nil
}

// Register wires this module's handlers into the process registry.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("ExtractHTML", ExtractHTML)
	h.Register("ExtractReadability", ExtractReadability)
}
