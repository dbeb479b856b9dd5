package render

import (
	"io"

	"github.com/ayham/sitekit/internal/domain"
)

const (
	// DefaultTitle is the document title served with the page.
	DefaultTitle = "Learn Jenkins App"
	// DefaultDescription feeds the description meta tag.
	DefaultDescription = "Static page built and deployed by sitekit"
)

// DocumentConfig describes the full HTML document wrapping the page.
type DocumentConfig struct {
	Title       string
	Description string
	Page        PageConfig
}

func (c DocumentConfig) title() string {
	if c.Title == "" {
		return DefaultTitle
	}
	return c.Title
}

func (c DocumentConfig) description() string {
	if c.Description == "" {
		return DefaultDescription
	}
	return c.Description
}

// Document renders the complete HTML tree: head metadata plus a #root mount
// element containing the page markup.
func Document(cfg DocumentConfig) *domain.Node {
	head := domain.NewNode("head").
		AddChild(domain.NewNode("meta").SetAttr("charset", "utf-8")).
		AddChild(domain.NewNode("meta").
			SetAttr("name", "viewport").
			SetAttr("content", "width=device-width, initial-scale=1")).
		AddChild(domain.NewNode("meta").
			SetAttr("name", "description").
			SetAttr("content", cfg.description())).
		AddChild(domain.NewNode("link").
			SetAttr("rel", "icon").
			SetAttr("href", cfg.Page.logoSrc())).
		AddChild(domain.NewNode("link").
			SetAttr("rel", "stylesheet").
			SetAttr("href", StyleAsset)).
		AddChild(domain.NewNode("title").SetText(cfg.title()))
	body := domain.NewNode("body").
		AddChild(domain.NewNode("div").
			SetAttr("id", "root").
			AddChild(Page(cfg.Page)))
	return domain.NewNode("html").
		SetAttr("lang", "en").
		AddChild(head).
		AddChild(body)
}

// WriteDocument serializes the full document, doctype included, to w.
func WriteDocument(w io.Writer, cfg DocumentConfig) error {
	if _, err := io.WriteString(w, "<!DOCTYPE html>"); err != nil {
		return err
	}
	return WriteNode(w, Document(cfg))
}
