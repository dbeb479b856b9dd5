package render

import (
	"fmt"

	"github.com/ayham/sitekit/internal/domain"
)

// Rotation applied to the logo. Kept inline on the element so the animation
// survives even when the stylesheet fails to load.
const logoSpinStyle = "animation:App-logo-spin infinite 20s linear"

// DefaultLinkURL is the destination of the page's single anchor.
const DefaultLinkURL = "https://www.jenkins.io"

// PageConfig is the full input of the page renderer. The renderer is a pure
// function of this value: equal configs always produce identical trees.
type PageConfig struct {
	// Version is the display version; nil means the default.
	Version *domain.Version
	// LinkURL overrides the anchor destination when non-empty.
	LinkURL string
	// LogoSrc overrides the logo image source when non-empty.
	LogoSrc string
}

func (c PageConfig) version() *domain.Version {
	if c.Version == nil {
		return domain.NewVersion("")
	}
	return c.Version
}

func (c PageConfig) linkURL() string {
	if c.LinkURL == "" {
		return DefaultLinkURL
	}
	return c.LinkURL
}

func (c PageConfig) logoSrc() string {
	if c.LogoSrc == "" {
		return LogoAsset
	}
	return c.LogoSrc
}

// Page renders the application markup tree:
//
//	div.App
//	└── header.App-header
//	    ├── img.App-logo  alt=logo, spinning
//	    ├── a.App-link    "ayham", opens in a new tab
//	    └── p             "Application version: {v}"
//
// Every call builds a fresh tree; no state is shared between invocations.
func Page(cfg PageConfig) *domain.Node {
	logo := domain.NewNode("img").
		SetAttr("src", cfg.logoSrc()).
		SetAttr("class", "App-logo").
		SetAttr("alt", "logo").
		SetAttr("style", logoSpinStyle)
	link := domain.NewNode("a").
		SetAttr("class", "App-link").
		SetAttr("href", cfg.linkURL()).
		SetAttr("target", "_blank").
		SetAttr("rel", "noopener noreferrer").
		SetText("ayham")
	versionLine := domain.NewNode("p").
		SetText(fmt.Sprintf("Application version: %s", cfg.version().Display()))
	header := domain.NewNode("header").
		SetAttr("class", "App-header").
		AddChild(logo).
		AddChild(link).
		AddChild(versionLine)
	return domain.NewNode("div").
		SetAttr("class", "App").
		AddChild(header)
}
