package usecase

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/ayham/sitekit/internal/domain"
	"github.com/ayham/sitekit/internal/render"
	"github.com/ayham/sitekit/internal/repository"
	"github.com/spf13/afero"
)

// SuiteName labels the verification suite in the published report.
const SuiteName = "markup-contract"

var titleRegex = regexp.MustCompile(`Learn Jenkins`)

// VerifyConfig is the input of a verification pass.
type VerifyConfig struct {
	OutputDir string
	Version   *domain.Version
	LinkURL   string
	Title     string
}

// VerifyMarkupUseCase checks a built site against the rendering contract.
// Every check runs even after failures so the report is complete.
type VerifyMarkupUseCase struct {
	FsRepo repository.FileSystemRepository
}

type check struct {
	name string
	fn   func() error
}

// Execute runs the contract checks and returns the suite; the error return
// only covers infrastructure problems (e.g. an unreadable build directory),
// never failed checks.
func (uc *VerifyMarkupUseCase) Execute(ctx context.Context, cfg VerifyConfig) (*domain.CheckSuite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docCfg := render.DocumentConfig{
		Title: cfg.Title,
		Page: render.PageConfig{
			Version: cfg.Version,
			LinkURL: cfg.LinkURL,
		},
	}
	doc := render.Document(docCfg)
	page := doc.FindFirst(func(n *domain.Node) bool { return n.HasClass("App") })
	suite := &domain.CheckSuite{Name: SuiteName, StartedAt: time.Now()}
	for _, c := range uc.checks(docCfg, doc, page, cfg) {
		start := time.Now()
		result := domain.CheckResult{Name: c.name, Passed: true}
		if err := c.fn(); err != nil {
			result.Passed = false
			result.Message = err.Error()
		}
		result.Duration = time.Since(start)
		suite.Results = append(suite.Results, result)
	}
	return suite, nil
}

func (uc *VerifyMarkupUseCase) checks(docCfg render.DocumentConfig, doc, page *domain.Node, cfg VerifyConfig) []check {
	expectedVersion := versionOrDefault(cfg.Version).Display()
	return []check{
		{"renders exactly one App container", func() error {
			return exactlyOne(doc, func(n *domain.Node) bool { return n.HasClass("App") })
		}},
		{"renders exactly one App-header as a semantic header", func() error {
			if err := exactlyOne(doc, func(n *domain.Node) bool { return n.HasClass("App-header") }); err != nil {
				return err
			}
			header := doc.FindFirst(func(n *domain.Node) bool { return n.HasClass("App-header") })
			if header.Tag != "header" {
				return fmt.Errorf("App-header is a %s, expected header", header.Tag)
			}
			return nil
		}},
		{"renders exactly one logo image with alt text", func() error {
			if err := exactlyOne(doc, func(n *domain.Node) bool { return n.Tag == "img" }); err != nil {
				return err
			}
			img := doc.FindFirst(func(n *domain.Node) bool { return n.Tag == "img" })
			if alt, _ := img.Attr("alt"); alt != "logo" {
				return fmt.Errorf("logo alt is %q, expected %q", alt, "logo")
			}
			if !img.HasClass("App-logo") {
				return fmt.Errorf("logo image is missing the App-logo class")
			}
			return nil
		}},
		{"animates the logo", func() error {
			img := doc.FindFirst(func(n *domain.Node) bool { return n.Tag == "img" })
			if img == nil {
				return fmt.Errorf("no image found")
			}
			style, _ := img.Attr("style")
			if !regexp.MustCompile(`animation:\S`).MatchString(style) {
				return fmt.Errorf("logo has no animation style: %q", style)
			}
			return nil
		}},
		{"renders exactly one anchor with the expected text and attributes", func() error {
			if err := exactlyOne(page, func(n *domain.Node) bool { return n.Tag == "a" }); err != nil {
				return err
			}
			a := page.FindFirst(func(n *domain.Node) bool { return n.Tag == "a" })
			if text := a.InnerText(); text != "ayham" {
				return fmt.Errorf("anchor text is %q, expected %q", text, "ayham")
			}
			if href, _ := a.Attr("href"); href == "" {
				return fmt.Errorf("anchor href is empty")
			}
			if target, _ := a.Attr("target"); target != "_blank" {
				return fmt.Errorf("anchor target is %q, expected _blank", target)
			}
			return nil
		}},
		{"pairs noopener with target=_blank on every anchor", func() error {
			for _, a := range doc.FindAll(func(n *domain.Node) bool { return n.Tag == "a" }) {
				target, _ := a.Attr("target")
				rel, _ := a.Attr("rel")
				if target == "_blank" && !regexp.MustCompile(`\bnoopener\b`).MatchString(rel) {
					return fmt.Errorf("anchor with target=_blank has rel %q without noopener", rel)
				}
			}
			return nil
		}},
		{"gives every image a non-empty alt attribute", func() error {
			for _, img := range doc.FindAll(func(n *domain.Node) bool { return n.Tag == "img" }) {
				if alt, ok := img.Attr("alt"); !ok || alt == "" {
					return fmt.Errorf("image %s has no alt text", render.Serialize(img))
				}
			}
			return nil
		}},
		{"renders exactly one version paragraph with the expected text", func() error {
			if err := exactlyOne(page, func(n *domain.Node) bool { return n.Tag == "p" }); err != nil {
				return err
			}
			p := page.FindFirst(func(n *domain.Node) bool { return n.Tag == "p" })
			expected := "Application version: " + expectedVersion
			if p.Text != expected {
				return fmt.Errorf("version line is %q, expected %q", p.Text, expected)
			}
			return nil
		}},
		{"titles the document after the Jenkins learning app", func() error {
			title := doc.FindFirst(func(n *domain.Node) bool { return n.Tag == "title" })
			if title == nil {
				return fmt.Errorf("document has no title")
			}
			if !titleRegex.MatchString(title.Text) {
				return fmt.Errorf("title %q does not match /Learn Jenkins/", title.Text)
			}
			return nil
		}},
		{"declares charset, viewport, description and favicon", func() error {
			return checkHead(doc)
		}},
		{"re-renders byte-identically", func() error {
			first := render.Serialize(render.Document(docCfg))
			second := render.Serialize(render.Document(docCfg))
			if first != second {
				return fmt.Errorf("two renders of the same config differ")
			}
			return nil
		}},
		{"matches the built index.html on disk", func() error {
			built, err := afero.ReadFile(uc.FsRepo, filepath.Join(cfg.OutputDir, IndexFile))
			if err != nil {
				return fmt.Errorf("failed to read built index: %v", err)
			}
			var expected bytes.Buffer
			if err := render.WriteDocument(&expected, docCfg); err != nil {
				return err
			}
			if !bytes.Equal(built, expected.Bytes()) {
				return fmt.Errorf("built index.html does not match a fresh render")
			}
			return nil
		}},
		{"keeps the page load under the request budget", func() error {
			entries, err := afero.ReadDir(uc.FsRepo, cfg.OutputDir)
			if err != nil {
				return fmt.Errorf("failed to list build directory: %v", err)
			}
			if len(entries) >= 50 {
				return fmt.Errorf("a page load would touch %d files, budget is 50", len(entries))
			}
			return nil
		}},
	}
}

func exactlyOne(root *domain.Node, pred func(*domain.Node) bool) error {
	found := root.FindAll(pred)
	if len(found) != 1 {
		return fmt.Errorf("expected exactly 1 match, found %d", len(found))
	}
	return nil
}

func checkHead(doc *domain.Node) error {
	if doc.FindFirst(func(n *domain.Node) bool {
		charset, _ := n.Attr("charset")
		return n.Tag == "meta" && charset == "utf-8"
	}) == nil {
		return fmt.Errorf("missing utf-8 charset meta")
	}
	viewport := doc.FindFirst(func(n *domain.Node) bool {
		name, _ := n.Attr("name")
		return n.Tag == "meta" && name == "viewport"
	})
	if viewport == nil {
		return fmt.Errorf("missing viewport meta")
	}
	if content, _ := viewport.Attr("content"); !regexp.MustCompile(`width=device-width`).MatchString(content) {
		return fmt.Errorf("viewport meta does not declare device width")
	}
	if doc.FindFirst(func(n *domain.Node) bool {
		name, _ := n.Attr("name")
		return n.Tag == "meta" && name == "description"
	}) == nil {
		return fmt.Errorf("missing description meta")
	}
	if doc.FindFirst(func(n *domain.Node) bool {
		rel, _ := n.Attr("rel")
		return n.Tag == "link" && rel == "icon"
	}) == nil {
		return fmt.Errorf("missing favicon link")
	}
	return nil
}
