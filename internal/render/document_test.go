package render

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/ayham/sitekit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument(t *testing.T) {
	doc := Document(DocumentConfig{})
	t.Run("Should declare utf-8 charset", func(t *testing.T) {
		meta := doc.FindFirst(func(n *domain.Node) bool {
			_, ok := n.Attr("charset")
			return n.Tag == "meta" && ok
		})
		require.NotNil(t, meta)
		charset, _ := meta.Attr("charset")
		assert.Equal(t, "utf-8", charset)
	})
	t.Run("Should declare a device-width viewport", func(t *testing.T) {
		meta := doc.FindFirst(func(n *domain.Node) bool {
			name, _ := n.Attr("name")
			return n.Tag == "meta" && name == "viewport"
		})
		require.NotNil(t, meta)
		content, _ := meta.Attr("content")
		assert.Contains(t, content, "width=device-width")
	})
	t.Run("Should carry a description meta tag", func(t *testing.T) {
		meta := doc.FindFirst(func(n *domain.Node) bool {
			name, _ := n.Attr("name")
			return n.Tag == "meta" && name == "description"
		})
		require.NotNil(t, meta)
		content, _ := meta.Attr("content")
		assert.NotEmpty(t, content)
	})
	t.Run("Should link a favicon", func(t *testing.T) {
		link := doc.FindFirst(func(n *domain.Node) bool {
			rel, _ := n.Attr("rel")
			return n.Tag == "link" && rel == "icon"
		})
		require.NotNil(t, link)
		href, _ := link.Attr("href")
		assert.NotEmpty(t, href)
	})
	t.Run("Should title the document after the Jenkins learning app", func(t *testing.T) {
		title := doc.FindFirst(func(n *domain.Node) bool { return n.Tag == "title" })
		require.NotNil(t, title)
		assert.Regexp(t, regexp.MustCompile(`Learn Jenkins`), title.Text)
	})
	t.Run("Should mount the page under a root element", func(t *testing.T) {
		root := doc.FindFirst(func(n *domain.Node) bool {
			id, _ := n.Attr("id")
			return id == "root"
		})
		require.NotNil(t, root)
		require.Len(t, root.Children, 1)
		assert.True(t, root.Children[0].HasClass("App"))
	})
}

func TestWriteDocument(t *testing.T) {
	t.Run("Should emit a doctype before the html element", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteDocument(&buf, DocumentConfig{}))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("<!DOCTYPE html><html")))
	})
	t.Run("Should produce byte-identical documents for equal configs", func(t *testing.T) {
		cfg := DocumentConfig{Page: PageConfig{Version: domain.NewVersion("2.3.0")}}
		var first, second bytes.Buffer
		require.NoError(t, WriteDocument(&first, cfg))
		require.NoError(t, WriteDocument(&second, cfg))
		assert.Equal(t, first.Bytes(), second.Bytes())
	})
}

func TestAssets(t *testing.T) {
	assets, err := Assets()
	require.NoError(t, err)
	t.Run("Should embed the logo and the stylesheet", func(t *testing.T) {
		require.Contains(t, assets, LogoAsset)
		require.Contains(t, assets, StyleAsset)
		assert.Contains(t, string(assets[LogoAsset]), "<svg")
	})
	t.Run("Should size the logo in viewport-relative units", func(t *testing.T) {
		// Keeps the logo visible from phone to desktop viewports.
		css := string(assets[StyleAsset])
		assert.Contains(t, css, "40vmin")
		assert.Contains(t, css, "App-logo-spin")
	})
}
