package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeAttrs(t *testing.T) {
	t.Run("Should preserve attribute order", func(t *testing.T) {
		n := NewNode("img").SetAttr("src", "logo.svg").SetAttr("class", "App-logo").SetAttr("alt", "logo")
		require.Len(t, n.Attrs, 3)
		assert.Equal(t, "src", n.Attrs[0].Key)
		assert.Equal(t, "class", n.Attrs[1].Key)
		assert.Equal(t, "alt", n.Attrs[2].Key)
	})
	t.Run("Should replace an existing attribute in place", func(t *testing.T) {
		n := NewNode("a").SetAttr("href", "old").SetAttr("target", "_blank").SetAttr("href", "new")
		require.Len(t, n.Attrs, 2)
		val, ok := n.Attr("href")
		require.True(t, ok)
		assert.Equal(t, "new", val)
		assert.Equal(t, "href", n.Attrs[0].Key)
	})
	t.Run("Should report missing attributes", func(t *testing.T) {
		_, ok := NewNode("p").Attr("class")
		assert.False(t, ok)
	})
}

func TestNodeHasClass(t *testing.T) {
	t.Run("Should match a single class token", func(t *testing.T) {
		n := NewNode("div").SetAttr("class", "App")
		assert.True(t, n.HasClass("App"))
	})
	t.Run("Should match among multiple tokens", func(t *testing.T) {
		n := NewNode("div").SetAttr("class", "App App-wide")
		assert.True(t, n.HasClass("App-wide"))
	})
	t.Run("Should not match a substring of a token", func(t *testing.T) {
		n := NewNode("div").SetAttr("class", "App-header")
		assert.False(t, n.HasClass("App"))
	})
}

func TestNodeQueries(t *testing.T) {
	root := NewNode("div").SetAttr("class", "App").
		AddChild(NewNode("header").SetAttr("class", "App-header").
			AddChild(NewNode("img").SetAttr("alt", "logo")).
			AddChild(NewNode("a").SetText("ayham")).
			AddChild(NewNode("p").SetText("Application version: 1")))
	t.Run("Should find all nodes matching a predicate in document order", func(t *testing.T) {
		found := root.FindAll(func(n *Node) bool { return n.Tag == "img" || n.Tag == "a" })
		require.Len(t, found, 2)
		assert.Equal(t, "img", found[0].Tag)
		assert.Equal(t, "a", found[1].Tag)
	})
	t.Run("Should find the first matching node", func(t *testing.T) {
		n := root.FindFirst(func(n *Node) bool { return n.Tag == "p" })
		require.NotNil(t, n)
		assert.Equal(t, "Application version: 1", n.Text)
	})
	t.Run("Should return nil when nothing matches", func(t *testing.T) {
		assert.Nil(t, root.FindFirst(func(n *Node) bool { return n.Tag == "video" }))
	})
	t.Run("Should concatenate inner text in document order", func(t *testing.T) {
		assert.Equal(t, "ayhamApplication version: 1", root.InnerText())
	})
}
