package render

import (
	"html"
	"io"
	"strings"

	"github.com/ayham/sitekit/internal/domain"
)

// Void elements per the HTML living standard; these never get a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Serialize renders a markup tree to HTML. Output is deterministic: element
// and attribute order follow the tree, text is escaped, no whitespace is
// inserted, so equal trees serialize to identical bytes.
func Serialize(n *domain.Node) string {
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

// WriteNode serializes a markup tree to w.
func WriteNode(w io.Writer, n *domain.Node) error {
	_, err := io.WriteString(w, Serialize(n))
	return err
}

func writeNode(sb *strings.Builder, n *domain.Node) {
	sb.WriteByte('<')
	sb.WriteString(n.Tag)
	for _, a := range n.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Key)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(a.Value))
		sb.WriteByte('"')
	}
	if voidElements[n.Tag] {
		sb.WriteString("/>")
		return
	}
	sb.WriteByte('>')
	if n.Text != "" {
		sb.WriteString(html.EscapeString(n.Text))
	}
	for _, c := range n.Children {
		writeNode(sb, c)
	}
	sb.WriteString("</")
	sb.WriteString(n.Tag)
	sb.WriteByte('>')
}
