package directive

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// ImageRenderer converts DOT text into an image ("svg" or "png").
type ImageRenderer interface {
	Render(ctx context.Context, dot, format string) ([]byte, error)
}

// DefaultAlt is the alt text of PNG diagrams without an "alt" option.
const DefaultAlt = "pipeline diagram"

// HTMLRenderer renders directive nodes to HTML.
//
// Graphviz nodes become inline SVG or a PNG data URI when Images is set, and
// a <pre> block with the DOT source otherwise.
type HTMLRenderer struct {
	Images ImageRenderer
	Format string

	// Context is passed to Images. goldmark render functions carry none.
	Context context.Context
}

// NewHTMLRenderer returns a renderer drawing images in format ("svg" when
// empty).
func NewHTMLRenderer(images ImageRenderer, format string) *HTMLRenderer {
	return &HTMLRenderer{Images: images, Format: format}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *HTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindTable, r.renderTable)
	reg.Register(KindTableRow, r.renderTableRow)
	reg.Register(KindTableCell, r.renderTableCell)
	reg.Register(KindLiteralBlock, r.renderLiteralBlock)
	reg.Register(KindGraphviz, r.renderGraphviz)
}

func (r *HTMLRenderer) renderTable(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</tbody>\n</table>\n")
		return ast.WalkContinue, nil
	}
	t := node.(*Table)
	_, _ = w.WriteString("<table class=\"directive-table\">\n<colgroup>\n")
	for _, width := range t.Widths {
		fmt.Fprintf(w, "<col style=\"width: %d%%\" />\n", width)
	}
	_, _ = w.WriteString("</colgroup>\n<tbody>\n")
	return ast.WalkContinue, nil
}

func (r *HTMLRenderer) renderTableRow(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<tr>\n")
	} else {
		_, _ = w.WriteString("</tr>\n")
	}
	return ast.WalkContinue, nil
}

func (r *HTMLRenderer) renderTableCell(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<td>")
	} else {
		_, _ = w.WriteString("</td>\n")
	}
	return ast.WalkContinue, nil
}

func (r *HTMLRenderer) renderLiteralBlock(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	lb := node.(*LiteralBlock)
	_, _ = w.WriteString("<pre class=\"literal-block\"><code>")
	_, _ = w.WriteString(html.EscapeString(lb.Content))
	_, _ = w.WriteString("</code></pre>")
	return ast.WalkSkipChildren, nil
}

func (r *HTMLRenderer) renderGraphviz(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	g := node.(*Graphviz)

	if r.Images == nil {
		_, _ = w.WriteString("<pre class=\"graphviz\"><code>")
		_, _ = w.WriteString(html.EscapeString(g.Code))
		_, _ = w.WriteString("</code></pre>")
		return ast.WalkSkipChildren, nil
	}

	ctx := r.Context
	if ctx == nil {
		ctx = context.Background()
	}
	format := r.Format
	if format == "" {
		format = "svg"
	}
	img, err := r.Images.Render(ctx, g.Code, format)
	if err != nil {
		return ast.WalkStop, err
	}

	_, _ = w.WriteString("<div class=\"graphviz\">")
	if format == "png" {
		alt := g.Options["alt"]
		if alt == "" {
			alt = DefaultAlt
		}
		fmt.Fprintf(w, "<img src=\"data:image/png;base64,%s\" alt=\"%s\" />",
			base64.StdEncoding.EncodeToString(img), html.EscapeString(alt))
	} else {
		// Drop the XML prolog and doctype; only the <svg> element is valid inline.
		if i := bytes.Index(img, []byte("<svg")); i > 0 {
			img = img[i:]
		}
		_, _ = w.Write(img)
	}
	_, _ = w.WriteString("</div>")
	return ast.WalkSkipChildren, nil
}
