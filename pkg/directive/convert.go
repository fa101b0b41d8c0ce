package directive

import (
	"context"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Convert parses source with md, fails on the first directive error and
// renders the document to w. It returns the number of directives run.
//
// Unlike md.Convert, a failing directive aborts before anything is written.
func Convert(ctx context.Context, md goldmark.Markdown, source []byte, w io.Writer) (int, error) {
	pc := parser.NewContext()
	WithContext(pc, ctx)

	doc := md.Parser().Parse(text.NewReader(source), parser.WithContext(pc))
	if err := Err(pc); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := md.Renderer().Render(w, source, doc); err != nil {
		return 0, err
	}
	return Count(pc), nil
}
