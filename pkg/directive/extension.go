package directive

import (
	"bytes"
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/matzehuels/hivedoc/pkg/errors"
)

// Extension registers directives with a goldmark.Markdown.
type Extension struct {
	directives map[string]Directive
	html       *HTMLRenderer
}

// Option configures an Extension.
type Option func(*Extension)

// WithDirective registers d under d.Name(). Later registrations replace
// earlier ones with the same name.
func WithDirective(d Directive) Option {
	return func(e *Extension) { e.directives[d.Name()] = d }
}

// WithImageRenderer sets the renderer used for Graphviz nodes and the image
// format it is asked for.
func WithImageRenderer(r ImageRenderer, format string) Option {
	return func(e *Extension) {
		e.html.Images = r
		e.html.Format = format
	}
}

// WithRenderContext sets the context handed to the image renderer.
func WithRenderContext(ctx context.Context) Option {
	return func(e *Extension) { e.html.Context = ctx }
}

// New creates the extension.
func New(opts ...Option) *Extension {
	e := &Extension{
		directives: make(map[string]Directive),
		html:       NewHTMLRenderer(nil, ""),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extend implements goldmark.Extender.
func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&transformer{directives: e.directives}, 500),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(e.html, 500),
	))
}

var (
	ctxKey   = parser.NewContextKey()
	errKey   = parser.NewContextKey()
	countKey = parser.NewContextKey()
)

// WithContext attaches ctx to pc. Directives run during parsing receive it.
func WithContext(pc parser.Context, ctx context.Context) {
	pc.Set(ctxKey, ctx)
}

// Err returns the first directive failure recorded while parsing with pc.
func Err(pc parser.Context) error {
	if err, ok := pc.Get(errKey).(error); ok {
		return err
	}
	return nil
}

// Count returns how many directives ran successfully while parsing with pc.
func Count(pc parser.Context) int {
	n, _ := pc.Get(countKey).(int)
	return n
}

func contextOf(pc parser.Context) context.Context {
	if ctx, ok := pc.Get(ctxKey).(context.Context); ok && ctx != nil {
		return ctx
	}
	return context.Background()
}

type transformer struct {
	directives map[string]Directive
}

func (t *transformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	if len(t.directives) == 0 {
		return
	}
	source := reader.Source()

	var blocks []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fb, ok := n.(*ast.FencedCodeBlock); ok {
			if _, ok := t.directives[string(fb.Language(source))]; ok {
				blocks = append(blocks, fb)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	ctx := contextOf(pc)
	for _, fb := range blocks {
		name := string(fb.Language(source))
		line := lineOf(source, fb)

		if args := infoArgs(fb, source); len(args) > 0 {
			pc.Set(errKey, errors.New(errors.ErrCodeDirective,
				"line %d: %s directive takes no arguments, got %q", line, name, strings.Join(args, " ")))
			return
		}

		node, err := t.directives[name].Run(ctx, blockContent(fb, source))
		if err != nil {
			pc.Set(errKey, errors.Wrap(errors.ErrCodeDirective, err, "line %d: %s", line, name))
			return
		}

		parent := fb.Parent()
		parent.ReplaceChild(parent, fb, node)
		pc.Set(countKey, Count(pc)+1)
	}
}

// blockContent joins the block's lines with "\n" line endings and drops the
// final newline.
func blockContent(fb *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := fb.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := seg.Value(source)
		if trimmed, ok := bytes.CutSuffix(line, []byte("\r\n")); ok {
			buf.Write(trimmed)
			buf.WriteByte('\n')
			continue
		}
		buf.Write(line)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// infoArgs returns the words after the directive name in the info string.
func infoArgs(fb *ast.FencedCodeBlock, source []byte) []string {
	if fb.Info == nil {
		return nil
	}
	fields := strings.Fields(string(fb.Info.Segment.Value(source)))
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

// lineOf returns the 1-based source line of the block's opening fence.
func lineOf(source []byte, fb *ast.FencedCodeBlock) int {
	var offset int
	switch {
	case fb.Info != nil:
		offset = fb.Info.Segment.Start
	case fb.Lines().Len() > 0:
		offset = fb.Lines().At(0).Start
	}
	if offset > len(source) {
		offset = len(source)
	}
	return bytes.Count(source[:offset], []byte{'\n'}) + 1
}
