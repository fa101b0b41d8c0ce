package directive

import (
	"bytes"
	"context"
	"encoding/base64"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/matzehuels/hivedoc/pkg/errors"
)

type fakeGenerator struct {
	dot   string
	err   error
	calls []string
}

func (g *fakeGenerator) Generate(_ context.Context, snippet string) (string, error) {
	g.calls = append(g.calls, snippet)
	return g.dot, g.err
}

type fakeImages struct {
	data    []byte
	err     error
	formats []string
}

func (f *fakeImages) Render(_ context.Context, dot, format string) ([]byte, error) {
	f.formats = append(f.formats, format)
	return f.data, f.err
}

const pipelineDoc = "# Flow\n\n```hive_diagram\n{ -logic_name => 'A' }\n{ -logic_name => 'B' }\n```\n"

func newMarkdown(opts ...Option) goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(New(opts...)))
}

func TestHiveDiagramContent(t *testing.T) {
	gen := &fakeGenerator{dot: "digraph { A -> B }"}
	md := newMarkdown(WithDirective(NewHiveDiagram(gen)))

	var buf bytes.Buffer
	n, err := Convert(context.Background(), md, []byte(pipelineDoc), &buf)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if n != 1 {
		t.Errorf("Convert ran %d directives, want 1", n)
	}
	if len(gen.calls) != 1 {
		t.Fatalf("generator called %d times, want 1", len(gen.calls))
	}
	want := "{ -logic_name => 'A' }\n{ -logic_name => 'B' }"
	if gen.calls[0] != want {
		t.Errorf("generator got %q, want %q", gen.calls[0], want)
	}

	out := buf.String()
	for _, s := range []string{
		`<col style="width: 50%" />`,
		"{ -logic_name =&gt; &#39;A&#39; }\n{ -logic_name =&gt; &#39;B&#39; }",
		`<pre class="graphviz"><code>digraph { A -&gt; B }</code></pre>`,
		"<h1>Flow</h1>",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
	if c := strings.Count(out, "<col "); c != 2 {
		t.Errorf("output has %d columns, want 2", c)
	}
}

func TestHiveDiagramCRLF(t *testing.T) {
	gen := &fakeGenerator{dot: "digraph {}"}
	md := newMarkdown(WithDirective(NewHiveDiagram(gen)))
	doc := "# Flow\r\n\r\n```hive_diagram\r\n{ -logic_name => 'A' }\r\n```\r\n"

	if _, err := Convert(context.Background(), md, []byte(doc), &bytes.Buffer{}); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(gen.calls) != 1 {
		t.Fatalf("generator called %d times, want 1", len(gen.calls))
	}
	if want := "{ -logic_name => 'A' }"; gen.calls[0] != want {
		t.Errorf("generator got %q, want %q", gen.calls[0], want)
	}
}

func TestHiveDiagramTree(t *testing.T) {
	gen := &fakeGenerator{dot: "digraph {}"}
	md := newMarkdown(WithDirective(NewHiveDiagram(gen)))

	pc := parser.NewContext()
	doc := md.Parser().Parse(text.NewReader([]byte(pipelineDoc)), parser.WithContext(pc))
	if err := Err(pc); err != nil {
		t.Fatalf("Err: %v", err)
	}

	var tables []*Table
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if tbl, ok := n.(*Table); ok {
				tables = append(tables, tbl)
			}
			if _, ok := n.(*ast.FencedCodeBlock); ok {
				t.Error("fenced block was not replaced")
			}
		}
		return ast.WalkContinue, nil
	})
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}

	tbl := tables[0]
	if len(tbl.Widths) != 2 || tbl.Widths[0] != 50 || tbl.Widths[1] != 50 {
		t.Errorf("Widths = %v, want [50 50]", tbl.Widths)
	}
	if tbl.ChildCount() != 1 {
		t.Fatalf("table has %d rows, want 1", tbl.ChildCount())
	}
	row := tbl.FirstChild()
	if row.ChildCount() != 2 {
		t.Fatalf("row has %d cells, want 2", row.ChildCount())
	}

	lb, ok := row.FirstChild().FirstChild().(*LiteralBlock)
	if !ok {
		t.Fatalf("first cell holds %T, want *LiteralBlock", row.FirstChild().FirstChild())
	}
	if !strings.HasPrefix(lb.Content, "{ -logic_name => 'A' }") {
		t.Errorf("literal text = %q", lb.Content)
	}

	gv, ok := row.LastChild().FirstChild().(*Graphviz)
	if !ok {
		t.Fatalf("second cell holds %T, want *Graphviz", row.LastChild().FirstChild())
	}
	if gv.Code != "digraph {}" {
		t.Errorf("Code = %q", gv.Code)
	}
	if gv.Options == nil || len(gv.Options) != 0 {
		t.Errorf("Options = %v, want empty map", gv.Options)
	}
}

func TestGeneratorFailure(t *testing.T) {
	cause := stderrors.New("generate_graph.pl: exit status 3")
	gen := &fakeGenerator{err: cause}
	md := newMarkdown(WithDirective(NewHiveDiagram(gen)))

	var buf bytes.Buffer
	_, err := Convert(context.Background(), md, []byte(pipelineDoc), &buf)
	if err == nil {
		t.Fatal("Convert succeeded, want error")
	}
	if !errors.Is(err, errors.ErrCodeDirective) {
		t.Errorf("error code = %s, want DIRECTIVE", errors.GetCode(err))
	}
	if !stderrors.Is(err, cause) {
		t.Errorf("error %v does not wrap cause", err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error %q does not name the fence line", err)
	}
	if buf.Len() != 0 {
		t.Errorf("output written on failure: %q", buf.String())
	}
}

func TestFailureNoTable(t *testing.T) {
	gen := &fakeGenerator{err: stderrors.New("boom")}
	md := newMarkdown(WithDirective(NewHiveDiagram(gen)))

	pc := parser.NewContext()
	doc := md.Parser().Parse(text.NewReader([]byte(pipelineDoc)), parser.WithContext(pc))
	if Err(pc) == nil {
		t.Fatal("Err = nil, want failure")
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if _, ok := n.(*Table); ok && entering {
			t.Error("table built despite generator failure")
		}
		return ast.WalkContinue, nil
	})
}

func TestStopsAtFirstFailure(t *testing.T) {
	gen := &fakeGenerator{err: stderrors.New("boom")}
	md := newMarkdown(WithDirective(NewHiveDiagram(gen)))
	src := pipelineDoc + "\n```hive_diagram\n{ -logic_name => 'C' }\n```\n"

	if _, err := Convert(context.Background(), md, []byte(src), &bytes.Buffer{}); err == nil {
		t.Fatal("Convert succeeded, want error")
	}
	if len(gen.calls) != 1 {
		t.Errorf("generator called %d times, want 1", len(gen.calls))
	}
}

func TestRejectsArguments(t *testing.T) {
	gen := &fakeGenerator{dot: "digraph {}"}
	md := newMarkdown(WithDirective(NewHiveDiagram(gen)))
	src := "```hive_diagram wide\n{ -logic_name => 'A' }\n```\n"

	_, err := Convert(context.Background(), md, []byte(src), &bytes.Buffer{})
	if !errors.Is(err, errors.ErrCodeDirective) {
		t.Fatalf("err = %v, want DIRECTIVE error", err)
	}
	if len(gen.calls) != 0 {
		t.Errorf("generator called with arguments present")
	}
}

func TestOtherFencesUntouched(t *testing.T) {
	gen := &fakeGenerator{dot: "digraph {}"}
	md := newMarkdown(WithDirective(NewHiveDiagram(gen)))
	src := "```perl\nmy $x = 1;\n```\n"

	var buf bytes.Buffer
	n, err := Convert(context.Background(), md, []byte(src), &buf)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if n != 0 || len(gen.calls) != 0 {
		t.Errorf("directive ran on a perl block")
	}
	if !strings.Contains(buf.String(), `<code class="language-perl">`) {
		t.Errorf("perl block not rendered as code: %s", buf.String())
	}
}

func TestImageRendering(t *testing.T) {
	tests := []struct {
		format string
		data   []byte
		want   string
	}{
		{"svg", []byte("<?xml version=\"1.0\"?>\n<!DOCTYPE svg>\n<svg>ok</svg>"), `<div class="graphviz"><svg>ok</svg></div>`},
		{"png", []byte{0x89, 'P', 'N', 'G'}, `<img src="data:image/png;base64,` +
			base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'}) + `" alt="pipeline diagram" />`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			images := &fakeImages{data: tt.data}
			md := newMarkdown(
				WithDirective(NewHiveDiagram(&fakeGenerator{dot: "digraph {}"})),
				WithImageRenderer(images, tt.format),
			)

			var buf bytes.Buffer
			if _, err := Convert(context.Background(), md, []byte(pipelineDoc), &buf); err != nil {
				t.Fatalf("Convert: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, buf.String())
			}
			if len(images.formats) != 1 || images.formats[0] != tt.format {
				t.Errorf("image formats = %v", images.formats)
			}
		})
	}
}

func TestImageRenderingError(t *testing.T) {
	images := &fakeImages{err: stderrors.New("syntax error in line 1")}
	md := newMarkdown(
		WithDirective(NewHiveDiagram(&fakeGenerator{dot: "digraph {"})),
		WithImageRenderer(images, "svg"),
	)

	if _, err := Convert(context.Background(), md, []byte(pipelineDoc), &bytes.Buffer{}); err == nil {
		t.Fatal("Convert succeeded, want image error")
	}
}

func TestNewTableRowWidth(t *testing.T) {
	_, err := NewTable(EqualWidths(2), [][]ast.Node{{NewLiteralBlock("x")}})
	if err == nil {
		t.Fatal("NewTable accepted a short row")
	}
}
