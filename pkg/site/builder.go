package site

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/matzehuels/hivedoc/pkg/diagram"
	"github.com/matzehuels/hivedoc/pkg/directive"
	"github.com/matzehuels/hivedoc/pkg/errors"
	"github.com/matzehuels/hivedoc/pkg/observability"
	"github.com/matzehuels/hivedoc/pkg/session"
)

// Options configures a Builder.
type Options struct {
	SourceDir   string
	OutputDir   string
	BuildDir    string
	Title       string
	ImageFormat string // "svg" or "png"
}

// Result summarises a finished build.
type Result struct {
	SessionID string
	Pages     []*Page
	Skipped   []string // drafts
	Diagrams  int
	Duration  time.Duration
}

// Builder renders a documentation site.
type Builder struct {
	opts     Options
	renderer diagram.Renderer
	images   directive.ImageRenderer
	logger   *log.Logger

	// LookupEnv is handed to each session's diagram generator. Nil keeps the
	// generator's default.
	LookupEnv func(string) (string, bool)
}

// NewBuilder creates a builder. renderer runs the graph script (nil uses a
// diagram.ScriptRenderer); images turns DOT into pictures (nil leaves the
// DOT source in the page).
func NewBuilder(opts Options, renderer diagram.Renderer, images directive.ImageRenderer, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	if opts.ImageFormat == "" {
		opts.ImageFormat = "svg"
	}
	return &Builder{opts: opts, renderer: renderer, images: images, logger: logger}
}

// Discover returns the Markdown documents under the source directory,
// relative and sorted.
func (b *Builder) Discover() ([]string, error) {
	var docs []string
	err := fs.WalkDir(os.DirFS(b.opts.SourceDir), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && (p[0] == '.' || p[0] == '_') {
				return fs.SkipDir
			}
			return nil
		}
		if filepath.Ext(p) == ".md" {
			docs = append(docs, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "scan %s", b.opts.SourceDir)
	}
	sort.Strings(docs)
	return docs, nil
}

// Build renders every document inside a fresh build session and writes the
// index. The session's temp files are gone when Build returns.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	docs, err := b.Discover()
	if err != nil {
		return nil, err
	}

	res := &Result{}
	err = session.Run(ctx, b.opts.BuildDir, b.logger, func(ctx context.Context, s *session.Session) error {
		res.SessionID = s.ID
		b.logger.Debug("build session started", "session", s.ID, "dir", s.Dir, "documents", len(docs))

		gen := diagram.NewGenerator(s, b.renderer, b.logger)
		if b.LookupEnv != nil {
			gen.LookupEnv = b.LookupEnv
		}
		md := b.markdown(ctx, gen)

		for _, rel := range docs {
			page, err := b.buildPage(ctx, md, rel)
			if err != nil {
				return err
			}
			if page == nil {
				res.Skipped = append(res.Skipped, rel)
				continue
			}
			res.Pages = append(res.Pages, page)
			res.Diagrams += page.Diagrams
		}
		if hasIndex(res.Pages) {
			return nil
		}
		return b.writeIndex(res.Pages)
	})
	res.Duration = time.Since(start)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// markdown returns a goldmark instance whose directives generate with gen.
func (b *Builder) markdown(ctx context.Context, gen directive.Generator) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			directive.New(
				directive.WithDirective(directive.NewHiveDiagram(gen)),
				directive.WithImageRenderer(b.images, b.opts.ImageFormat),
				directive.WithRenderContext(ctx),
			),
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
}

// buildPage renders one document. It returns nil for drafts.
func (b *Builder) buildPage(ctx context.Context, md goldmark.Markdown, rel string) (page *Page, err error) {
	if err := errors.ValidatePath(filepath.ToSlash(rel)); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Build().OnDocumentStart(ctx, rel)
	defer func() {
		n := 0
		if page != nil {
			n = page.Diagrams
		}
		observability.Build().OnDocumentComplete(ctx, rel, n, time.Since(start), err)
	}()

	source, err := os.ReadFile(filepath.Join(b.opts.SourceDir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "read %s", rel)
	}
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", rel)
	}
	if fm.Draft {
		b.logger.Debug("skipping draft", "path", rel)
		return nil, nil
	}

	var html bytes.Buffer
	n, err := directive.Convert(ctx, md, body, &html)
	if err != nil {
		return nil, errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeRender), err, "%s", rel)
	}

	page = &Page{
		Source:   rel,
		Output:   OutputPath(rel),
		Title:    fm.Title,
		Diagrams: n,
	}
	if page.Title == "" {
		page.Title = defaultTitle(rel)
	}

	var out bytes.Buffer
	if err := writePage(&out, b.opts.Title, page, html.Bytes()); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "layout %s", rel)
	}
	if err := b.write(page.Output, out.Bytes()); err != nil {
		return nil, err
	}
	b.logger.Debug("wrote page", "path", page.Output, "diagrams", n)
	return page, nil
}

// hasIndex reports whether a document already renders to index.html.
func hasIndex(pages []*Page) bool {
	for _, p := range pages {
		if p.Output == "index.html" {
			return true
		}
	}
	return false
}

func (b *Builder) writeIndex(pages []*Page) error {
	var out bytes.Buffer
	if err := writeIndex(&out, b.opts.Title, pages); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "layout index")
	}
	return b.write("index.html", out.Bytes())
}

func (b *Builder) write(rel string, data []byte) error {
	dst := filepath.Join(b.opts.OutputDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, err, "create %s", filepath.Dir(dst))
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, err, "write %s", dst)
	}
	return nil
}
