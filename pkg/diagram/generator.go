package diagram

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hivedoc/pkg/errors"
	"github.com/matzehuels/hivedoc/pkg/observability"
	"github.com/matzehuels/hivedoc/pkg/session"
)

const (
	// EnvRoot names the environment variable holding the eHive root.
	EnvRoot = "EHIVE_ROOT_DIR"

	// DefaultConfigName is eHive's default JSON config, relative to the root.
	DefaultConfigName = "hive_config.json"

	// FormatDOT is the format token passed to the script.
	FormatDOT = "dot"
)

// Session temp-file slots.
const (
	SlotOptions    = "options"
	SlotPipeConfig = "pipeconfig"
)

// Generator converts pipeline-config snippets into DOT text within one
// build session. It is not safe for concurrent use; give each concurrent
// build its own session and generator.
type Generator struct {
	session  *session.Session
	renderer Renderer
	logger   *log.Logger

	// Options is the display payload written to the options file.
	Options DisplayOptions

	// LookupEnv resolves EnvRoot. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// NewGenerator creates a generator bound to s. A nil renderer uses a
// ScriptRenderer writing stderr to os.Stderr; a nil logger uses the
// session's logger.
func NewGenerator(s *session.Session, r Renderer, logger *log.Logger) *Generator {
	if r == nil {
		r = &ScriptRenderer{}
	}
	if logger == nil {
		logger = s.Logger()
	}
	return &Generator{
		session:   s,
		renderer:  r,
		logger:    logger,
		Options:   DefaultDisplayOptions,
		LookupEnv: os.LookupEnv,
	}
}

// Generate wraps snippet in the PipeConfig template and returns the graph
// description printed by the renderer.
func (g *Generator) Generate(ctx context.Context, snippet string) (string, error) {
	start := time.Now()
	observability.Build().OnDiagramStart(ctx, g.session.ID)

	out, err := g.generate(ctx, snippet)

	observability.Build().OnDiagramComplete(ctx, g.session.ID, len(out), time.Since(start), err)
	return out, err
}

func (g *Generator) generate(ctx context.Context, snippet string) (string, error) {
	optionsPath, err := g.optionsFile()
	if err != nil {
		return "", err
	}

	root, err := g.root()
	if err != nil {
		return "", err
	}

	pmPath, err := g.writePipeConfig(snippet)
	if err != nil {
		return "", err
	}

	req := Request{
		Root:        root,
		PipeConfig:  pmPath,
		Format:      FormatDOT,
		ConfigFiles: []string{filepath.Join(root, DefaultConfigName), optionsPath},
	}
	g.logger.Debug("running graph generator", "pipeconfig", pmPath, "root", root)

	out, err := g.renderer.Render(ctx, req)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// optionsFile returns the session's options file, writing the display
// payload the first time.
func (g *Generator) optionsFile() (string, error) {
	path, created, err := g.session.TempFile(SlotOptions, "tmp*")
	if err != nil {
		return "", err
	}
	if !created {
		return path, nil
	}

	data, err := MarshalDisplayOptions(g.Options)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode display options")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(errors.ErrCodeFilesystem, err, "write %s", path)
	}
	return path, nil
}

// root resolves the eHive installation root.
func (g *Generator) root() (string, error) {
	root, ok := g.LookupEnv(EnvRoot)
	if !ok || root == "" {
		return "", errors.New(errors.ErrCodeMissingEnv,
			"%s is not set (needed to locate %s)", EnvRoot, filepath.Join("$"+EnvRoot, DefaultConfigName))
	}
	return root, nil
}

// writePipeConfig renders snippet into the session's .pm file. The file is
// truncated first so a shorter module never keeps bytes of a longer one.
func (g *Generator) writePipeConfig(snippet string) (string, error) {
	path, _, err := g.session.TempFile(SlotPipeConfig, "tmp*.pm")
	if err != nil {
		return "", err
	}

	name, err := PackageName(path)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, []byte(RenderTemplate(name, snippet)), 0o644); err != nil {
		return "", errors.Wrap(errors.ErrCodeFilesystem, err, "write %s", path)
	}
	return path, nil
}
