package cli

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hivedoc/pkg/config"
	"github.com/matzehuels/hivedoc/pkg/diagram"
	"github.com/matzehuels/hivedoc/pkg/directive"
	"github.com/matzehuels/hivedoc/pkg/errors"
	"github.com/matzehuels/hivedoc/pkg/session"
)

// maxSnippetBytes bounds the body of a diagram request.
const maxSnippetBytes = 1 << 20

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string
	build   bool
	noCache bool
}

// serveCommand creates the preview server command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the built site and render diagrams on demand",
		Long: `Serve the output directory over HTTP for local preview.

Besides the static files the server exposes:

  POST /api/diagram?format=dot|svg|png   body: pipeline-config snippet
  GET  /healthz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if opts.addr != "" {
				cfg.Serve.Addr = opts.addr
			}
			ctx := cmd.Context()
			if opts.build {
				if err := c.runBuild(ctx, cfg, opts.noCache); err != nil {
					return err
				}
			}
			return c.runServe(ctx, cfg, opts.noCache)
		},
	}

	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "listen address (overrides serve.addr)")
	cmd.Flags().BoolVar(&opts.build, "build", false, "build the site before serving")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the image cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config, noCache bool) error {
	images, store, err := c.newImageRenderer(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := os.Stat(cfg.OutputDir); err != nil {
		printWarning("%s does not exist yet, run '%s build' first", cfg.OutputDir, appName)
	}

	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           newServer(cfg, newScriptRenderer(cfg), images, c.Logger).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	printSuccess("Serving %s", StyleValue.Render(cfg.OutputDir))
	printKeyValue("Address", StyleLink.Render("http://"+cfg.Serve.Addr+"/"))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// server renders diagrams over HTTP. Every request gets its own build
// session, so concurrent requests never share temp files.
type server struct {
	cfg      config.Config
	renderer diagram.Renderer
	images   directive.ImageRenderer
	logger   *log.Logger

	// lookupEnv overrides the generator's environment lookup.
	lookupEnv func(string) (string, bool)
}

func newServer(cfg config.Config, r diagram.Renderer, images directive.ImageRenderer, logger *log.Logger) *server {
	return &server{cfg: cfg, renderer: r, images: images, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	r.Post("/api/diagram", s.handleDiagram)
	r.Handle("/*", http.FileServer(http.Dir(s.cfg.OutputDir)))
	return r
}

// requestLogger attaches a request-scoped logger to the context.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		l := s.logger.With("request", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(withLogger(r.Context(), l)))
		l.Debug("http", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start).Round(time.Millisecond))
	})
}

var diagramContentTypes = map[string]string{
	diagram.FormatDOT: "text/vnd.graphviz; charset=utf-8",
	"svg":             "image/svg+xml",
	"png":             "image/png",
}

func (s *server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := loggerFromContext(ctx)

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "svg"
	}
	contentType, ok := diagramContentTypes[format]
	if !ok {
		s.writeError(w, logger, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'dot', 'svg' or 'png')", format))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSnippetBytes))
	if err != nil {
		s.writeError(w, logger, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	snippet, err := readSnippet("-", bytes.NewReader(body))
	if err != nil {
		s.writeError(w, logger, err)
		return
	}

	var dot string
	err = session.Run(ctx, s.cfg.BuildDir, logger, func(ctx context.Context, sess *session.Session) error {
		gen := diagram.NewGenerator(sess, s.renderer, logger)
		if s.lookupEnv != nil {
			gen.LookupEnv = s.lookupEnv
		}
		var err error
		dot, err = gen.Generate(ctx, snippet)
		return err
	})
	if err != nil {
		s.writeError(w, logger, err)
		return
	}

	data := []byte(dot)
	if format != diagram.FormatDOT {
		if data, err = s.images.Render(ctx, dot, format); err != nil {
			s.writeError(w, logger, err)
			return
		}
	}

	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrCodeInvalidInput), errors.Is(err, errors.ErrCodeInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeMissingEnv):
		return http.StatusServiceUnavailable
	case errors.Is(err, errors.ErrCodeExternalProcess), errors.Is(err, errors.ErrCodeRender):
		return http.StatusUnprocessableEntity
	case stderrors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (s *server) writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("diagram request failed", "err", err)
	} else {
		logger.Debug("diagram request rejected", "status", status, "err", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:  string(errors.GetCodeOr(err, errors.ErrCodeInternal)),
		Error: err.Error(),
	})
}
