package nodelink

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hivedoc/pkg/cache"
	hderrors "github.com/matzehuels/hivedoc/pkg/errors"
)

func newTestRenderer(t *testing.T, c cache.Cache, calls *int, fail error) *Renderer {
	t.Helper()
	r := NewRenderer(c, nil, log.New(&bytes.Buffer{}))
	r.render = func(ctx context.Context, dot, format string) ([]byte, error) {
		*calls++
		if fail != nil {
			return nil, fail
		}
		return []byte(format + ":" + dot), nil
	}
	return r
}

func TestRendererCachesImages(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	r := newTestRenderer(t, c, &calls, nil)
	ctx := context.Background()

	first, err := r.Render(ctx, "digraph {}", FormatSVG)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Render(ctx, "digraph {}", FormatSVG)
	if err != nil {
		t.Fatal(err)
	}

	if calls != 1 {
		t.Errorf("render called %d times, want 1", calls)
	}
	if !bytes.Equal(first, second) {
		t.Error("cached image differs from rendered image")
	}

	if _, err := r.Render(ctx, "digraph {}", FormatPNG); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("a new format should miss the cache, render calls = %d", calls)
	}
}

func TestRendererWithoutCache(t *testing.T) {
	calls := 0
	r := newTestRenderer(t, nil, &calls, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := r.Render(ctx, "digraph {}", FormatSVG); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 2 {
		t.Errorf("render called %d times, want 2", calls)
	}
}

func TestRendererRejectsFormat(t *testing.T) {
	calls := 0
	r := newTestRenderer(t, nil, &calls, nil)
	_, err := r.Render(context.Background(), "digraph {}", "gif")
	if !hderrors.Is(err, hderrors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
	if calls != 0 {
		t.Error("render should not run for an invalid format")
	}
}

func TestRendererWrapsFailure(t *testing.T) {
	calls := 0
	cause := errors.New("syntax error in line 1")
	r := newTestRenderer(t, nil, &calls, cause)

	_, err := r.Render(context.Background(), "digraph {", FormatSVG)
	if !hderrors.Is(err, hderrors.ErrCodeRender) {
		t.Errorf("error = %v, want RENDER", err)
	}
	if !errors.Is(err, cause) {
		t.Error("error should wrap the Graphviz failure")
	}
}
