package nodelink

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hivedoc/pkg/cache"
	"github.com/matzehuels/hivedoc/pkg/errors"
	"github.com/matzehuels/hivedoc/pkg/observability"
)

// Renderer renders DOT to images through a cache.
type Renderer struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	Logger *log.Logger

	// render is swapped in tests.
	render func(ctx context.Context, dot, format string) ([]byte, error)
}

// NewRenderer creates a renderer. A nil cache disables caching, a nil keyer
// uses cache.DefaultKeyer and a nil logger uses log.Default().
func NewRenderer(c cache.Cache, k cache.Keyer, logger *log.Logger) *Renderer {
	if c == nil {
		c = cache.NewNullCache()
	}
	if k == nil {
		k = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Renderer{
		Cache:  c,
		Keyer:  k,
		TTL:    cache.TTLImage,
		Logger: logger,
		render: RenderImage,
	}
}

// Render returns the image for dot in format ("svg" or "png").
func (r *Renderer) Render(ctx context.Context, dot, format string) ([]byte, error) {
	if err := errors.ValidateImageFormat(format); err != nil {
		return nil, err
	}

	key := r.Keyer.ImageKey(dot, cache.ImageKeyOpts{Format: format})
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "image")
		return data, nil
	} else if err != nil {
		r.Logger.Warn("image cache read failed", "err", err)
	}
	observability.Cache().OnCacheMiss(ctx, "image")

	start := time.Now()
	data, err := r.render(ctx, dot, format)
	observability.Build().OnImageRender(ctx, format, len(data), time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "render %s image", format)
	}

	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("image cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "image", len(data))
	}
	return data, nil
}
