// Package nodelink renders the DOT text produced by eHive's graph generator
// into images.
//
// # Overview
//
// eHive draws analyses as boxes linked by dataflow and control-flow arrows,
// a classic node-link diagram. This package is the Graphviz integration
// that turns that DOT description into something a browser can show.
//
// # Usage
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// [Renderer] adds a render cache on top, keyed by the DOT text and format:
//
//	r := nodelink.NewRenderer(c, cache.NewDefaultKeyer(), logger)
//	img, err := r.Render(ctx, dot, nodelink.FormatSVG)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering,
// so no Graphviz installation is required.
package nodelink
