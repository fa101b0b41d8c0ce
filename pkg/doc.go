// Package pkg provides the libraries behind hivedoc, a documentation builder
// for eHive pipelines.
//
// # Overview
//
// hivedoc renders Markdown documentation in which fenced hive_diagram blocks
// hold fragments of a pipeline configuration. Each block becomes a
// two-column table: the fragment on the left, its flow diagram on the right.
// The packages are organized as follows:
//
//  1. [site] - Walks the source tree and writes HTML pages
//  2. [directive] - goldmark extension that expands directive blocks
//  3. [diagram] - Wraps a fragment in a PipeConfig module and runs generate_graph.pl
//  4. [session] - Temp files and teardown for one build
//  5. [render/nodelink] - DOT to SVG/PNG through Graphviz, with caching
//  6. [cache] - Image cache backends (file, Redis, MongoDB)
//  7. [publish] - Upload of the built site to S3
//
// Supporting packages: [config] (hivedoc.toml), [errors] (coded errors),
// [observability] (build and cache hooks) and [buildinfo].
//
// # Architecture
//
// The data flow of one build:
//
//	docs/*.md
//	     ↓
//	[site] front matter, goldmark
//	     ↓
//	[directive] hive_diagram block
//	     ↓
//	[diagram] PipeConfig module → generate_graph.pl → DOT
//	     ↓
//	[render/nodelink] DOT → SVG/PNG
//	     ↓
//	site/*.html
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/hivedoc/pkg/render/nodelink"
//	    "github.com/matzehuels/hivedoc/pkg/site"
//	)
//
//	b := site.NewBuilder(site.Options{
//	    SourceDir:   "docs",
//	    OutputDir:   "site",
//	    BuildDir:    "_build",
//	    Title:       "Pipelines",
//	    ImageFormat: "svg",
//	}, nil, nodelink.NewRenderer(nil, nil, nil), nil)
//	res, err := b.Build(ctx)
//
// EHIVE_ROOT_DIR must name an eHive checkout; the build fails with a
// MISSING_ENV error before running anything when it is unset.
//
// [site]: https://pkg.go.dev/github.com/matzehuels/hivedoc/pkg/site
// [directive]: https://pkg.go.dev/github.com/matzehuels/hivedoc/pkg/directive
// [diagram]: https://pkg.go.dev/github.com/matzehuels/hivedoc/pkg/diagram
// [session]: https://pkg.go.dev/github.com/matzehuels/hivedoc/pkg/session
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/hivedoc/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/hivedoc/pkg/cache
// [publish]: https://pkg.go.dev/github.com/matzehuels/hivedoc/pkg/publish
// [config]: https://pkg.go.dev/github.com/matzehuels/hivedoc/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/hivedoc/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/hivedoc/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/hivedoc/pkg/buildinfo
package pkg
