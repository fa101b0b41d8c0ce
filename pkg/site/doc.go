// Package site turns a directory of Markdown documents into HTML pages.
//
// Each *.md file under the source directory is stripped of its YAML front
// matter, converted with goldmark (GFM tables plus the hive_diagram
// directive) and written as <name>.html under the output directory, together
// with an index.html linking every page. Pages marked "draft: true" are
// skipped.
//
// A build runs inside one [session.Session] rooted at the build directory, so
// all diagrams share the session's temporary files and those files are
// removed when the build ends, whether it succeeded or not. The first error
// aborts the build; pages already written stay on disk.
package site
