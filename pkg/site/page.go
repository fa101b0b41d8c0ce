package site

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/adrg/frontmatter"
)

// Page is one rendered document.
type Page struct {
	// Source is the document path relative to the source directory, using
	// forward slashes.
	Source string

	// Output is the HTML path relative to the output directory.
	Output string

	Title    string
	Diagrams int
}

// FrontMatter holds the recognised front matter keys.
type FrontMatter struct {
	Title string `yaml:"title"`
	Draft bool   `yaml:"draft"`
}

// ParseFrontMatter splits source into its front matter and Markdown body.
// Documents without front matter return the zero FrontMatter and source.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var fm FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &fm)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return fm, body, nil
}

// OutputPath maps a document path to its HTML path.
func OutputPath(rel string) string {
	return strings.TrimSuffix(rel, path.Ext(rel)) + ".html"
}

// defaultTitle derives a title from the file name: "flow-control.md"
// becomes "flow control".
func defaultTitle(rel string) string {
	base := path.Base(rel)
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.NewReplacer("-", " ", "_", " ").Replace(base)
}
