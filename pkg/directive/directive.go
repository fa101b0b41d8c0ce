package directive

import (
	"context"

	"github.com/yuin/goldmark/ast"
)

// Directive turns the content of a fenced block into AST nodes.
type Directive interface {
	// Name is the info string that selects the directive.
	Name() string

	// Run returns the node replacing the block. content holds the block
	// lines joined with their line breaks, minus the final newline.
	Run(ctx context.Context, content string) (ast.Node, error)
}

// HiveDiagramName is the info string of the pipeline diagram directive.
const HiveDiagramName = "hive_diagram"

// Generator produces DOT text for a pipeline-config snippet.
type Generator interface {
	Generate(ctx context.Context, snippet string) (string, error)
}

// HiveDiagram shows a pipeline-config snippet next to its flow diagram.
type HiveDiagram struct {
	Generator Generator
}

// NewHiveDiagram returns the hive_diagram directive backed by g.
func NewHiveDiagram(g Generator) *HiveDiagram {
	return &HiveDiagram{Generator: g}
}

// Name implements Directive.
func (d *HiveDiagram) Name() string { return HiveDiagramName }

// Run implements Directive. It returns a one-row table with the snippet in
// the left column and the diagram in the right one.
func (d *HiveDiagram) Run(ctx context.Context, content string) (ast.Node, error) {
	code := NewLiteralBlock(content)

	dot, err := d.Generator.Generate(ctx, content)
	if err != nil {
		return nil, err
	}
	graph := NewGraphviz(dot, nil)

	return NewTable(EqualWidths(2), [][]ast.Node{{code, graph}})
}
