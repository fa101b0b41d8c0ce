package directive

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
)

// Node kinds produced by directives.
var (
	KindTable        = ast.NewNodeKind("DirectiveTable")
	KindTableRow     = ast.NewNodeKind("DirectiveTableRow")
	KindTableCell    = ast.NewNodeKind("DirectiveTableCell")
	KindLiteralBlock = ast.NewNodeKind("LiteralBlock")
	KindGraphviz     = ast.NewNodeKind("Graphviz")
)

// Table is a grid whose columns have fixed relative widths.
type Table struct {
	ast.BaseBlock

	// Widths holds one percentage per column.
	Widths []int
}

// Kind implements ast.Node.
func (n *Table) Kind() ast.NodeKind { return KindTable }

// Dump implements ast.Node.
func (n *Table) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Widths": fmt.Sprint(n.Widths)}, nil)
}

// NewTable builds a table from rows of cell contents. Every row must have
// len(widths) cells.
func NewTable(widths []int, rows [][]ast.Node) (*Table, error) {
	t := &Table{Widths: widths}
	for i, cells := range rows {
		if len(cells) != len(widths) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(cells), len(widths))
		}
		row := &TableRow{}
		for _, content := range cells {
			cell := &TableCell{}
			cell.AppendChild(cell, content)
			row.AppendChild(row, cell)
		}
		t.AppendChild(t, row)
	}
	return t, nil
}

// EqualWidths splits 100% evenly over n columns.
func EqualWidths(n int) []int {
	widths := make([]int, n)
	for i := range widths {
		widths[i] = 100 / n
	}
	return widths
}

// TableRow is one row of a Table.
type TableRow struct {
	ast.BaseBlock
}

// Kind implements ast.Node.
func (n *TableRow) Kind() ast.NodeKind { return KindTableRow }

// Dump implements ast.Node.
func (n *TableRow) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// TableCell is one cell of a TableRow.
type TableCell struct {
	ast.BaseBlock
}

// Kind implements ast.Node.
func (n *TableCell) Kind() ast.NodeKind { return KindTableCell }

// Dump implements ast.Node.
func (n *TableCell) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// LiteralBlock shows text exactly as written.
type LiteralBlock struct {
	ast.BaseBlock
	Content string
}

// NewLiteralBlock returns a literal block holding text.
func NewLiteralBlock(text string) *LiteralBlock {
	return &LiteralBlock{Content: text}
}

// Kind implements ast.Node.
func (n *LiteralBlock) Kind() ast.NodeKind { return KindLiteralBlock }

// Dump implements ast.Node.
func (n *LiteralBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Content": n.Content}, nil)
}

// Graphviz holds DOT text to be rendered as an image.
type Graphviz struct {
	ast.BaseBlock
	Code    string
	Options map[string]string
}

// NewGraphviz returns a Graphviz node. A nil options map is replaced by an
// empty one.
func NewGraphviz(code string, options map[string]string) *Graphviz {
	if options == nil {
		options = map[string]string{}
	}
	return &Graphviz{Code: code, Options: options}
}

// Kind implements ast.Node.
func (n *Graphviz) Kind() ast.NodeKind { return KindGraphviz }

// Dump implements ast.Node.
func (n *Graphviz) Dump(source []byte, level int) {
	opts := make([]string, 0, len(n.Options))
	for k, v := range n.Options {
		opts = append(opts, k+"="+v)
	}
	ast.DumpHelper(n, source, level, map[string]string{
		"Code":    n.Code,
		"Options": strings.Join(opts, ","),
	}, nil)
}
