// Package directive adds named block directives to goldmark.
//
// A directive is written as a fenced code block whose info string is the
// directive name:
//
//	```hive_diagram
//	{   -logic_name => 'A',
//	    -flow_into  => { 1 => [ 'B' ] },
//	},
//	{   -logic_name => 'B' },
//	```
//
// While parsing, the [Extension] hands the block text to the registered
// [Directive], which returns the AST nodes that replace the block. The
// [HiveDiagram] directive returns a two-column table: the snippet as a
// literal block on the left, a [Graphviz] node holding the generated DOT on
// the right. The HTML renderer turns Graphviz nodes into inline SVG or PNG
// through an [ImageRenderer].
//
// # Errors
//
// goldmark transformers cannot return errors, so a failing directive is
// recorded on the parser context and leaves its block untouched. Use
// [Convert], or call [Err] after parsing, to abort on failure.
package directive
