// Package diagram turns eHive pipeline-configuration snippets into Graphviz
// DOT text.
//
// The package does not understand the pipeline language. A [Generator]
// wraps the snippet in a PipeConfig module template, writes it together with
// a fixed JSON display-options file into the build session's temp files,
// and asks a [Renderer] to produce the graph description. The production
// renderer, [ScriptRenderer], runs eHive's scripts/generate_graph.pl:
//
//	generate_graph.pl -pipeconfig <file.pm> --format dot \
//	    -config_file $EHIVE_ROOT_DIR/hive_config.json -config_file <options.json>
//
// The second config file wins over the first for overlapping keys.
//
// # Temp files
//
// Both temp files belong to the [session.Session] passed to [NewGenerator].
// Every diagram of a session shares the same options file and rewrites the
// same .pm file, which is truncated before each write. The session removes
// both files when it finishes.
//
// # Environment
//
// EHIVE_ROOT_DIR must point at an eHive checkout. When it is unset,
// [Generator.Generate] fails with an errors.ErrCodeMissingEnv error before any
// process is started.
package diagram
