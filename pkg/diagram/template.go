package diagram

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/matzehuels/hivedoc/pkg/errors"
)

// PackagePrefix is the namespace every generated PipeConfig module lives in.
const PackagePrefix = "_build"

// pipeConfigTemplate is a minimal HiveGeneric_conf subclass. The two verbs
// are the package name and the analyses list. Every analysis gets the Dummy
// runnable so the snippet does not need a -module.
const pipeConfigTemplate = `
package %s;

use strict;
use warnings;

use Bio::EnsEMBL::Hive::PipeConfig::HiveGeneric_conf;  # For INPUT_PLUS, WHEN and ELSE
use base ('Bio::EnsEMBL::Hive::PipeConfig::HiveGeneric_conf');

sub pipeline_analyses {
    my ($self) = @_;
    my $all_analyses = [%s];
    map {$_->{-module} = 'Bio::EnsEMBL::Hive::RunnableDB::Dummy'} @$all_analyses;
    return $all_analyses;
}

1;
`

// RenderTemplate wraps snippet in the PipeConfig module template under
// packageName. The snippet is inserted verbatim; a trailing newline is
// appended to the module.
func RenderTemplate(packageName, snippet string) string {
	return fmt.Sprintf(pipeConfigTemplate, packageName, snippet) + "\n"
}

// PackageName derives the module name from the .pm file path, for example
// "_build/tmp3f9a.pm" becomes "_build::tmp3f9a".
func PackageName(path string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(path), ".pm")
	name := PackagePrefix + "::" + base
	if err := errors.ValidatePackageName(name); err != nil {
		return "", err
	}
	return name, nil
}

// DisplayOptions mirrors the "Graph" section of an eHive JSON config. The
// values turn off everything that would clutter a documentation diagram.
type DisplayOptions struct {
	Graph GraphOptions `json:"Graph"`
}

// GraphOptions holds the four display flags written for every build.
type GraphOptions struct {
	Pad            int `json:"Pad"`
	DisplayStats   int `json:"DisplayStats"`
	DisplayDBIDs   int `json:"DisplayDBIDs"`
	DisplayDetails int `json:"DisplayDetails"`
}

// DefaultDisplayOptions is the payload shared by every diagram of a build.
var DefaultDisplayOptions = DisplayOptions{
	Graph: GraphOptions{Pad: 0, DisplayStats: 0, DisplayDBIDs: 0, DisplayDetails: 0},
}

// MarshalDisplayOptions serializes opts as a single JSON line.
func MarshalDisplayOptions(opts DisplayOptions) ([]byte, error) {
	data, err := json.Marshal(opts)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
