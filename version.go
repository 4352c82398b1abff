package qtree

import _ "embed"

// Version is the release of the qtree module and CLI.
//
//go:embed VERSION
var Version string
