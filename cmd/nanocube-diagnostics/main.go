// MIT License

// Command nanocube-diagnostics is a thin, in-process consumer of the
// nanocube package's diagnostic surface: it builds a cube from a handful
// of points given on the command line, optionally flushes the release
// list, then prints Stats and query results, and optionally writes a DOT
// rendering.
package main

import "github.com/nanocube-go/nanocube/cmd/nanocube-diagnostics/cmd"

func main() {
	cmd.Execute()
}
