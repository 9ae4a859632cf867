// Package main is the single-binary entrypoint for EcoPlus.
package main

import "github.com/ecoplus-hub/ecoplus/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
