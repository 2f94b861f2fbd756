package main

import "github.com/scandesk/scandesk/internal/cli"

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.Execute(version)
}
