package main

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/srdpartners/site/cmd"
)

//go:embed assets/templates assets/static assets/locales
var assetsFS embed.FS

func main() {
	assets, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open embedded assets: %v\n", err)
		os.Exit(1)
	}

	if err := cmd.Execute(assets); err != nil {
		os.Exit(1)
	}
}
