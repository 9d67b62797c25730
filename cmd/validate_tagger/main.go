package main

import (
	"os"

	"github.com/OpenTraceLab/validate-tagger/cmd/validate_tagger/cmd"
)

func main() {
	os.Exit(cmd.Run(os.Stdout, os.Stderr, os.Args[1:]))
}
