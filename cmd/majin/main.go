package main

import (
	"os"

	"majin/internal/cli"
)

func main() { os.Exit(cli.Main()) }
